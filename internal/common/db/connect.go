package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type Postgres struct {
	Pool *pgxpool.Pool
	log  *logrus.Entry
}

func NewPostgres(log *logrus.Entry, dsn string) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.WithError(err).Error("failed to connect to postgres")
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.WithError(err).Error("postgres ping failed")
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	log.Info("connected to postgres")
	return &Postgres{Pool: pool, log: log}, nil
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
		p.log.Info("postgres pool closed")
	}
}
