package main

import (
	"log"

	cmdAdmin "github.com/LP1295055597/Lvban-sub000/cmd/admin-service"
	cmdOrder "github.com/LP1295055597/Lvban-sub000/cmd/order-service"
	cmdWallet "github.com/LP1295055597/Lvban-sub000/cmd/wallet-service"
	"github.com/LP1295055597/Lvban-sub000/internal/common/config"
	"github.com/LP1295055597/Lvban-sub000/internal/common/db"
	"github.com/LP1295055597/Lvban-sub000/internal/common/logger"
	"github.com/LP1295055597/Lvban-sub000/internal/common/mq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	rootLog := logger.New("lvban")

	pg, err := db.NewPostgres(rootLog, cfg.DatabaseDSN())
	if err != nil {
		rootLog.Fatalf("db error: %v", err)
	}
	defer pg.Close()

	if err := pg.RunMigrations(cfg.MigrationsDir); err != nil {
		rootLog.Fatalf("migration error: %v", err)
	}

	rmq, err := mq.NewRabbitMQ(rootLog, cfg.RabbitURL())
	if err != nil {
		rootLog.Fatalf("rabbitmq error: %v", err)
	}
	defer rmq.Close()

	errCh := make(chan error, 3)
	go func() { errCh <- cmdOrder.Run(cfg, pg.Pool, rmq) }()
	go func() { errCh <- cmdWallet.Run(cfg, pg.Pool, rmq) }()
	go func() { errCh <- cmdAdmin.Run(cfg, pg.Pool, rmq) }()

	rootLog.Fatalf("service stopped: %v", <-errCh)
}
