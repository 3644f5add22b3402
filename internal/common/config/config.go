package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Database struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"lvban_user"`
		Password string `envconfig:"DB_PASSWORD" default:"lvban_pass"`
		Name     string `envconfig:"DB_NAME" default:"lvban_db"`
	}
	RabbitMQ struct {
		Host     string `envconfig:"RABBITMQ_HOST" default:"localhost"`
		Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
		User     string `envconfig:"RABBITMQ_USER" default:"guest"`
		Password string `envconfig:"RABBITMQ_PASSWORD" default:"guest"`
		Exchange string `envconfig:"RABBITMQ_EXCHANGE" default:"lvban.events"`
	}
	Services struct {
		OrderServicePort  int `envconfig:"ORDER_SERVICE_PORT" default:"3000"`
		WalletServicePort int `envconfig:"WALLET_SERVICE_PORT" default:"3001"`
		AdminServicePort  int `envconfig:"ADMIN_SERVICE_PORT" default:"3004"`
	}
	Sweeps struct {
		ExpireInterval  time.Duration `envconfig:"EXPIRE_SWEEP_INTERVAL" default:"1m"`
		UnlockInterval  time.Duration `envconfig:"UNLOCK_SWEEP_INTERVAL" default:"5m"`
		OverdueInterval time.Duration `envconfig:"OVERDUE_SWEEP_INTERVAL" default:"10m"`
	}
	Policy struct {
		ClaimWindow    time.Duration `envconfig:"CLAIM_WINDOW" default:"24h"`
		LockPeriod     time.Duration `envconfig:"LOCK_PERIOD" default:"168h"`
		OverduePenalty float64       `envconfig:"OVERDUE_PENALTY" default:"50"`
	}
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"migrations"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return cfg, nil
}

func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name,
	)
}

func (c *Config) RabbitURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port,
	)
}
