package mq

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Chan *amqp.Channel
	URL  string
	log  *logrus.Entry
}

func NewRabbitMQ(log *logrus.Entry, url string) (*RabbitMQ, error) {
	rmq := &RabbitMQ{URL: url, log: log}
	if err := rmq.connect(); err != nil {
		return nil, err
	}
	return rmq, nil
}

func (r *RabbitMQ) connect() error {
	var conn *amqp.Connection
	var err error

	for i := 1; i <= 5; i++ {
		conn, err = amqp.Dial(r.URL)
		if err == nil {
			r.Conn = conn
			r.Chan, err = conn.Channel()
			if err != nil {
				return fmt.Errorf("failed to open channel: %w", err)
			}
			r.log.Info("connected to RabbitMQ")
			return nil
		}
		r.log.WithError(err).Warnf("RabbitMQ reconnect attempt %d failed", i)
		time.Sleep(time.Duration(i) * 2 * time.Second)
	}
	return fmt.Errorf("failed to connect to RabbitMQ after retries: %w", err)
}

func (r *RabbitMQ) Close() {
	if r.Chan != nil {
		_ = r.Chan.Close()
	}
	if r.Conn != nil {
		_ = r.Conn.Close()
	}
	r.log.Info("RabbitMQ connection closed")
}
