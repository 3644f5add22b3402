package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the shared JSON logger. Every service tags entries with its
// service name and hostname so a single log stream stays searchable.
func New(service string) *logrus.Entry {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	hostname, _ := os.Hostname()
	return log.WithFields(logrus.Fields{
		"service":  service,
		"hostname": hostname,
	})
}
