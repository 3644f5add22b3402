package admin_service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	alerthandler "github.com/LP1295055597/Lvban-sub000/internal/alert/handler"
	alertrepo "github.com/LP1295055597/Lvban-sub000/internal/alert/repository"
	alertservice "github.com/LP1295055597/Lvban-sub000/internal/alert/service"
	"github.com/LP1295055597/Lvban-sub000/internal/common/config"
	"github.com/LP1295055597/Lvban-sub000/internal/common/logger"
	"github.com/LP1295055597/Lvban-sub000/internal/common/mq"
	"github.com/LP1295055597/Lvban-sub000/internal/common/websocket"
	"github.com/LP1295055597/Lvban-sub000/internal/notify"
	orderrepo "github.com/LP1295055597/Lvban-sub000/internal/order/repository"
	walletrepo "github.com/LP1295055597/Lvban-sub000/internal/wallet/repository"
	walletservice "github.com/LP1295055597/Lvban-sub000/internal/wallet/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Run wires the staff surface: alert listing and follow-up, the live alert
// feed, and the overdue escalation sweep.
func Run(cfg *config.Config, pool *pgxpool.Pool, rmq *mq.RabbitMQ) error {
	log := logger.New("admin-service")

	notifier, err := notify.NewNotifier(rmq, cfg.RabbitMQ.Exchange, log)
	if err != nil {
		return err
	}

	hub := websocket.NewHub()
	wallet := walletservice.NewWalletService(walletrepo.NewLedgerRepository(pool), notifier, cfg.Policy.LockPeriod, log)
	alerts := alertservice.NewAlertService(
		alertrepo.NewAlertRepository(pool),
		orderrepo.NewOrderRepository(pool),
		wallet,
		notifier,
		hub,
		cfg.Policy.OverduePenalty,
		log,
	)

	go func() {
		ticker := time.NewTicker(cfg.Sweeps.OverdueInterval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := alerts.OverdueSweep(context.Background()); err != nil {
				log.WithError(err).Error("overdue sweep iteration failed")
			}
		}
	}()

	mux := http.NewServeMux()
	alerthandler.SetupRoutes(mux, alerthandler.NewAlertHandler(alerts, log))
	mux.HandleFunc("GET /ws/alerts", websocket.StaffFeedHandler(hub, log))

	addr := fmt.Sprintf(":%d", cfg.Services.AdminServicePort)
	log.WithField("addr", addr).Info("admin service listening")
	return http.ListenAndServe(addr, mux)
}
