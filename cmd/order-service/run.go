package order_service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/LP1295055597/Lvban-sub000/internal/common/config"
	"github.com/LP1295055597/Lvban-sub000/internal/common/logger"
	"github.com/LP1295055597/Lvban-sub000/internal/common/mq"
	guidehandler "github.com/LP1295055597/Lvban-sub000/internal/guide/handler"
	guiderepo "github.com/LP1295055597/Lvban-sub000/internal/guide/repository"
	guideservice "github.com/LP1295055597/Lvban-sub000/internal/guide/service"
	"github.com/LP1295055597/Lvban-sub000/internal/notify"
	orderhandler "github.com/LP1295055597/Lvban-sub000/internal/order/handler"
	orderrepo "github.com/LP1295055597/Lvban-sub000/internal/order/repository"
	orderservice "github.com/LP1295055597/Lvban-sub000/internal/order/service"
	walletrepo "github.com/LP1295055597/Lvban-sub000/internal/wallet/repository"
	walletservice "github.com/LP1295055597/Lvban-sub000/internal/wallet/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Run wires the order + guide surface: claim arbitration, booking flow,
// guide profile/pricing, and the claim expiry sweep.
func Run(cfg *config.Config, pool *pgxpool.Pool, rmq *mq.RabbitMQ) error {
	log := logger.New("order-service")

	notifier, err := notify.NewNotifier(rmq, cfg.RabbitMQ.Exchange, log)
	if err != nil {
		return err
	}

	guides := guideservice.NewGuideService(guiderepo.NewGuideRepository(pool), log)
	wallet := walletservice.NewWalletService(walletrepo.NewLedgerRepository(pool), notifier, cfg.Policy.LockPeriod, log)
	orders := orderservice.NewOrderService(
		orderrepo.NewOrderRepository(pool),
		guides,
		wallet,
		notifier,
		cfg.Policy.ClaimWindow,
		log,
	)

	go func() {
		ticker := time.NewTicker(cfg.Sweeps.ExpireInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := orders.ExpireSweep(context.Background()); err != nil {
				log.WithError(err).Error("expire sweep iteration failed")
			}
		}
	}()

	mux := http.NewServeMux()
	orderhandler.SetupRoutes(mux, orderhandler.NewOrderHandler(orders, log))
	guidehandler.SetupRoutes(mux, guidehandler.NewGuideHandler(guides, log))

	addr := fmt.Sprintf(":%d", cfg.Services.OrderServicePort)
	log.WithField("addr", addr).Info("order service listening")
	return http.ListenAndServe(addr, mux)
}
