package wallet_service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/LP1295055597/Lvban-sub000/internal/common/config"
	"github.com/LP1295055597/Lvban-sub000/internal/common/logger"
	"github.com/LP1295055597/Lvban-sub000/internal/common/mq"
	"github.com/LP1295055597/Lvban-sub000/internal/notify"
	wallethandler "github.com/LP1295055597/Lvban-sub000/internal/wallet/handler"
	walletrepo "github.com/LP1295055597/Lvban-sub000/internal/wallet/repository"
	walletservice "github.com/LP1295055597/Lvban-sub000/internal/wallet/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Run wires the wallet surface: balances, statements, withdrawals, and the
// periodic release of time-locked funds.
func Run(cfg *config.Config, pool *pgxpool.Pool, rmq *mq.RabbitMQ) error {
	log := logger.New("wallet-service")

	notifier, err := notify.NewNotifier(rmq, cfg.RabbitMQ.Exchange, log)
	if err != nil {
		return err
	}

	wallet := walletservice.NewWalletService(walletrepo.NewLedgerRepository(pool), notifier, cfg.Policy.LockPeriod, log)

	go func() {
		ticker := time.NewTicker(cfg.Sweeps.UnlockInterval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := wallet.UnlockSweep(context.Background()); err != nil {
				log.WithError(err).Error("unlock sweep iteration failed")
			}
		}
	}()

	mux := http.NewServeMux()
	wallethandler.SetupRoutes(mux, wallethandler.NewWalletHandler(wallet, log))

	addr := fmt.Sprintf(":%d", cfg.Services.WalletServicePort)
	log.WithField("addr", addr).Info("wallet service listening")
	return http.ListenAndServe(addr, mux)
}
