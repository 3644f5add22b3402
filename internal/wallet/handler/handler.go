package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	commonmodel "github.com/LP1295055597/Lvban-sub000/internal/common/model"
	"github.com/LP1295055597/Lvban-sub000/internal/wallet/model"
	"github.com/LP1295055597/Lvban-sub000/internal/wallet/service"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"

	"github.com/sirupsen/logrus"
)

type WalletHandler struct {
	svc *service.WalletService
	log *logrus.Entry
}

func NewWalletHandler(svc *service.WalletService, log *logrus.Entry) *WalletHandler {
	return &WalletHandler{svc: svc, log: log}
}

func SetupRoutes(mux *http.ServeMux, h *WalletHandler) {
	mux.HandleFunc("GET /wallets/{guide_id}/balance", h.Balance)
	mux.HandleFunc("GET /wallets/{guide_id}/entries", h.Statement)
	mux.HandleFunc("POST /wallets/{guide_id}/withdraw", h.Withdraw)
}

func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	balances, err := h.svc.Balances(r.Context(), uuid.UUID(r.PathValue("guide_id")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

func (h *WalletHandler) Statement(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Statement(r.Context(), uuid.UUID(r.PathValue("guide_id")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	guideID := uuid.UUID(r.PathValue("guide_id"))
	if err := h.svc.Withdraw(r.Context(), guideID, req.Amount); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"guide_id": guideID,
		"amount":   req.Amount,
		"status":   "payout requested",
	})
}

func (h *WalletHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *commonmodel.ValidationError
	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Error(), http.StatusBadRequest)
	case errors.Is(err, model.ErrInsufficientFunds):
		// Surface the current available balance alongside the rejection.
		body := map[string]any{"error": err.Error()}
		if balances, berr := h.svc.Balances(r.Context(), uuid.UUID(r.PathValue("guide_id"))); berr == nil {
			body["available"] = balances.Available
		}
		writeJSON(w, http.StatusConflict, body)
	case errors.Is(err, model.ErrInsufficientLockedFunds):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.log.WithError(err).Error("wallet request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
