package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/LP1295055597/Lvban-sub000/internal/alert/model"
	"github.com/LP1295055597/Lvban-sub000/internal/alert/service"
	commonmodel "github.com/LP1295055597/Lvban-sub000/internal/common/model"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"

	"github.com/sirupsen/logrus"
)

// AlertHandler is the staff dashboard's API surface.
type AlertHandler struct {
	svc *service.AlertService
	log *logrus.Entry
}

func NewAlertHandler(svc *service.AlertService, log *logrus.Entry) *AlertHandler {
	return &AlertHandler{svc: svc, log: log}
}

func SetupRoutes(mux *http.ServeMux, h *AlertHandler) {
	mux.HandleFunc("GET /alerts", h.ListAlerts)
	mux.HandleFunc("PATCH /alerts/{order_id}", h.UpdateStatus)
}

func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.svc.ListAlerts(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *AlertHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	alert, err := h.svc.UpdateStatus(
		r.Context(),
		uuid.UUID(r.PathValue("order_id")),
		model.AlertStatus(req.Status),
		req.Notes,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (h *AlertHandler) writeError(w http.ResponseWriter, err error) {
	var validation *commonmodel.ValidationError
	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Error(), http.StatusBadRequest)
	case errors.Is(err, model.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, model.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.log.WithError(err).Error("alert request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
