package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	commonmodel "github.com/LP1295055597/Lvban-sub000/internal/common/model"
	guidemodel "github.com/LP1295055597/Lvban-sub000/internal/guide/model"
	"github.com/LP1295055597/Lvban-sub000/internal/order/handler/dto"
	"github.com/LP1295055597/Lvban-sub000/internal/order/model"
	"github.com/LP1295055597/Lvban-sub000/internal/order/service"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"

	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	svc *service.OrderService
	log *logrus.Entry
}

func NewOrderHandler(svc *service.OrderService, log *logrus.Entry) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	order, err := h.svc.Create(r.Context(), req.ToService())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.FromOrder(order))
}

func (h *OrderHandler) Claim(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("order_id")
	var req dto.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.GuideID == "" {
		http.Error(w, "guide_id is required", http.StatusBadRequest)
		return
	}

	order, err := h.svc.Claim(r.Context(), uuid.UUID(orderID), uuid.UUID(req.GuideID))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromOrder(order))
}

func (h *OrderHandler) RespondToBooking(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("order_id")
	var req dto.RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	order, err := h.svc.RespondToBooking(
		r.Context(),
		uuid.UUID(orderID),
		uuid.UUID(req.GuideID),
		model.BookingDecision(req.Decision),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromOrder(order))
}

func (h *OrderHandler) ConfirmClaim(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("order_id")
	var req dto.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	order, err := h.svc.ConfirmClaim(r.Context(), uuid.UUID(orderID), uuid.UUID(req.GuideID))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromOrder(order))
}

func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("order_id")

	order, err := h.svc.Complete(r.Context(), uuid.UUID(orderID))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromOrder(order))
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Get(r.Context(), uuid.UUID(r.PathValue("order_id")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromOrder(order))
}

func (h *OrderHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOpen(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, dto.FromOrder(&orders[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) writeError(w http.ResponseWriter, err error) {
	var validation *commonmodel.ValidationError
	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Error(), http.StatusBadRequest)
	case errors.Is(err, model.ErrNotFound), errors.Is(err, guidemodel.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, model.ErrNotAuthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case service.IsConflict(err):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.log.WithError(err).Error("order request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
