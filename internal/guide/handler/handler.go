package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	commonmodel "github.com/LP1295055597/Lvban-sub000/internal/common/model"
	"github.com/LP1295055597/Lvban-sub000/internal/guide/model"
	"github.com/LP1295055597/Lvban-sub000/internal/guide/service"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"

	"github.com/sirupsen/logrus"
)

type GuideHandler struct {
	svc *service.GuideService
	log *logrus.Entry
}

func NewGuideHandler(svc *service.GuideService, log *logrus.Entry) *GuideHandler {
	return &GuideHandler{svc: svc, log: log}
}

func SetupRoutes(mux *http.ServeMux, h *GuideHandler) {
	mux.HandleFunc("GET /guides/{guide_id}/profile", h.Profile)
	mux.HandleFunc("PUT /guides/{guide_id}/price", h.SetPrice)
	mux.HandleFunc("PUT /guides/{guide_id}/verification", h.SetVerified)
}

func (h *GuideHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Profile(r.Context(), uuid.UUID(r.PathValue("guide_id")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *GuideHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	guideID := uuid.UUID(r.PathValue("guide_id"))
	if err := h.svc.SetPrice(r.Context(), guideID, req.Price); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"guide_id": guideID, "price": req.Price})
}

// SetVerified is the callback for the external certification review.
func (h *GuideHandler) SetVerified(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Verified bool `json:"verified"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	guideID := uuid.UUID(r.PathValue("guide_id"))
	if err := h.svc.SetVerified(r.Context(), guideID, req.Verified); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"guide_id": guideID, "verified": req.Verified})
}

func (h *GuideHandler) writeError(w http.ResponseWriter, err error) {
	var validation *commonmodel.ValidationError
	var outOfRange *model.PriceOutOfRangeError
	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Error(), http.StatusBadRequest)
	case errors.As(err, &outOfRange):
		// Surface the current bounds so the app can show them.
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":   "price out of range",
			"floor":   outOfRange.Floor,
			"ceiling": outOfRange.Ceiling,
		})
	case errors.Is(err, model.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.log.WithError(err).Error("guide request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
