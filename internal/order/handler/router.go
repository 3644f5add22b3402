package handler

import "net/http"

func SetupRoutes(mux *http.ServeMux, h *OrderHandler) {
	mux.HandleFunc("POST /orders", h.CreateOrder)
	mux.HandleFunc("GET /orders/open", h.ListOpen)
	mux.HandleFunc("GET /orders/{order_id}", h.GetOrder)
	mux.HandleFunc("POST /orders/{order_id}/claim", h.Claim)
	mux.HandleFunc("POST /orders/{order_id}/respond", h.RespondToBooking)
	mux.HandleFunc("POST /orders/{order_id}/confirm", h.ConfirmClaim)
	mux.HandleFunc("POST /orders/{order_id}/complete", h.Complete)
}
