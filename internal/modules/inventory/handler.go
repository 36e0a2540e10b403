package inventory

import (
	"net/http"
	"strconv"

	"github.com/georgemunganga/lensworks-backend/internal/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes inventory HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/inventory/adjustments", h.adjust)
	r.Post("/api/v1/inventory/receipts", h.receive)
	r.Get("/api/v1/inventory/low-stock", h.lowStock) // ?threshold=&limit=
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	res, err := h.service.Adjust(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	var req ReceiveRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	res, err := h.service.Receive(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold, _ := strconv.ParseFloat(r.URL.Query().Get("threshold"), 64)
	items, err := h.service.LowStock(r.Context(), threshold, httpx.QueryInt(r, "limit", 200))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, items)
}
