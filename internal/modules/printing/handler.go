package printing

import (
	"net/http"

	"github.com/georgemunganga/lensworks-backend/internal/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes slip printing endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/orders/{id}/slip", h.slip)
	r.Post("/api/v1/orders/{id}/print", h.print)
}

func (h *Handler) slip(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("order_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	job, err := h.service.Slip(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(job.Content))
}

func (h *Handler) print(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("order_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	job, err := h.service.PrintOrder(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]string{"order_no": job.OrderNo, "status": "printed"})
}
