package store

import (
	"net/http"

	"github.com/georgemunganga/lensworks-backend/internal/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes store HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/stores", h.create)
	r.Get("/api/v1/stores", h.list) // ?q=&active=true
	r.Get("/api/v1/stores/receivables", h.receivables)
	r.Get("/api/v1/stores/{id}", h.get)
	r.Put("/api/v1/stores/{id}", h.update)
	r.Post("/api/v1/stores/{id}/deposits", h.deposit)
	r.Post("/api/v1/stores/{id}/adjustments", h.adjust)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req StoreRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	st, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, st)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stores, err := h.service.List(r.Context(), ListFilter{
		Query:      q.Get("q"),
		ActiveOnly: q.Get("active") == "true",
		Limit:      httpx.QueryInt(r, "limit", 200),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, stores)
}

func (h *Handler) receivables(w http.ResponseWriter, r *http.Request) {
	stores, err := h.service.Receivables(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, stores)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("store_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	st, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, st)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("store_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req StoreRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	st, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, st)
}

func (h *Handler) deposit(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("store_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req DepositRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	t, err := h.service.Deposit(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, t)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("store_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req AdjustmentRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	t, err := h.service.Adjust(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, t)
}
