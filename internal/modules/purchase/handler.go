package purchase

import (
	"net/http"

	"github.com/georgemunganga/lensworks-backend/internal/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes supplier and purchase HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/suppliers", h.listSuppliers)
	r.Post("/api/v1/suppliers", h.createSupplier)
	r.Get("/api/v1/suppliers/{id}", h.getSupplier)
	r.Put("/api/v1/suppliers/{id}", h.updateSupplier)

	r.Get("/api/v1/purchases", h.list) // ?supplier_id=&status=&from=&to=
	r.Post("/api/v1/purchases", h.create)
	r.Get("/api/v1/purchases/{id}", h.get)
	r.Post("/api/v1/purchases/{id}/receive", h.receive)
	r.Post("/api/v1/purchases/{id}/cancel", h.cancel)
}

// ── suppliers ───────────────────────────────────────────────────────────────

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListSuppliers(r.Context(), r.URL.Query().Get("active") != "false")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, out)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req SupplierRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	sp, err := h.service.CreateSupplier(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, sp)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("supplier_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	sp, err := h.service.GetSupplier(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, sp)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("supplier_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req SupplierRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	sp, err := h.service.UpdateSupplier(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, sp)
}

// ── purchases ───────────────────────────────────────────────────────────────

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	supplierID, err := httpx.OptionalUUID("supplier_id", q.Get("supplier_id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	from, err := httpx.QueryDate(r, "from")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	to, err := httpx.QueryDate(r, "to")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if to != nil {
		end := to.AddDate(0, 0, 1)
		to = &end
	}
	out, err := h.service.List(r.Context(), ListFilter{
		SupplierID: supplierID,
		Status:     Status(q.Get("status")),
		From:       from,
		To:         to,
		Limit:      httpx.QueryInt(r, "limit", 200),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, p)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("purchase_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("purchase_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	p, err := h.service.Receive(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("purchase_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	p, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}
