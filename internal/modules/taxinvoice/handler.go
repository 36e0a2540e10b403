package taxinvoice

import (
	"net/http"

	"github.com/georgemunganga/lensworks-backend/internal/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes tax invoice HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/tax-invoices", h.list) // ?store_id=&status=&from=&to=
	r.Post("/api/v1/tax-invoices", h.issue)
	r.Get("/api/v1/tax-invoices/{id}", h.get)
	r.Post("/api/v1/tax-invoices/{id}/send", h.send)
	r.Post("/api/v1/tax-invoices/{id}/cancel", h.cancel)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f ListFilter
	var err error
	if f.StoreID, err = httpx.OptionalUUID("store_id", q.Get("store_id")); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if raw := q.Get("status"); raw != "" && raw != "all" {
		if f.Status, err = ParseStatus(raw); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}
	if f.From, err = httpx.QueryDate(r, "from"); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if f.To, err = httpx.QueryDate(r, "to"); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if f.To != nil {
		end := f.To.AddDate(0, 0, 1)
		f.To = &end
	}
	f.Limit = httpx.QueryInt(r, "limit", 50)
	out, err := h.service.List(r.Context(), f)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, out)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	var req IssueRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	inv, err := h.service.Issue(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, inv)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("tax_invoice_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, inv)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("tax_invoice_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	inv, err := h.service.Send(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, inv)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("tax_invoice_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	inv, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, inv)
}
