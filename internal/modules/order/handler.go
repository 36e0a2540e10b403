package order

import (
	"net/http"

	"github.com/georgemunganga/lensworks-backend/internal/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes order HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/orders", h.create)                    // POST /api/v1/orders
	r.Get("/api/v1/orders", h.list)                       // GET  /api/v1/orders?store_id=&status=&type=&from=&to=
	r.Post("/api/v1/orders/status", h.transition)         // POST /api/v1/orders/status {order_ids, status}
	r.Get("/api/v1/orders/number/{number}", h.getByNo)    // GET  /api/v1/orders/number/{number}?period=YYYY-MM
	r.Get("/api/v1/orders/{id}", h.get)                   // GET  /api/v1/orders/{id}
	r.Post("/api/v1/orders/{id}/status", h.transitionOne) // POST /api/v1/orders/{id}/status {status}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	o, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, o)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	storeID, err := httpx.OptionalUUID("store_id", q.Get("store_id"))
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
		next := to.AddDate(0, 0, 1)
		to = &next
	}
	f := ListFilter{
		StoreID: storeID,
		From:    from,
		To:      to,
		Limit:   httpx.QueryInt(r, "limit", 200),
	}
	if raw := q.Get("status"); raw != "" {
		if f.Status, err = ParseStatus(raw); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}
	if raw := q.Get("type"); raw != "" {
		if f.Type, err = ParseOrderType(raw); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}
	orders, err := h.service.List(r.Context(), f)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, orders)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("order_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, o)
}

func (h *Handler) getByNo(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetByNumber(r.Context(), r.URL.Query().Get("period"), chi.URLParam(r, "number"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, o)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	res, err := h.service.Transition(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}

func (h *Handler) transitionOne(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("order_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	res, err := h.service.TransitionOne(r.Context(), id, req.Status)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}
