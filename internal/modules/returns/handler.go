package returns

import (
	"net/http"

	"github.com/georgemunganga/lensworks-backend/internal/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes return HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/returns", h.list) // ?store_id=&order_id=&status=
	r.Post("/api/v1/returns", h.create)
	r.Get("/api/v1/returns/{id}", h.get)
	r.Post("/api/v1/returns/{id}/actions", h.act) // {"action":"approve|receive|reject"}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	storeID, err := httpx.OptionalUUID("store_id", q.Get("store_id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	orderID, err := httpx.OptionalUUID("order_id", q.Get("order_id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	out, err := h.service.List(r.Context(), ListFilter{
		StoreID: storeID,
		OrderID: orderID,
		Status:  Status(q.Get("status")),
		Limit:   httpx.QueryInt(r, "limit", 200),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	ret, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, ret)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("return_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	ret, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, ret)
}

func (h *Handler) act(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("return_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req ActionRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	res, err := h.service.Act(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}
