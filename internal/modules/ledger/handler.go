package ledger

import (
	"net/http"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes ledger history endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/stores/{id}/transactions", h.storeTransactions) // ?from=&to=&type=
	r.Get("/api/v1/stores/{id}/statement", h.statement)            // ?period=YYYY-MM
	r.Get("/api/v1/inventory/movements", h.movements)              // ?option_id=&product_id=&order_id=&purchase_id=
	r.Get("/api/v1/work-logs", h.workLogs)                         // ?target_type=&target_id=&work_type=
	r.Get("/api/v1/reports/sales", h.sales)                        // ?from=&to=&group_by=day|month&store_id=
}

func (h *Handler) storeTransactions(w http.ResponseWriter, r *http.Request) {
	storeID, err := httpx.ParseUUID("store_id", chi.URLParam(r, "id"))
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
	rows, err := h.service.Transactions(r.Context(), TransactionFilter{
		StoreID: &storeID,
		Type:    TransactionType(r.URL.Query().Get("type")),
		From:    from,
		To:      to,
		Limit:   httpx.QueryInt(r, "limit", 200),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, rows)
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	storeID, err := httpx.ParseUUID("store_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = time.Now().Format("2006-01")
	}
	st, err := h.service.Statement(r.Context(), storeID, period)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, st)
}

func (h *Handler) movements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f MovementFilter
	var err error
	if f.OptionID, err = httpx.OptionalUUID("option_id", q.Get("option_id")); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if f.ProductID, err = httpx.OptionalUUID("product_id", q.Get("product_id")); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if f.OrderID, err = httpx.OptionalUUID("order_id", q.Get("order_id")); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if f.PurchaseID, err = httpx.OptionalUUID("purchase_id", q.Get("purchase_id")); err != nil {
		httpx.Error(w, r, err)
		return
	}
	f.Type = MovementType(q.Get("type"))
	f.Limit = httpx.QueryInt(r, "limit", 200)
	rows, err := h.service.Movements(r.Context(), f)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, rows)
}

func (h *Handler) workLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, err := httpx.OptionalUUID("target_id", q.Get("target_id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	rows, err := h.service.WorkLogs(r.Context(), WorkLogFilter{
		TargetType: q.Get("target_type"),
		TargetID:   target,
		WorkType:   q.Get("work_type"),
		Limit:      httpx.QueryInt(r, "limit", 200),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, rows)
}

func (h *Handler) sales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	storeID, err := httpx.OptionalUUID("store_id", q.Get("store_id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	rep, err := h.service.Sales(r.Context(), SalesQuery{
		StoreID: storeID,
		From:    q.Get("from"),
		To:      q.Get("to"),
		GroupBy: q.Get("group_by"),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, rep)
}
