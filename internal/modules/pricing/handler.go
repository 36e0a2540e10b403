package pricing

import (
	"net/http"

	"github.com/georgemunganga/lensworks-backend/internal/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes store pricing endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/stores/{id}/quote", h.quote)                               // ?product_id=
	r.Get("/api/v1/stores/{id}/pricing", h.rules)                             // all rules
	r.Put("/api/v1/stores/{id}/brand-discounts/{target}", h.setBrandDiscount) // {discount_rate}
	r.Delete("/api/v1/stores/{id}/brand-discounts/{target}", h.removeBrandDiscount)
	r.Put("/api/v1/stores/{id}/product-discounts/{target}", h.setProductDiscount) // {discount_rate}
	r.Delete("/api/v1/stores/{id}/product-discounts/{target}", h.removeProductDiscount)
	r.Put("/api/v1/stores/{id}/special-prices/{target}", h.setSpecialPrice) // {special_price}
	r.Delete("/api/v1/stores/{id}/special-prices/{target}", h.removeSpecialPrice)
}

func ids(r *http.Request, target string) (uuid.UUID, uuid.UUID, error) {
	storeID, err := httpx.ParseUUID("store_id", chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	targetID, err := httpx.ParseUUID(target, chi.URLParam(r, "target"))
	return storeID, targetID, err
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	storeID, err := httpx.ParseUUID("store_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	productID, err := httpx.ParseUUID("product_id", r.URL.Query().Get("product_id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	q, err := h.service.Quote(r.Context(), storeID, productID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, q)
}

func (h *Handler) rules(w http.ResponseWriter, r *http.Request) {
	storeID, err := httpx.ParseUUID("store_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	rules, err := h.service.Rules(r.Context(), storeID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, rules)
}

func (h *Handler) setBrandDiscount(w http.ResponseWriter, r *http.Request) {
	storeID, brandID, err := ids(r, "brand_id")
	var req SetRateRequest
	if err == nil {
		err = httpx.Decode(r, &req)
	}
	if err == nil {
		err = h.service.SetBrandDiscount(r.Context(), storeID, brandID, req.DiscountRate)
	}
	h.done(w, r, err)
}

func (h *Handler) removeBrandDiscount(w http.ResponseWriter, r *http.Request) {
	storeID, brandID, err := ids(r, "brand_id")
	if err == nil {
		err = h.service.RemoveBrandDiscount(r.Context(), storeID, brandID)
	}
	h.done(w, r, err)
}

func (h *Handler) setProductDiscount(w http.ResponseWriter, r *http.Request) {
	storeID, productID, err := ids(r, "product_id")
	var req SetRateRequest
	if err == nil {
		err = httpx.Decode(r, &req)
	}
	if err == nil {
		err = h.service.SetProductDiscount(r.Context(), storeID, productID, req.DiscountRate)
	}
	h.done(w, r, err)
}

func (h *Handler) removeProductDiscount(w http.ResponseWriter, r *http.Request) {
	storeID, productID, err := ids(r, "product_id")
	if err == nil {
		err = h.service.RemoveProductDiscount(r.Context(), storeID, productID)
	}
	h.done(w, r, err)
}

func (h *Handler) setSpecialPrice(w http.ResponseWriter, r *http.Request) {
	storeID, productID, err := ids(r, "product_id")
	var req SetPriceRequest
	if err == nil {
		err = httpx.Decode(r, &req)
	}
	if err == nil {
		err = h.service.SetSpecialPrice(r.Context(), storeID, productID, req.SpecialPrice)
	}
	h.done(w, r, err)
}

func (h *Handler) removeSpecialPrice(w http.ResponseWriter, r *http.Request) {
	storeID, productID, err := ids(r, "product_id")
	if err == nil {
		err = h.service.RemoveSpecialPrice(r.Context(), storeID, productID)
	}
	h.done(w, r, err)
}

func (h *Handler) done(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
