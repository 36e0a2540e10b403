package catalog

import (
	"net/http"
	"strings"

	"github.com/georgemunganga/lensworks-backend/internal/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/brands", h.listBrands)
	r.Post("/api/v1/brands", h.createBrand)
	r.Put("/api/v1/brands/{id}", h.updateBrand)

	r.Get("/api/v1/products", h.listProducts) // ?brand_id=&q=&active=
	r.Post("/api/v1/products", h.createProduct)
	r.Get("/api/v1/products/{id}", h.getProduct)
	r.Put("/api/v1/products/{id}", h.updateProduct)
	r.Post("/api/v1/products/{id}/options", h.createOption)

	r.Put("/api/v1/options/{id}", h.updateOption)
	r.Get("/api/v1/options/barcode/{barcode}", h.optionByBarcode)
}

// ── brands ──────────────────────────────────────────────────────────────────

func (h *Handler) listBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.ListBrands(r.Context(), r.URL.Query().Get("active") != "false")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, brands)
}

func (h *Handler) createBrand(w http.ResponseWriter, r *http.Request) {
	var req BrandRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	b, err := h.service.CreateBrand(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, b)
}

func (h *Handler) updateBrand(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("brand_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req BrandRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	b, err := h.service.UpdateBrand(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, b)
}

// ── products ────────────────────────────────────────────────────────────────

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	brandID, err := httpx.OptionalUUID("brand_id", q.Get("brand_id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	products, err := h.service.ListProducts(r.Context(), ProductFilter{
		BrandID:    brandID,
		Query:      strings.TrimSpace(q.Get("q")),
		ActiveOnly: q.Get("active") != "false",
		Limit:      httpx.QueryInt(r, "limit", 200),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	p, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("product_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("product_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req ProductRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

// ── options ─────────────────────────────────────────────────────────────────

func (h *Handler) createOption(w http.ResponseWriter, r *http.Request) {
	productID, err := httpx.ParseUUID("product_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req OptionRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	o, err := h.service.CreateOption(r.Context(), productID, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, o)
}

func (h *Handler) updateOption(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseUUID("option_id", chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req OptionRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	o, err := h.service.UpdateOption(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, o)
}

func (h *Handler) optionByBarcode(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.OptionByBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, o)
}
