package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	brands   map[uuid.UUID]*Brand
	products map[uuid.UUID]*Product
	options  map[uuid.UUID]*ProductOption
}

func newMemRepo() *memRepo {
	return &memRepo{
		brands:   map[uuid.UUID]*Brand{},
		products: map[uuid.UUID]*Product{},
		options:  map[uuid.UUID]*ProductOption{},
	}
}

func (m *memRepo) CreateBrand(_ context.Context, b *Brand) error {
	for _, x := range m.brands {
		if x.Name == b.Name {
			return apperr.ErrDuplicate.New("brand " + b.Name)
		}
	}
	cp := *b
	m.brands[b.ID] = &cp
	return nil
}

func (m *memRepo) UpdateBrand(_ context.Context, b *Brand) error {
	cp := *b
	m.brands[b.ID] = &cp
	return nil
}

func (m *memRepo) GetBrand(_ context.Context, id uuid.UUID) (*Brand, error) {
	b, ok := m.brands[id]
	if !ok {
		return nil, apperr.ErrBrandNotFound.New()
	}
	cp := *b
	return &cp, nil
}

func (m *memRepo) ListBrands(_ context.Context, activeOnly bool) ([]*Brand, error) {
	var out []*Brand
	for _, b := range m.brands {
		if !activeOnly || b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memRepo) CreateProduct(_ context.Context, p *Product) error {
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memRepo) UpdateProduct(_ context.Context, p *Product) error {
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memRepo) GetProduct(_ context.Context, id uuid.UUID) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, apperr.ErrProductNotFound.New(id)
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) ListProducts(_ context.Context, f ProductFilter) ([]*Product, error) {
	var out []*Product
	for _, p := range m.products {
		if f.BrandID != nil && p.BrandID != *f.BrandID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memRepo) CreateOption(_ context.Context, o *ProductOption) error {
	for _, x := range m.options {
		if x.ProductID == o.ProductID && x.Sph == o.Sph && x.Cyl == o.Cyl {
			return apperr.ErrDuplicate.New("option " + o.Sph + "/" + o.Cyl)
		}
	}
	cp := *o
	m.options[o.ID] = &cp
	return nil
}

func (m *memRepo) UpdateOption(_ context.Context, o *ProductOption) error {
	cp := *o
	m.options[o.ID] = &cp
	return nil
}

func (m *memRepo) GetOption(_ context.Context, id uuid.UUID) (*ProductOption, error) {
	o, ok := m.options[id]
	if !ok {
		return nil, apperr.ErrOptionNotFound.New(id)
	}
	cp := *o
	return &cp, nil
}

func (m *memRepo) OptionByBarcode(_ context.Context, barcode string) (*ProductOption, error) {
	for _, o := range m.options {
		if o.Barcode != nil && *o.Barcode == barcode {
			cp := *o
			return &cp, nil
		}
	}
	return nil, apperr.ErrOptionNotFound.New(barcode)
}

func (m *memRepo) ListOptions(_ context.Context, productID uuid.UUID) ([]*ProductOption, error) {
	var out []*ProductOption
	for _, o := range m.options {
		if o.ProductID == productID {
			out = append(out, o)
		}
	}
	return out, nil
}

func newService(t *testing.T) (*service, *memRepo) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	repo := newMemRepo()
	svc := NewService(repo, logger).(*service)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

func seedProduct(t *testing.T, svc *service) *Product {
	t.Helper()
	ctx := context.Background()
	b, err := svc.CreateBrand(ctx, BrandRequest{Name: "Nikon"})
	require.NoError(t, err)
	p, err := svc.CreateProduct(ctx, ProductRequest{BrandID: b.ID, Name: "1.60 ASP", SellingPrice: 20000, PurchasePrice: 9000})
	require.NoError(t, err)
	return p
}

func TestCreateProduct(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p := seedProduct(t, svc)
	assert.True(t, p.IsActive)

	_, err := svc.CreateProduct(ctx, ProductRequest{BrandID: uuid.New(), Name: "x"})
	assert.True(t, apperr.Is(err, apperr.ErrBrandNotFound))

	_, err = svc.CreateProduct(ctx, ProductRequest{BrandID: p.BrandID, Name: "x", SellingPrice: -1})
	assert.True(t, apperr.Is(err, apperr.ErrPriceInvalid))

	_, err = svc.CreateProduct(ctx, ProductRequest{BrandID: p.BrandID, Name: "x", SellingPrice: 1e15})
	assert.True(t, apperr.Is(err, apperr.ErrPriceTooLarge))

	_, err = svc.CreateBrand(ctx, BrandRequest{Name: "Nikon"})
	assert.True(t, apperr.Is(err, apperr.ErrDuplicate))
}

func TestCreateOptionNormalizesAndStartsEmpty(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p := seedProduct(t, svc)

	o, err := svc.CreateOption(ctx, p.ID, OptionRequest{Sph: "-1", Cyl: "0", Barcode: " 880001 "})
	require.NoError(t, err)
	assert.Equal(t, "-1.00", o.Sph)
	assert.Equal(t, "0.00", o.Cyl)
	assert.Zero(t, o.Stock)
	require.NotNil(t, o.Barcode)
	assert.Equal(t, "880001", *o.Barcode)

	_, err = svc.CreateOption(ctx, p.ID, OptionRequest{Sph: "-1.0", Cyl: "0.00"})
	assert.True(t, apperr.Is(err, apperr.ErrDuplicate))

	_, err = svc.CreateOption(ctx, uuid.New(), OptionRequest{Sph: "-1"})
	assert.True(t, apperr.Is(err, apperr.ErrProductNotFound))

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Options, 1)
}

func TestUpdateOptionKeepsStock(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	p := seedProduct(t, svc)
	o, err := svc.CreateOption(ctx, p.ID, OptionRequest{Sph: "-2"})
	require.NoError(t, err)
	repo.options[o.ID].Stock = 7

	inactive := false
	updated, err := svc.UpdateOption(ctx, o.ID, OptionRequest{Sph: "-2", Location: "A-3", IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, 7.0, updated.Stock)
	assert.Equal(t, "A-3", updated.Location)
	assert.False(t, updated.IsActive)
	assert.Nil(t, updated.Barcode)
}

func TestOptionByBarcodeHandler(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p := seedProduct(t, svc)
	_, err := svc.CreateOption(ctx, p.ID, OptionRequest{Sph: "-1.5", Barcode: "880002"})
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/options/barcode/880002", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sph":"-1.50"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/options/barcode/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	body := strings.NewReader(`{"name": ""}`)
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/brands", body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
