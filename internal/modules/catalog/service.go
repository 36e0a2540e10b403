package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Service defines catalog business logic.
type Service interface {
	CreateBrand(ctx context.Context, req BrandRequest) (*Brand, error)
	UpdateBrand(ctx context.Context, id uuid.UUID, req BrandRequest) (*Brand, error)
	ListBrands(ctx context.Context, activeOnly bool) ([]*Brand, error)

	CreateProduct(ctx context.Context, req ProductRequest) (*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest) (*Product, error)
	// GetProduct returns the product with its options.
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]*Product, error)

	// CreateOption adds a prescription SKU with zero stock.
	CreateOption(ctx context.Context, productID uuid.UUID, req OptionRequest) (*ProductOption, error)
	UpdateOption(ctx context.Context, id uuid.UUID, req OptionRequest) (*ProductOption, error)
	OptionByBarcode(ctx context.Context, barcode string) (*ProductOption, error)
}

type service struct {
	repo   Repository
	logger log.FieldLogger
	now    func() time.Time
}

func NewService(repo Repository, logger log.FieldLogger) Service {
	return &service{repo: repo, logger: logger, now: time.Now}
}

// ── brands ──────────────────────────────────────────────────────────────────

func (s *service) CreateBrand(ctx context.Context, req BrandRequest) (*Brand, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.ErrRequired.New("name")
	}
	now := s.now()
	b := &Brand{ID: uuid.New(), Name: name, IsActive: true, CreatedAt: now, UpdatedAt: now}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	if err := s.repo.CreateBrand(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) UpdateBrand(ctx context.Context, id uuid.UUID, req BrandRequest) (*Brand, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.ErrRequired.New("name")
	}
	b, err := s.repo.GetBrand(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Name = name
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	b.UpdatedAt = s.now()
	if err := s.repo.UpdateBrand(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ListBrands(ctx context.Context, activeOnly bool) ([]*Brand, error) {
	brands, err := s.repo.ListBrands(ctx, activeOnly)
	if brands == nil && err == nil {
		brands = []*Brand{}
	}
	return brands, err
}

// ── products ────────────────────────────────────────────────────────────────

func (s *service) validateProduct(ctx context.Context, req ProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperr.ErrRequired.New("name")
	}
	if req.SellingPrice < 0 || req.PurchasePrice < 0 {
		return apperr.ErrPriceInvalid.New()
	}
	if req.SellingPrice > ledger.MaxUnitPrice || req.PurchasePrice > ledger.MaxUnitPrice {
		return apperr.ErrPriceTooLarge.New(int64(ledger.MaxUnitPrice))
	}
	if req.BrandID == uuid.Nil {
		return apperr.ErrRequired.New("brand_id")
	}
	_, err := s.repo.GetBrand(ctx, req.BrandID)
	return err
}

func applyProduct(p *Product, req ProductRequest) {
	p.BrandID = req.BrandID
	p.Name = strings.TrimSpace(req.Name)
	p.LensType = req.LensType
	p.RefractiveIndex = req.RefractiveIndex
	p.SellingPrice = req.SellingPrice
	p.PurchasePrice = req.PurchasePrice
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
}

func (s *service) CreateProduct(ctx context.Context, req ProductRequest) (*Product, error) {
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}
	now := s.now()
	p := &Product{ID: uuid.New(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	applyProduct(p, req)
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.logger.WithFields(log.Fields{"product_id": p.ID, "name": p.Name}).Info("product created")
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest) (*Product, error) {
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProduct(p, req)
	p.UpdatedAt = s.now()
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Options, err = s.repo.ListOptions(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ListProducts(ctx context.Context, f ProductFilter) ([]*Product, error) {
	products, err := s.repo.ListProducts(ctx, f)
	if products == nil && err == nil {
		products = []*Product{}
	}
	return products, err
}

// ── options ─────────────────────────────────────────────────────────────────

func applyOption(o *ProductOption, req OptionRequest) {
	o.Sph = NormalizeDiopter(req.Sph)
	o.Cyl = NormalizeDiopter(req.Cyl)
	o.Location = strings.TrimSpace(req.Location)
	o.Barcode = nil
	if bc := strings.TrimSpace(req.Barcode); bc != "" {
		o.Barcode = &bc
	}
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}
}

func (s *service) CreateOption(ctx context.Context, productID uuid.UUID, req OptionRequest) (*ProductOption, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	now := s.now()
	o := &ProductOption{ID: uuid.New(), ProductID: productID, IsActive: true, CreatedAt: now, UpdatedAt: now}
	applyOption(o, req)
	if err := s.repo.CreateOption(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) UpdateOption(ctx context.Context, id uuid.UUID, req OptionRequest) (*ProductOption, error) {
	o, err := s.repo.GetOption(ctx, id)
	if err != nil {
		return nil, err
	}
	applyOption(o, req)
	o.UpdatedAt = s.now()
	if err := s.repo.UpdateOption(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) OptionByBarcode(ctx context.Context, barcode string) (*ProductOption, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, apperr.ErrRequired.New("barcode")
	}
	return s.repo.OptionByBarcode(ctx, barcode)
}
