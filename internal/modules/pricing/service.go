package pricing

import (
	"context"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Service resolves unit prices and manages per-store pricing rules.
type Service interface {
	// Quote resolves the unit price a store pays for a product.
	Quote(ctx context.Context, storeID, productID uuid.UUID) (*Quote, error)

	Rules(ctx context.Context, storeID uuid.UUID) (*Rules, error)

	SetBrandDiscount(ctx context.Context, storeID, brandID uuid.UUID, rate float64) error
	RemoveBrandDiscount(ctx context.Context, storeID, brandID uuid.UUID) error
	SetProductDiscount(ctx context.Context, storeID, productID uuid.UUID, rate float64) error
	RemoveProductDiscount(ctx context.Context, storeID, productID uuid.UUID) error
	SetSpecialPrice(ctx context.Context, storeID, productID uuid.UUID, price int64) error
	RemoveSpecialPrice(ctx context.Context, storeID, productID uuid.UUID) error
}

type service struct {
	repo   Repository
	logger log.FieldLogger
}

// NewService creates a new pricing service.
func NewService(repo Repository, logger log.FieldLogger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) Quote(ctx context.Context, storeID, productID uuid.UUID) (*Quote, error) {
	p, err := s.repo.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.Overrides(ctx, storeID, productID, p.BrandID)
	if err != nil {
		return nil, err
	}
	q := Resolve(p, o)
	return &q, nil
}

func (s *service) Rules(ctx context.Context, storeID uuid.UUID) (*Rules, error) {
	rules, err := s.repo.ListRules(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if rules.BrandDiscounts == nil {
		rules.BrandDiscounts = []BrandDiscount{}
	}
	if rules.ProductDiscounts == nil {
		rules.ProductDiscounts = []ProductDiscount{}
	}
	if rules.SpecialPrices == nil {
		rules.SpecialPrices = []SpecialPrice{}
	}
	return rules, nil
}

// ValidRate reports whether rate is a usable discount percentage.
func ValidRate(rate float64) bool { return rate >= 0 && rate <= 100 }

func (s *service) SetBrandDiscount(ctx context.Context, storeID, brandID uuid.UUID, rate float64) error {
	if !ValidRate(rate) {
		return apperr.ErrRateInvalid.New()
	}
	if _, err := s.repo.StoreRate(ctx, storeID); err != nil {
		return err
	}
	ok, err := s.repo.BrandExists(ctx, brandID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrBrandNotFound.New()
	}
	if err := s.repo.UpsertBrandDiscount(ctx, storeID, brandID, rate); err != nil {
		return err
	}
	s.logger.WithFields(log.Fields{"store_id": storeID, "brand_id": brandID, "rate": rate}).Info("brand discount set")
	return nil
}

func (s *service) RemoveBrandDiscount(ctx context.Context, storeID, brandID uuid.UUID) error {
	return s.repo.DeleteBrandDiscount(ctx, storeID, brandID)
}

func (s *service) SetProductDiscount(ctx context.Context, storeID, productID uuid.UUID, rate float64) error {
	if !ValidRate(rate) {
		return apperr.ErrRateInvalid.New()
	}
	if err := s.checkStoreProduct(ctx, storeID, productID); err != nil {
		return err
	}
	if err := s.repo.UpsertProductDiscount(ctx, storeID, productID, rate); err != nil {
		return err
	}
	s.logger.WithFields(log.Fields{"store_id": storeID, "product_id": productID, "rate": rate}).Info("product discount set")
	return nil
}

func (s *service) RemoveProductDiscount(ctx context.Context, storeID, productID uuid.UUID) error {
	return s.repo.DeleteProductDiscount(ctx, storeID, productID)
}

func (s *service) SetSpecialPrice(ctx context.Context, storeID, productID uuid.UUID, price int64) error {
	if price < 0 {
		return apperr.ErrPriceInvalid.New()
	}
	if price > ledger.MaxUnitPrice {
		return apperr.ErrPriceTooLarge.New(int64(ledger.MaxUnitPrice))
	}
	if err := s.checkStoreProduct(ctx, storeID, productID); err != nil {
		return err
	}
	if err := s.repo.UpsertSpecialPrice(ctx, storeID, productID, price); err != nil {
		return err
	}
	s.logger.WithFields(log.Fields{"store_id": storeID, "product_id": productID, "price": price}).Info("special price set")
	return nil
}

func (s *service) RemoveSpecialPrice(ctx context.Context, storeID, productID uuid.UUID) error {
	return s.repo.DeleteSpecialPrice(ctx, storeID, productID)
}

func (s *service) checkStoreProduct(ctx context.Context, storeID, productID uuid.UUID) error {
	if _, err := s.repo.StoreRate(ctx, storeID); err != nil {
		return err
	}
	_, err := s.repo.Product(ctx, productID)
	return err
}
