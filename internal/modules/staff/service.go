package staff

import (
	"context"
	"strings"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced at registration.
const MinPasswordLength = 8

// Service defines staff account management.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Staff, error)
	Get(ctx context.Context, id uuid.UUID) (*Staff, error)
	List(ctx context.Context) ([]*Staff, error)
}

type service struct {
	repo Repository
	cost int
	now  func() time.Time
}

// NewService creates a new staff service.
func NewService(repo Repository) Service {
	return &service{repo: repo, cost: bcrypt.DefaultCost, now: time.Now}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Staff, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" {
		return nil, apperr.ErrRequired.New("name")
	}
	if email == "" {
		return nil, apperr.ErrRequired.New("email")
	}
	if len(req.Password) < MinPasswordLength {
		return nil, apperr.ErrPasswordWeak.New(MinPasswordLength)
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != RoleAdmin {
		role = RoleStaff
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	now := s.now()
	st := &Staff{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Staff, error) {
	out, err := s.repo.List(ctx)
	if out == nil && err == nil {
		out = []*Staff{}
	}
	return out, err
}
