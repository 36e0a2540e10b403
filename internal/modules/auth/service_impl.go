package auth

import (
	"context"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/georgemunganga/lensworks-backend/internal/actor"
	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/modules/staff"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type service struct {
	staffRepo staff.Repository
	secret    []byte
	ttl       time.Duration
	logger    log.FieldLogger
	now       func() time.Time
}

// NewService creates a new auth service issuing HS256 tokens signed with secret.
func NewService(staffRepo staff.Repository, secret []byte, ttl time.Duration, logger log.FieldLogger) Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &service{staffRepo: staffRepo, secret: secret, ttl: ttl, logger: logger, now: time.Now}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Token, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	st, err := s.staffRepo.GetByEmail(ctx, email)
	if apperr.Is(err, apperr.ErrStaffNotFound) {
		return nil, apperr.ErrInvalidCredentials.New()
	}
	if err != nil {
		return nil, err
	}
	if !st.IsActive {
		return nil, apperr.ErrInvalidCredentials.New()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.WithField("email", email).Warn("login failed")
		return nil, apperr.ErrInvalidCredentials.New()
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &actor.Claims{
		Name: st.Name,
		Role: st.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   st.ID.String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, errors.Wrap(err, "sign token")
	}
	s.logger.WithFields(log.Fields{"staff_id": st.ID, "name": st.Name}).Info("staff logged in")
	return &Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expiresAt, Staff: st}, nil
}
