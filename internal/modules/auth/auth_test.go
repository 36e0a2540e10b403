package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/actor"
	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/modules/staff"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStaff map[string]*staff.Staff

func (m memStaff) Create(_ context.Context, s *staff.Staff) error {
	m[s.Email] = s
	return nil
}

func (m memStaff) GetByID(_ context.Context, id uuid.UUID) (*staff.Staff, error) {
	for _, s := range m {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, apperr.ErrStaffNotFound.New()
}

func (m memStaff) GetByEmail(_ context.Context, email string) (*staff.Staff, error) {
	if s, ok := m[email]; ok {
		return s, nil
	}
	return nil, apperr.ErrStaffNotFound.New()
}

func (m memStaff) List(context.Context) ([]*staff.Staff, error) { return nil, nil }

var secret = []byte("test-secret")

func setup(t *testing.T) (Service, memStaff) {
	t.Helper()
	repo := memStaff{}
	_, err := staff.NewService(repo).Register(context.Background(), staff.RegisterRequest{
		Name: "김민지", Email: "Minji@Lens.kr", Password: "correct-horse",
	})
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	return NewService(repo, secret, time.Hour, logger), repo
}

func TestLoginIssuesActorToken(t *testing.T) {
	svc, _ := setup(t)

	tok, err := svc.Login(context.Background(), LoginRequest{Email: " minji@lens.kr ", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)

	claims, err := actor.Parse(tok.AccessToken, secret)
	require.NoError(t, err)
	assert.Equal(t, "김민지", claims.Name)
	assert.Equal(t, staff.RoleStaff, claims.Role)
	assert.Equal(t, tok.Staff.ID.String(), claims.Subject)

	_, err = actor.Parse(tok.AccessToken, []byte("other"))
	assert.Error(t, err)
}

func TestLoginRejected(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginRequest{Email: "minji@lens.kr", Password: "wrong"})
	assert.True(t, apperr.Is(err, apperr.ErrInvalidCredentials))

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@lens.kr", Password: "correct-horse"})
	assert.True(t, apperr.Is(err, apperr.ErrInvalidCredentials))

	repo["minji@lens.kr"].IsActive = false
	_, err = svc.Login(ctx, LoginRequest{Email: "minji@lens.kr", Password: "correct-horse"})
	assert.True(t, apperr.Is(err, apperr.ErrInvalidCredentials))
}

func TestLoginHandlerFeedsActorMiddleware(t *testing.T) {
	svc, _ := setup(t)
	r := chi.NewRouter()
	r.Use(actor.Middleware(secret))
	NewHandler(svc).RegisterRoutes(r)
	var seen string
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) { seen = actor.FromRequest(r) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"minji@lens.kr","password":"correct-horse"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var body Token
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	token := body.AccessToken

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "김민지", seen)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"minji@lens.kr","password":"nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
