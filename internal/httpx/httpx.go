// Package httpx holds the JSON response helpers shared by module handlers.
package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

var (
	logger      log.FieldLogger = log.StandardLogger()
	defaultLang                 = language.Korean
)

// Setup sets the logger used for internal failures and the fallback response language.
func Setup(l log.FieldLogger, lang string) {
	if l != nil {
		logger = l
	}
	if tag, err := language.Parse(lang); err == nil {
		defaultLang = apperr.Negotiate(tag.String(), language.Korean)
	}
}

// Respond writes body as JSON.
func Respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Error translates err into a localized JSON error response.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal(err)
	}
	if e.Kind == apperr.KindInternal {
		logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	lang := apperr.Negotiate(r.Header.Get("Accept-Language"), defaultLang)
	Respond(w, e.HTTPStatus(), ErrorBody{
		Error:   apperr.Localize(e, lang),
		Code:    e.Code,
		Details: e.Details,
	})
}

// Decode reads a JSON request body into dst.
func Decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.ErrInvalidBody.Wrap(err)
	}
	return nil
}

// ParseUUID parses an id from a path or query value.
func ParseUUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.ErrInvalidID.New(field, raw)
	}
	return id, nil
}

// OptionalUUID parses raw when it is non-empty.
func OptionalUUID(field, raw string) (*uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := ParseUUID(field, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// QueryDate parses a YYYY-MM-DD query value; empty yields nil.
func QueryDate(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, apperr.ErrInvalidID.New(key, raw)
	}
	return &t, nil
}

// QueryInt parses an integer query value with a default.
func QueryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
