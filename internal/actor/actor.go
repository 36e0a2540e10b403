// Package actor threads the acting back-office user through request contexts.
package actor

import (
	"context"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
)

// System is recorded when no user could be resolved.
const System = "system"

// HeaderName carries an identity already resolved by an upstream gateway.
const HeaderName = "X-Actor"

type ctxKey struct{}

// Claims is the JWT payload issued at staff login.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
	jwt.StandardClaims
}

// WithName stores the actor name on ctx.
func WithName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxKey{}, name)
}

// FromContext returns the actor recorded on ctx, or System.
func FromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ctxKey{}).(string); ok && name != "" {
		return name
	}
	return System
}

// FromRequest is FromContext for a request; it fits logging.ActorFunc.
func FromRequest(r *http.Request) string { return FromContext(r.Context()) }

// Middleware resolves the actor from a bearer token, then the gateway header.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := ""
			if raw := bearer(r); raw != "" {
				if claims, err := Parse(raw, secret); err == nil {
					name = claims.Name
				}
			}
			if name == "" {
				name = strings.TrimSpace(r.Header.Get(HeaderName))
			}
			if name != "" {
				r = r.WithContext(WithName(r.Context(), name))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Parse validates an HS256 token and returns its claims.
func Parse(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
