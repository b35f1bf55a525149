package middleware

import (
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/dinostore/backend/internal/services"
)

type contextKey string

const externalIDKey contextKey = "externalID"

// SessionResolver maps a session token to the external identity it is bound to.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// SessionAuth resolves the caller's session from the session cookie or an
// Authorization: Bearer header.
type SessionAuth struct {
	resolver   SessionResolver
	cookieName string
}

func NewSessionAuth(resolver SessionResolver, cookieName string) *SessionAuth {
	return &SessionAuth{resolver: resolver, cookieName: cookieName}
}

// RequireSession rejects requests without a live session.
func (a *SessionAuth) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r, a.cookieName)
		if token == "" {
			services.SendErrorResponse(w, "Authentication required", http.StatusUnauthorized, nil)
			return
		}

		externalID, err := a.resolver.Resolve(r.Context(), token)
		if err != nil {
			status := services.StatusFor(err)
			if status == http.StatusInternalServerError {
				log.WithError(err).Error("[SESSION] Session lookup failed")
			}
			services.SendError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithExternalID(r.Context(), externalID)))
	})
}

// OptionalSession attaches the identity when the session resolves and passes
// the request through unchanged otherwise.
func (a *SessionAuth) OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := TokenFromRequest(r, a.cookieName); token != "" {
			if externalID, err := a.resolver.Resolve(r.Context(), token); err == nil {
				r = r.WithContext(WithExternalID(r.Context(), externalID))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// TokenFromRequest prefers the session cookie over the Authorization header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

func WithExternalID(ctx context.Context, externalID string) context.Context {
	return context.WithValue(ctx, externalIDKey, externalID)
}

// ExternalIDFromContext returns "" for anonymous requests.
func ExternalIDFromContext(ctx context.Context) string {
	externalID, _ := ctx.Value(externalIDKey).(string)
	return externalID
}
