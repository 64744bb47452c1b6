package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/go-booking-auth/internal/errors"
	"github.com/jrsteele09/go-booking-auth/session"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyIdentity stores the verified *session.Identity
	ContextKeyIdentity ContextKey = "identity"
)

// MessageSessionExpired tells the client to log in again rather than retry
const MessageSessionExpired = "session expired"

type identityClaims struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// IdentityFromContext returns the identity injected by RequireAuth
func IdentityFromContext(ctx context.Context) (*session.Identity, bool) {
	identity, ok := ctx.Value(ContextKeyIdentity).(*session.Identity)
	return identity, ok
}

// RequireAuth is middleware that verifies a Bearer session token: signature, issuer
// and expiry. This is the check that actually guards data; the client-side guard only
// decides what the UI shows.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			scheme, rawToken, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(rawToken) == "" {
				writeError(w, http.StatusUnauthorized, "invalid Authorization header format")
				return
			}

			idToken, err := s.verifier.Verify(r.Context(), strings.TrimSpace(rawToken))
			if err != nil {
				var expiredErr *oidc.TokenExpiredError
				if apperrors.As(err, &expiredErr) {
					log.Debug().Err(apperrors.Wrapf(apperrors.ErrTokenExpired, "expired at %s", expiredErr.Expiry)).Msg("bearer token rejected")
					writeError(w, http.StatusUnauthorized, MessageSessionExpired)
					return
				}
				log.Debug().Err(err).Msg("bearer token rejected")
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			var claims identityClaims
			if err := idToken.Claims(&claims); err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			identity := &session.Identity{
				UserID: idToken.Subject,
				Name:   claims.Name,
				Email:  claims.Email,
				Roles:  claims.Roles,
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyIdentity, identity)))
		}
	}
}
