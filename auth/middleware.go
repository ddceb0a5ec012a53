package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/user/portfolio-go/apperror"
	"github.com/user/portfolio-go/render"
)

// Rejection messages of the authenticate stage.
const (
	MsgNoToken         = "not authorized, no token"
	MsgTokenFailed     = "not authorized, token failed verification"
	MsgIdentityRemoved = "user no longer exists, authorization failed"
	MsgNotAdmin        = "not authorized as an admin"
)

const bearerPrefix = "bearer "

// Guard is the request-time access gate. Authenticate resolves the caller,
// RequireRole and the ownership helpers decide entitlement.
type Guard struct {
	tokens        *TokenService
	store         IdentityStore
	rd            *render.Renderer
	logger        *slog.Logger
	lookupTimeout time.Duration
}

// NewGuard creates a Guard. A non-positive lookupTimeout leaves the lookup bounded
// only by the request context.
func NewGuard(tokens *TokenService, store IdentityStore, rd *render.Renderer, logger *slog.Logger, lookupTimeout time.Duration) *Guard {
	return &Guard{
		tokens:        tokens,
		store:         store,
		rd:            rd,
		logger:        logger,
		lookupTimeout: lookupTimeout,
	}
}

// Authenticate requires a valid bearer token for a still-existing identity.
// On success the identity (without secret) is placed in the request context;
// on any failure the chain stops here.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			g.rd.Error(w, r, apperror.NewUnauthorizedError(MsgNoToken, nil))
			return
		}

		identityID, err := g.tokens.Verify(tokenString)
		if err != nil {
			kind := "unknown"
			var tokenErr *TokenError
			if errors.As(err, &tokenErr) {
				kind = tokenErr.Kind.String()
			}
			g.logger.DebugContext(r.Context(), "token verification failed", "kind", kind)
			g.rd.Error(w, r, apperror.NewUnauthorizedError(MsgTokenFailed, err))
			return
		}

		ctx := r.Context()
		if g.lookupTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, g.lookupTimeout)
			defer cancel()
		}

		identity, found, err := g.store.FindByID(ctx, identityID, ExcludeSecret)
		if err != nil {
			g.rd.Error(w, r, apperror.NewDatabaseError("failed to resolve identity", err))
			return
		}
		if !found {
			g.logger.InfoContext(r.Context(), "token references a removed identity", "identity_id", identityID)
			g.rd.Error(w, r, apperror.NewUnauthorizedError(MsgIdentityRemoved, nil))
			return
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), identity)))
	})
}

// RequireRole allows the request only when the authenticated identity has the role.
// Without an identity in the context it fails closed with 401.
func (g *Guard) RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := FromContext(r.Context())
			if !ok {
				g.rd.Error(w, r, apperror.NewUnauthorizedError(MsgNoToken, nil))
				return
			}
			if identity.Role != role {
				msg := "insufficient role"
				if role == RoleAdmin {
					msg = MsgNotAdmin
				}
				g.rd.Error(w, r, apperror.NewForbiddenError(msg, nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
