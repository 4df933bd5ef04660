package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nuvemflow/orderdesk-backend/api/responses"
	pkgAuth "github.com/nuvemflow/orderdesk-backend/pkg/auth"
	"github.com/nuvemflow/orderdesk-backend/pkg/auth/session"
	"github.com/nuvemflow/orderdesk-backend/pkg/config"
	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
)

const bearerPrefix = "bearer "

// BearerToken extracts the token from an Authorization header. The "Bearer"
// prefix is optional.
func BearerToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = strings.TrimSpace(token[len(bearerPrefix):])
	}
	return token
}

// Auth rejects requests without a valid access token backed by a live session.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r.Context(), cfg, verifier, BearerToken(r))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			userID := claims.UserID.String()
			role := string(claims.Role)
			ctx := withString(r.Context(), ctxUserID, userID)
			ctx = withString(ctx, ctxRole, role)
			ctx = withString(ctx, ctxAccessID, claims.ID)
			if logg != nil {
				ctx = logg.WithRole(logg.WithUserID(ctx, userID), role)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, cfg config.JWTConfig, verifier session.AccessSessionChecker, token string) (*pkgAuth.AccessTokenClaims, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if verifier == nil {
		return claims, nil
	}

	ok, err := verifier.HasSession(ctx, claims.ID)
	switch {
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	case !ok:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
	}
	return claims, nil
}
