package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"conversa/auth"
	"conversa/errors"
)

type claimsKey struct{}

// ClaimsFrom retrieves the authenticated claims stored by the auth
// middleware. ok is false when the request never went through it.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

// NewAuthMiddleware resolves the principal before the websocket upgrade.
// The token is read from the session-token cookie or an Authorization
// bearer header. An unauthenticated connect attempt is rejected with 401
// and the connection is never accepted; no chat side effects occur.
func NewAuthMiddleware(logger *slog.Logger, tokens *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				if cookie, err := r.Cookie(SessionCookieName); err == nil {
					tokenString = cookie.Value
				}
			}
			if tokenString == "" {
				logger.Warn("connect attempt without token", slog.String("remote", r.RemoteAddr))
				http.Error(w, errors.ErrUnauthenticated.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				logger.Warn("connect attempt with invalid token",
					slog.String("remote", r.RemoteAddr), slog.Any("error", err))
				http.Error(w, errors.ErrUnauthenticated.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
