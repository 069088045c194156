package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/wordkeeper/internal/server/jwt"
)

// TokenValidator проверяет access token
type TokenValidator interface {
	Validate(token string) (*jwt.Claims, error)
}

// Auth создает middleware для проверки JWT токена.
// Идентичность пользователя доступна обработчикам через UserID.
func Auth(logger *slog.Logger, validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(ctx, "missing Authorization header", slog.String("path", r.URL.Path))
				writeError(w, http.StatusUnauthorized, "missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				logger.WarnContext(ctx, "invalid Authorization header format")
				writeError(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			logger.DebugContext(ctx, "user authenticated", slog.String("user_id", claims.UserID))
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, claims.UserID, claims.Username)))
		})
	}
}
