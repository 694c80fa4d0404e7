package middleware

import (
	"net/http"
	"strings"

	"surfcamp-booking/pkg/utils"

	"go.uber.org/zap"
)

// Operator middleware protects the manual remediation endpoints with a
// static bearer token. With no token configured every request is rejected;
// these endpoints mutate payment state and must never be open.
func Operator(token string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				logger.Warn("Operator token not configured, rejecting request",
					zap.String("path", r.URL.Path),
				)
				utils.ResponseForbidden(w, "Operator access not configured")
				return
			}

			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				utils.ResponseUnauthorized(w, "Operator token required")
				return
			}
			provided := strings.TrimPrefix(auth, "Bearer ")

			if !utils.SecureCompare(provided, token) {
				logger.Warn("Operator token mismatch",
					zap.String("path", r.URL.Path),
					zap.String("ip", clientIP(r)),
				)
				utils.ResponseUnauthorized(w, "Invalid operator token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
