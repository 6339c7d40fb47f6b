package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Danhnam1/Audit-System-sub000/internal/auth"
	"github.com/Danhnam1/Audit-System-sub000/pkg/logger"
)

// Authenticator validates the bearer token on every request and places the
// caller's identity in the request context. All protected grant routes sit
// behind it; the scanner identity it yields is what Scan and VerifyCode
// record in the audit log.
func Authenticator(verifier *auth.TokenVerifier, lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				lg.Warn("auth middleware: missing authorization token", "path", r.URL.Path)
				http.Error(w, "missing authorization token", http.StatusUnauthorized)
				return
			}

			claims, err := verifier.ValidateToken(token)
			if err != nil {
				lg.Warn("auth middleware: token validation failed", "error", err, "path", r.URL.Path)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			user := claims.ToUser()
			ctx := auth.ContextWithUser(r.Context(), user)
			ctx = logger.With(ctx, "userID", user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
