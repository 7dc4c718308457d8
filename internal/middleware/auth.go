package middleware

import (
	"log/slog"
	"net/http"

	"github.com/burgasvv/parking-service/internal/apperr"
	"github.com/burgasvv/parking-service/internal/auth"
	"github.com/burgasvv/parking-service/internal/repository"
)

// AuthConfig holds the collaborators of the authentication middleware.
type AuthConfig struct {
	Logger     *slog.Logger
	Repository *repository.Repository
}

// BasicAuth returns a middleware that authenticates requests with HTTP
// Basic credentials: email as the user name, verified against the
// stored bcrypt hash. Disabled accounts are rejected. On success the
// caller is injected into the request context.
func BasicAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger.With("component", "middleware.auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="parking-service"`)
				writeError(w, apperr.Unauthenticated("missing credentials"))
				return
			}

			ident, err := cfg.Repository.GetIdentityByEmail(r.Context(), email)
			if err != nil {
				if apperr.IsKind(err, apperr.KindNotFound) {
					logger.Warn("authentication failed",
						slog.String("reason", "unknown_email"),
						slog.String("remote_addr", r.RemoteAddr),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeError(w, apperr.Unauthenticated("invalid credentials"))
					return
				}
				logger.Error("store error during authentication",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, err)
				return
			}

			if !auth.VerifyPassword(password, ident.Password) {
				logger.Warn("authentication failed",
					slog.String("reason", "wrong_password"),
					slog.String("remote_addr", r.RemoteAddr),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, apperr.Unauthenticated("invalid credentials"))
				return
			}

			if !ident.Enabled {
				writeError(w, apperr.Unauthenticated("account is disabled"))
				return
			}

			caller := &auth.Caller{
				IdentityID: ident.ID,
				Email:      ident.Email,
				Authority:  ident.Authority,
			}
			ctx := auth.ContextWithCaller(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
