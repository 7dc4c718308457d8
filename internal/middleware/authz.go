package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/burgasvv/parking-service/internal/apperr"
	"github.com/burgasvv/parking-service/internal/auth"
	"github.com/burgasvv/parking-service/internal/repository"
)

// Policy names an authorization tier. Routes declare their policy at
// registration; nothing is ever inferred from the request path.
type Policy string

const (
	// PolicyPublic requires no credentials.
	PolicyPublic Policy = "public"
	// PolicyAuthenticated requires any enabled account.
	PolicyAuthenticated Policy = "authenticated"
	// PolicyAdmin requires the ADMIN authority.
	PolicyAdmin Policy = "admin"
	// PolicyOwnIdentity requires the target identity to be the caller.
	PolicyOwnIdentity Policy = "own-identity"
	// PolicyOwnCar requires the target car to belong to the caller.
	PolicyOwnCar Policy = "own-car"
)

// AuthzConfig holds the collaborators of the ownership middlewares.
type AuthzConfig struct {
	Logger     *slog.Logger
	Repository *repository.Repository
}

// RequireAdmin rejects callers without the ADMIN authority.
// Must be applied after BasicAuth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := auth.CallerFromContext(r.Context())
			if caller == nil {
				writeError(w, apperr.Unauthenticated("missing credentials"))
				return
			}
			if !caller.IsAdmin() {
				writeError(w, apperr.Forbidden("admin authority required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OwnIdentityFromQuery requires the identity named by the query
// parameter to be the caller's own account.
func OwnIdentityFromQuery(cfg AuthzConfig, param string) func(http.Handler) http.Handler {
	return requireOwnership(cfg, func(r *http.Request) (uuid.UUID, error) {
		return idFromQuery(r, param)
	}, identityOwnerEmail)
}

// OwnIdentityFromBody requires the identity named by the JSON body's
// "id" field to be the caller's own account. The body is restored for
// the handler.
func OwnIdentityFromBody(cfg AuthzConfig) func(http.Handler) http.Handler {
	return requireOwnership(cfg, func(r *http.Request) (uuid.UUID, error) {
		return idFromBody(r, func(t targetBody) *uuid.UUID { return t.ID })
	}, identityOwnerEmail)
}

// OwnCarFromQuery requires the car named by the query parameter to
// belong to the caller.
func OwnCarFromQuery(cfg AuthzConfig, param string) func(http.Handler) http.Handler {
	return requireOwnership(cfg, func(r *http.Request) (uuid.UUID, error) {
		return idFromQuery(r, param)
	}, carOwnerEmail)
}

// OwnCarFromBody requires the car named by the JSON body's "id" field
// to belong to the caller. The body is restored for the handler.
func OwnCarFromBody(cfg AuthzConfig) func(http.Handler) http.Handler {
	return requireOwnership(cfg, func(r *http.Request) (uuid.UUID, error) {
		return idFromBody(r, func(t targetBody) *uuid.UUID { return t.ID })
	}, carOwnerEmail)
}

// OwnCarDraft requires the JSON body's "identity_id" field, the future
// owner of a car being created, to be the caller's own account. The
// body is restored for the handler.
func OwnCarDraft(cfg AuthzConfig) func(http.Handler) http.Handler {
	return requireOwnership(cfg, func(r *http.Request) (uuid.UUID, error) {
		return idFromBody(r, func(t targetBody) *uuid.UUID { return t.IdentityID })
	}, identityOwnerEmail)
}

// ownerEmail resolves the email owning the target entity.
type ownerEmail func(r *http.Request, repo *repository.Repository, id uuid.UUID) (string, error)

func identityOwnerEmail(r *http.Request, repo *repository.Repository, id uuid.UUID) (string, error) {
	ident, err := repo.GetIdentityByID(r.Context(), id)
	if err != nil {
		return "", err
	}
	return ident.Email, nil
}

func carOwnerEmail(r *http.Request, repo *repository.Repository, id uuid.UUID) (string, error) {
	return repo.GetCarOwnerEmail(r.Context(), id)
}

func requireOwnership(cfg AuthzConfig, target func(*http.Request) (uuid.UUID, error), owner ownerEmail) func(http.Handler) http.Handler {
	logger := cfg.Logger.With("component", "middleware.authz")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := auth.CallerFromContext(r.Context())
			if caller == nil {
				writeError(w, apperr.Unauthenticated("missing credentials"))
				return
			}

			id, err := target(r)
			if err != nil {
				writeError(w, err)
				return
			}

			email, err := owner(r, cfg.Repository, id)
			if err != nil {
				writeError(w, err)
				return
			}

			if email != caller.Email {
				logger.Warn("ownership check failed",
					slog.String("caller", caller.Email),
					slog.String("target_id", id.String()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, apperr.Forbidden("not the owner of the target entity"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// targetBody is the subset of mutation bodies the ownership checks need.
type targetBody struct {
	ID         *uuid.UUID `json:"id"`
	IdentityID *uuid.UUID `json:"identity_id"`
}

func idFromQuery(r *http.Request, param string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return uuid.Nil, apperr.Validation("query parameter %q is missing", param)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("query parameter %q is not a valid id", param)
	}
	return id, nil
}

// idFromBody reads the request body, extracts the target ID and
// restores the body so the handler can decode it again.
func idFromBody(r *http.Request, pick func(targetBody) *uuid.UUID) (uuid.UUID, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return uuid.Nil, apperr.Validation("request body is unreadable")
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var t targetBody
	if err := json.Unmarshal(raw, &t); err != nil {
		return uuid.Nil, apperr.Validation("request body is not valid JSON")
	}

	id := pick(t)
	if id == nil {
		return uuid.Nil, apperr.Validation("target id is missing from the request body")
	}
	return *id, nil
}
