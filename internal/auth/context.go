package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/burgasvv/parking-service/internal/model"
)

// Caller is the authenticated identity attached to a request.
type Caller struct {
	IdentityID uuid.UUID
	Email      string
	Authority  model.Authority
}

// IsAdmin reports whether the caller holds the admin role.
func (c *Caller) IsAdmin() bool {
	return c.Authority == model.AuthorityAdmin
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const callerContextKey contextKey = "caller"

// ContextWithCaller adds the caller to the context.
func ContextWithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// CallerFromContext retrieves the caller from the context.
// Returns nil if the request was not authenticated.
func CallerFromContext(ctx context.Context) *Caller {
	caller, ok := ctx.Value(callerContextKey).(*Caller)
	if !ok {
		return nil
	}
	return caller
}
