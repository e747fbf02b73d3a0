package auth

import (
	"context"
	"slices"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   string
	Username string
	Roles    []string
}

// HasAnyRole reports whether the identity holds one of roles. No roles means
// any identity will do.
func (i *Identity) HasAnyRole(roles ...string) bool {
	if i == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}

	for _, r := range roles {
		if slices.Contains(i.Roles, r) {
			return true
		}
	}

	return false
}

type contextKey int

const (
	identityKey contextKey = iota
	sessionKey
)

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity of the request, or nil for anonymous
// requests.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// Require returns the caller's identity if it holds one of roles.
func Require(ctx context.Context, roles ...string) (*Identity, error) {
	id := FromContext(ctx)
	if id == nil {
		return nil, ErrUnauthorized
	}
	if !id.HasAnyRole(roles...) {
		return nil, ErrForbidden
	}

	return id, nil
}

// WithSession stores the key login attempts of the request are counted
// under.
func WithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

func SessionFromContext(ctx context.Context) string {
	s, _ := ctx.Value(sessionKey).(string)
	return s
}
