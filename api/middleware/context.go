package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID      uuid.UUID
	Role        enums.UserRole
	AccessToken string
}

type principalKey struct{}

// WithPrincipal stores p on ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller set by Auth, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// UserUUIDFromContext is uuid.Nil for anonymous requests.
func UserUUIDFromContext(ctx context.Context) uuid.UUID {
	p, _ := PrincipalFromContext(ctx)
	return p.UserID
}

func RoleFromContext(ctx context.Context) enums.UserRole {
	p, _ := PrincipalFromContext(ctx)
	return p.Role
}

func AccessTokenFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.AccessToken
}

// WithRole sets only the role, keeping any other principal fields.
func WithRole(ctx context.Context, role enums.UserRole) context.Context {
	p, _ := PrincipalFromContext(ctx)
	p.Role = role
	return WithPrincipal(ctx, p)
}
