package principal

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Role is the platform role carried by an authenticated principal.
type Role string

const (
	RoleCandidate    Role = "candidate"
	RoleOrganization Role = "organization"
	RoleAdmin        Role = "admin"
)

// Principal is the identity the upstream gateway attaches to a request.
// Verification itself happens outside this service.
type Principal struct {
	UserID snowflake.ID
	Role   Role
	PlanID snowflake.ID
}

type principalKey struct{}

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal from context, if set.
func FromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// ParseRole normalizes a role header value.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleCandidate:
		return RoleCandidate, true
	case RoleOrganization:
		return RoleOrganization, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}
