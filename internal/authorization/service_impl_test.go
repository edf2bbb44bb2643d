package authorization

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/principal"
)

func newAuthzService(t *testing.T) Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAuthorize_RoleGrants(t *testing.T) {
	svc := newAuthzService(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		role    principal.Role
		object  string
		action  string
		allowed bool
	}{
		{"candidate_authorizes_entitlements", principal.RoleCandidate, ObjectEntitlement, ActionAuthorize, true},
		{"candidate_signals_matches", principal.RoleCandidate, ObjectMatch, ActionSignal, true},
		{"candidate_cannot_create_plans", principal.RoleCandidate, ObjectPlan, ActionCreate, false},
		{"candidate_cannot_subscribe_others", principal.RoleCandidate, ObjectSubscription, ActionCreate, false},
		{"organization_subscribes", principal.RoleOrganization, ObjectSubscription, ActionCreate, true},
		{"organization_views_plans", principal.RoleOrganization, ObjectPlan, ActionView, true},
		{"organization_cannot_update_plans", principal.RoleOrganization, ObjectPlan, ActionUpdate, false},
		{"admin_wildcard_on_plans", principal.RoleAdmin, ObjectPlan, ActionUpdate, true},
		{"admin_wildcard_on_matches", principal.RoleAdmin, ObjectMatch, ActionFulfill, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Authorize(ctx, tc.role, tc.object, tc.action)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestAuthorize_UnknownRole(t *testing.T) {
	svc := newAuthzService(t)

	err := svc.Authorize(context.Background(), principal.Role("superuser"), ObjectPlan, ActionView)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuthorize_BlankObjectOrAction(t *testing.T) {
	svc := newAuthzService(t)

	err := svc.Authorize(context.Background(), principal.RoleAdmin, "  ", ActionView)
	assert.ErrorIs(t, err, ErrForbidden)
}
