package authorization

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/principal"
)

//go:embed model.conf
var modelText string

const (
	ObjectPlan         = "plan"
	ObjectSubscription = "subscription"
	ObjectEntitlement  = "entitlement"
	ObjectMatch        = "match"
)

const (
	ActionView      = "view"
	ActionList      = "list"
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionCancel    = "cancel"
	ActionRefresh   = "refresh"
	ActionAuthorize = "authorize"
	ActionSignal    = "signal"
	ActionReject    = "reject"
	ActionFulfill   = "fulfill"
)

var (
	ErrInvalidRole = errors.New("invalid_role")
	ErrForbidden   = errors.New("forbidden")
)

type Service interface {
	Authorize(ctx context.Context, role principal.Role, object, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(_ context.Context, role principal.Role, object, action string) error {
	subject := subjectFor(role)
	if subject == "" {
		return ErrInvalidRole
	}
	object = strings.TrimSpace(object)
	action = strings.TrimSpace(action)
	if object == "" || action == "" {
		return ErrForbidden
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("role", string(role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func subjectFor(role principal.Role) string {
	switch role {
	case principal.RoleCandidate, principal.RoleOrganization, principal.RoleAdmin:
		return "role:" + string(role)
	default:
		return ""
	}
}

// seedPolicies installs the default role grants when the policy store is
// empty or missing entries. Operators can extend policies through the store.
func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:admin", ObjectPlan, "*"},
		{"role:admin", ObjectSubscription, "*"},
		{"role:admin", ObjectEntitlement, "*"},
		{"role:admin", ObjectMatch, "*"},

		{"role:organization", ObjectPlan, ActionView},
		{"role:organization", ObjectSubscription, ActionView},
		{"role:organization", ObjectSubscription, ActionCreate},
		{"role:organization", ObjectSubscription, ActionCancel},
		{"role:organization", ObjectEntitlement, ActionAuthorize},
		{"role:organization", ObjectMatch, ActionSignal},
		{"role:organization", ObjectMatch, ActionView},
		{"role:organization", ObjectMatch, ActionReject},
		{"role:organization", ObjectMatch, ActionFulfill},

		{"role:candidate", ObjectPlan, ActionView},
		{"role:candidate", ObjectEntitlement, ActionAuthorize},
		{"role:candidate", ObjectMatch, ActionSignal},
		{"role:candidate", ObjectMatch, ActionView},
		{"role:candidate", ObjectMatch, ActionReject},
		{"role:candidate", ObjectMatch, ActionFulfill},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
