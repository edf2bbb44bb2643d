package domain

import (
	"context"
	"errors"

	plandomain "github.com/hireloop/hireloop/internal/plan/domain"
)

// Reason is the machine-readable cause of a denial.
type Reason string

const (
	ReasonNoActiveSubscription      Reason = "no_active_subscription"
	ReasonSubscriptionExpired       Reason = "subscription_expired"
	ReasonFeatureDisabled           Reason = "feature_disabled"
	ReasonLimitReached              Reason = "limit_reached"
	ReasonVideoRequestWindowExpired Reason = "video_request_window_expired"
)

// Decision is the guard's verdict. A denial is an expected outcome carried
// in the decision itself, never an error.
type Decision struct {
	Granted     bool                    `json:"granted"`
	Reason      Reason                  `json:"reason,omitempty"`
	Action      Action                  `json:"action"`
	Entitlement *plandomain.Entitlement `json:"entitlement,omitempty"`
}

func Granted(action Action, ent plandomain.Entitlement) Decision {
	return Decision{Granted: true, Action: action, Entitlement: &ent}
}

func Denied(action Action, reason Reason) Decision {
	return Decision{Granted: false, Action: action, Reason: reason}
}

// Guard is the request-time entitlement gate.
type Guard interface {
	Authorize(ctx context.Context, userID int64, action Action) (Decision, error)
}

var (
	// ErrConflict is a concurrent-update precondition failure on the ledger.
	// The guard retries a bounded number of times before surfacing it.
	ErrConflict = errors.New("ledger_conflict")

	// ErrPlanNotFound means the ledger points at a plan the store no longer has.
	ErrPlanNotFound = errors.New("entitlement_plan_not_found")
)
