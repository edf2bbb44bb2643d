package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/catalog"
	"github.com/hireloop/hireloop/internal/clock"
	"github.com/hireloop/hireloop/internal/config"
	"github.com/hireloop/hireloop/internal/entitlement/domain"
	obsmetrics "github.com/hireloop/hireloop/internal/observability/metrics"
	plandomain "github.com/hireloop/hireloop/internal/plan/domain"
	subdomain "github.com/hireloop/hireloop/internal/subscription/domain"
)

// videoRequestWindow is how long a granted video request stays redeemable.
const videoRequestWindow = 7 * 24 * time.Hour

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Catalog *catalog.Cache
	SubRepo subdomain.Repository
	Holder  *config.GuardConfigHolder
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Guard struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	catalog *catalog.Cache
	subRepo subdomain.Repository
	holder  *config.GuardConfigHolder
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Guard {
	return &Guard{
		db:      p.DB,
		log:     p.Log.Named("entitlement.guard"),
		clock:   p.Clock,
		catalog: p.Catalog,
		subRepo: p.SubRepo,
		holder:  p.Holder,
		metrics: p.Metrics,
	}
}

// Authorize decides whether userID may perform action, resetting and
// incrementing the usage ledger as a side effect of a grant. Version
// conflicts from concurrent requests are retried a bounded number of times.
func (g *Guard) Authorize(ctx context.Context, userID int64, action domain.Action) (domain.Decision, error) {
	retries := g.holder.Current().ConflictRetries

	var decision domain.Decision
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		decision, err = g.attempt(ctx, userID, action)
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			break
		}
		if g.metrics != nil {
			g.metrics.RecordCounterConflict(ctx, string(action))
		}
		g.log.Debug("ledger version conflict, retrying",
			zap.Int64("user_id", userID),
			zap.String("action", string(action)),
			zap.Int("attempt", attempt+1),
		)
	}

	g.record(ctx, action, decision, err)
	return decision, err
}

// attempt runs one full pass of the authorization sequence. Each step is a
// hard precondition for the next.
func (g *Guard) attempt(ctx context.Context, userID int64, action domain.Action) (domain.Decision, error) {
	now := g.clock.Now()

	sub, err := g.subRepo.FindByUser(ctx, g.db, userID)
	if err != nil {
		return domain.Decision{}, err
	}
	if sub == nil {
		return domain.Denied(action, domain.ReasonNoActiveSubscription), nil
	}

	if sub.Expired(now) {
		return domain.Denied(action, domain.ReasonSubscriptionExpired), nil
	}

	// The period reset is persisted before any limit check so this same
	// request observes the freshly zeroed counters.
	if sub.ResetDue(now) {
		ok, err := g.subRepo.ResetCounters(ctx, g.db, sub, subdomain.NextMonthStart(now), now)
		if err != nil {
			return domain.Decision{}, err
		}
		if !ok {
			return domain.Decision{}, domain.ErrConflict
		}
		if g.metrics != nil {
			g.metrics.RecordLedgerReset(ctx, "lazy")
		}
	}

	ent, found, err := g.catalog.Resolve(ctx, sub.PlanID)
	if err != nil {
		return domain.Decision{}, err
	}
	if !found {
		return domain.Decision{}, domain.ErrPlanNotFound
	}

	enabled, limit, usage := project(action, ent, sub)

	if action == domain.ActionProfileVideoRequest &&
		sub.VideoRequestExpiresAt != nil && sub.VideoRequestExpiresAt.Before(now) {
		return domain.Denied(action, domain.ReasonVideoRequestWindowExpired), nil
	}

	if !enabled {
		return domain.Denied(action, domain.ReasonFeatureDisabled), nil
	}

	if limit != nil && usage >= *limit {
		return domain.Denied(action, domain.ReasonLimitReached), nil
	}

	counter, ok := counterFor(action.Dimension())
	if !ok {
		// Boolean-only feature, nothing to meter.
		return domain.Granted(action, ent), nil
	}

	var videoExpiry *time.Time
	if action == domain.ActionProfileVideoRequest {
		expiry := now.Add(videoRequestWindow)
		videoExpiry = &expiry
	}

	applied, err := g.subRepo.Increment(ctx, g.db, sub, counter, videoExpiry, now)
	if err != nil {
		return domain.Decision{}, err
	}
	if !applied {
		return domain.Decision{}, domain.ErrConflict
	}

	return domain.Granted(action, ent), nil
}

// project maps an action to its feature flag, cap, and current usage.
func project(action domain.Action, ent plandomain.Entitlement, sub *subdomain.Subscription) (enabled bool, limit *int64, usage int64) {
	switch action.Dimension() {
	case domain.DimensionResume:
		return ent.ResumeAccess, ent.ResumeLimit, sub.ResumeCount
	case domain.DimensionVideo:
		return ent.ProfileVideoRequest, ent.ProfileVideoLimit, sub.VideoRequestCount
	case domain.DimensionJobPost:
		return ent.JobPosting, ent.JobPostLimit, sub.JobPostCount
	default:
		switch action {
		case domain.ActionSkillLocationFilters:
			return ent.SkillLocationFilters, nil, 0
		case domain.ActionMatchCandidatesEmailing:
			return ent.MatchCandidatesEmailing, nil, 0
		}
		return false, nil, 0
	}
}

func counterFor(dim domain.Dimension) (subdomain.Counter, bool) {
	switch dim {
	case domain.DimensionResume:
		return subdomain.CounterResume, true
	case domain.DimensionVideo:
		return subdomain.CounterVideoRequest, true
	case domain.DimensionJobPost:
		return subdomain.CounterJobPost, true
	default:
		return "", false
	}
}

func (g *Guard) record(ctx context.Context, action domain.Action, decision domain.Decision, err error) {
	if g.metrics == nil {
		return
	}
	switch {
	case err != nil:
		g.metrics.RecordDecision(ctx, string(action), "error", "")
	case decision.Granted:
		g.metrics.RecordDecision(ctx, string(action), "granted", "")
	default:
		g.metrics.RecordDecision(ctx, string(action), "denied", string(decision.Reason))
	}
}
