package seed

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/clock"
	plandomain "github.com/hireloop/hireloop/internal/plan/domain"
	"github.com/hireloop/hireloop/pkg/repository"
)

func limit(v int64) *int64 { return &v }

// EnsurePlanCatalog installs the default plan tiers when the table is empty.
// Development convenience only; production catalogs come through plan admin.
func EnsurePlanCatalog(ctx context.Context, db *gorm.DB, genID *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
	store := repository.ProvideStore[plandomain.Plan](db)
	count, err := store.Count(ctx, &plandomain.Plan{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := clk.Now()
	plans := []*plandomain.Plan{
		{
			Code:         "starter",
			Name:         "Starter",
			ResumeAccess: true,
			ResumeLimit:  limit(10),
		},
		{
			Code:                 "growth",
			Name:                 "Growth",
			ResumeAccess:         true,
			ProfileVideoRequest:  true,
			JobPosting:           true,
			SkillLocationFilters: true,
			ResumeLimit:          limit(100),
			ProfileVideoLimit:    limit(10),
			JobPostLimit:         limit(5),
		},
		{
			Code:                    "unlimited",
			Name:                    "Unlimited",
			ResumeAccess:            true,
			ProfileVideoRequest:     true,
			JobPosting:              true,
			SkillLocationFilters:    true,
			MatchCandidatesEmailing: true,
		},
	}

	for i := range plans {
		plans[i].ID = genID.Generate().Int64()
		plans[i].DurationValue = 1
		plans[i].DurationUnit = "month"
		plans[i].Active = true
		plans[i].CreatedAt = now
		plans[i].UpdatedAt = now
	}

	if err := store.BatchCreate(ctx, plans); err != nil {
		return err
	}
	log.Info("seeded default plan catalog", zap.Int("plans", len(plans)))
	return nil
}
