package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/match/domain"
)

// referenceChecker runs existence probes against the platform-owned entity
// tables. Those tables are populated by the CRUD surface, not by this service.
type referenceChecker struct {
	db  *gorm.DB
	log *zap.Logger
}

func ProvideReferenceChecker(db *gorm.DB, log *zap.Logger) domain.ReferenceChecker {
	return &referenceChecker{db: db, log: log.Named("match.reference")}
}

func (c *referenceChecker) CandidateExists(ctx context.Context, id int64) (bool, error) {
	return c.exists(ctx, "candidates", id)
}

func (c *referenceChecker) OrganizationExists(ctx context.Context, id int64) (bool, error) {
	return c.exists(ctx, "organizations", id)
}

func (c *referenceChecker) JobExists(ctx context.Context, id int64) (bool, error) {
	return c.exists(ctx, "jobs", id)
}

func (c *referenceChecker) ResumeExists(ctx context.Context, id int64) (bool, error) {
	return c.exists(ctx, "resumes", id)
}

func (c *referenceChecker) exists(ctx context.Context, table string, id int64) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).Raw(
		"SELECT COUNT(1) FROM "+table+" WHERE id = ?", id,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
