package domain

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hireloop/hireloop/pkg/db/pagination"
)

// Counter names a metered usage column.
type Counter string

const (
	CounterResume       Counter = "resume_count"
	CounterVideoRequest Counter = "video_request_count"
	CounterJobPost      Counter = "job_post_count"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, sub *Subscription) error
	FindByUser(ctx context.Context, db *gorm.DB, userID int64) (*Subscription, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Subscription, error)
	DeleteByUser(ctx context.Context, db *gorm.DB, userID int64) (bool, error)

	// ResetCounters zeroes the three counters and advances reset_at, guarded
	// by sub.Version. Returns false when a concurrent writer got there first.
	// On success sub is updated in place.
	ResetCounters(ctx context.Context, db *gorm.DB, sub *Subscription, resetAt, now time.Time) (bool, error)

	// Increment bumps one counter by one under the same version guard,
	// optionally stamping video_request_expires_at in the same statement.
	Increment(ctx context.Context, db *gorm.DB, sub *Subscription, counter Counter, videoExpiry *time.Time, now time.Time) (bool, error)

	// ListDueForReset returns ledgers whose reset_at has passed, for the sweep.
	ListDueForReset(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]Subscription, error)
}
