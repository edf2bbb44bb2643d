package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/subscription/domain"
	"github.com/hireloop/hireloop/pkg/db/option"
	"github.com/hireloop/hireloop/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO subscriptions
		   (id, user_id, plan_id, started_at, expires_at,
		    resume_count, video_request_count, job_post_count,
		    reset_at, video_request_expires_at, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID,
		sub.UserID,
		sub.PlanID,
		sub.StartedAt,
		sub.ExpiresAt,
		sub.ResumeCount,
		sub.VideoRequestCount,
		sub.JobPostCount,
		sub.ResetAt,
		sub.VideoRequestExpiresAt,
		sub.Version,
		sub.CreatedAt,
		sub.UpdatedAt,
	).Error
}

func (r *repo) FindByUser(ctx context.Context, db *gorm.DB, userID int64) (*domain.Subscription, error) {
	var s domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM subscriptions WHERE user_id = ?`, userID,
	).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}

// List pages through ledgers newest first, bounded by the cursor token.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Subscription, error) {
	var items []*domain.Subscription
	stmt := db.WithContext(ctx).Model(&domain.Subscription{})
	if filter.PlanID != 0 {
		stmt = stmt.Where("plan_id = ?", filter.PlanID)
	}
	stmt = option.WithPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeleteByUser(ctx context.Context, db *gorm.DB, userID int64) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM subscriptions WHERE user_id = ?`, userID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) ResetCounters(ctx context.Context, db *gorm.DB, sub *domain.Subscription, resetAt, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE subscriptions
		 SET resume_count = 0, video_request_count = 0, job_post_count = 0,
		     reset_at = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		resetAt,
		now,
		sub.ID,
		sub.Version,
	)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	sub.ResumeCount = 0
	sub.VideoRequestCount = 0
	sub.JobPostCount = 0
	sub.ResetAt = resetAt
	sub.Version++
	sub.UpdatedAt = now
	return true, nil
}

func (r *repo) Increment(ctx context.Context, db *gorm.DB, sub *domain.Subscription, counter domain.Counter, videoExpiry *time.Time, now time.Time) (bool, error) {
	column, err := counterColumn(counter)
	if err != nil {
		return false, err
	}

	var res *gorm.DB
	if videoExpiry != nil {
		res = db.WithContext(ctx).Exec(
			fmt.Sprintf(
				`UPDATE subscriptions
				 SET %s = %s + 1, video_request_expires_at = ?, version = version + 1, updated_at = ?
				 WHERE id = ? AND version = ?`, column, column),
			videoExpiry,
			now,
			sub.ID,
			sub.Version,
		)
	} else {
		res = db.WithContext(ctx).Exec(
			fmt.Sprintf(
				`UPDATE subscriptions
				 SET %s = %s + 1, version = version + 1, updated_at = ?
				 WHERE id = ? AND version = ?`, column, column),
			now,
			sub.ID,
			sub.Version,
		)
	}
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	switch counter {
	case domain.CounterResume:
		sub.ResumeCount++
	case domain.CounterVideoRequest:
		sub.VideoRequestCount++
	case domain.CounterJobPost:
		sub.JobPostCount++
	}
	if videoExpiry != nil {
		sub.VideoRequestExpiresAt = videoExpiry
	}
	sub.Version++
	sub.UpdatedAt = now
	return true, nil
}

func (r *repo) ListDueForReset(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.Subscription, error) {
	if limit <= 0 {
		limit = 100
	}
	var items []domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM subscriptions WHERE reset_at <= ? ORDER BY reset_at ASC LIMIT ?`,
		now,
		limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// counterColumn maps the enum to a column name. The allow list keeps the
// fmt.Sprintf above out of injection territory.
func counterColumn(counter domain.Counter) (string, error) {
	switch counter {
	case domain.CounterResume, domain.CounterVideoRequest, domain.CounterJobPost:
		return string(counter), nil
	default:
		return "", fmt.Errorf("unknown usage counter %q", counter)
	}
}
