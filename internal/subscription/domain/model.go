package domain

import "time"

// Subscription is the per-user usage ledger. One live row per user.
// Counter writes go through conditional updates guarded by Version;
// a stale Version means a concurrent writer won and the caller retries.
type Subscription struct {
	ID     int64 `json:"id" gorm:"primaryKey"`
	UserID int64 `json:"user_id" gorm:"not null;uniqueIndex:ux_subscriptions_user"`
	PlanID int64 `json:"plan_id" gorm:"not null"`

	StartedAt time.Time  `json:"started_at" gorm:"not null"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	ResumeCount       int64 `json:"resume_count" gorm:"not null;default:0"`
	VideoRequestCount int64 `json:"video_request_count" gorm:"not null;default:0"`
	JobPostCount      int64 `json:"job_post_count" gorm:"not null;default:0"`

	ResetAt               time.Time  `json:"reset_at" gorm:"not null"`
	VideoRequestExpiresAt *time.Time `json:"video_request_expires_at,omitempty"`

	Version   int64     `json:"-" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Subscription) TableName() string { return "subscriptions" }

// Expired reports whether the subscription itself has lapsed.
func (s *Subscription) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// ResetDue reports whether the billing period boundary has passed.
func (s *Subscription) ResetDue(now time.Time) bool {
	return !s.ResetAt.After(now)
}

// NextMonthStart returns the first instant of the calendar month after t, UTC.
func NextMonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
