package domain

import (
	"context"
	"errors"
	"time"

	"github.com/hireloop/hireloop/pkg/db/pagination"
)

type Service interface {
	Subscribe(ctx context.Context, req SubscribeRequest) (*Response, error)
	GetByUser(ctx context.Context, userID string) (*Response, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Cancel(ctx context.Context, userID string) error
}

type SubscribeRequest struct {
	UserID string `json:"user_id"`
	PlanID string `json:"plan_id"`
}

type ListRequest struct {
	PageToken string
	PageSize  int
	PlanID    string
}

type ListFilter struct {
	PlanID int64
}

type ListResponse struct {
	pagination.PageInfo
	Subscriptions []Response `json:"subscriptions"`
}

type Response struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	PlanID string `json:"plan_id"`

	StartedAt time.Time  `json:"started_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	ResumeCount       int64 `json:"resume_count"`
	VideoRequestCount int64 `json:"video_request_count"`
	JobPostCount      int64 `json:"job_post_count"`

	ResetAt               time.Time  `json:"reset_at"`
	VideoRequestExpiresAt *time.Time `json:"video_request_expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("subscription_not_found")
	ErrPlanNotFound      = errors.New("subscription_plan_not_found")
	ErrAlreadySubscribed = errors.New("already_subscribed")
)
