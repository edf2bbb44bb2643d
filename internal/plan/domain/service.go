package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
}

// CatalogRefresher republishes the in-memory catalog after plan mutations.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

type ListRequest struct {
	Active  *bool
	SortBy  string
	OrderBy string
}

type CreateRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`

	ResumeAccess            bool `json:"resume_access"`
	ProfileVideoRequest     bool `json:"profile_video_request"`
	JobPosting              bool `json:"job_posting"`
	SkillLocationFilters    bool `json:"skill_location_filters"`
	MatchCandidatesEmailing bool `json:"match_candidates_emailing"`

	ResumeLimit       *int64 `json:"resume_limit"`
	ProfileVideoLimit *int64 `json:"profile_video_limit"`
	JobPostLimit      *int64 `json:"job_post_limit"`

	DurationValue int    `json:"duration_value"`
	DurationUnit  string `json:"duration_unit"`

	Active   *bool          `json:"active"`
	Metadata map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID string `json:"-"`

	Name *string `json:"name"`

	ResumeAccess            *bool `json:"resume_access"`
	ProfileVideoRequest     *bool `json:"profile_video_request"`
	JobPosting              *bool `json:"job_posting"`
	SkillLocationFilters    *bool `json:"skill_location_filters"`
	MatchCandidatesEmailing *bool `json:"match_candidates_emailing"`

	ResumeLimit       *int64 `json:"resume_limit"`
	ProfileVideoLimit *int64 `json:"profile_video_limit"`
	JobPostLimit      *int64 `json:"job_post_limit"`

	ClearResumeLimit       bool `json:"clear_resume_limit"`
	ClearProfileVideoLimit bool `json:"clear_profile_video_limit"`
	ClearJobPostLimit      bool `json:"clear_job_post_limit"`

	DurationValue *int    `json:"duration_value"`
	DurationUnit  *string `json:"duration_unit"`

	Active   *bool          `json:"active"`
	Metadata map[string]any `json:"metadata"`
}

type Response struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`

	ResumeAccess            bool `json:"resume_access"`
	ProfileVideoRequest     bool `json:"profile_video_request"`
	JobPosting              bool `json:"job_posting"`
	SkillLocationFilters    bool `json:"skill_location_filters"`
	MatchCandidatesEmailing bool `json:"match_candidates_emailing"`

	ResumeLimit       *int64 `json:"resume_limit,omitempty"`
	ProfileVideoLimit *int64 `json:"profile_video_limit,omitempty"`
	JobPostLimit      *int64 `json:"job_post_limit,omitempty"`

	DurationValue int    `json:"duration_value"`
	DurationUnit  string `json:"duration_unit"`

	Active    bool           `json:"active"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidDuration = errors.New("invalid_duration")
	ErrInvalidLimit    = errors.New("invalid_limit")
	ErrDuplicateCode   = errors.New("duplicate_code")
	ErrNotFound        = errors.New("plan_not_found")
)
