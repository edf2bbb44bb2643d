package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Signal(ctx context.Context, req SignalRequest) (*Response, error)
	Reject(ctx context.Context, id string) (*Response, error)
	Fulfill(ctx context.Context, id string, videoURL string) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
}

type SignalRequest struct {
	CandidateID    string `json:"candidate_id"`
	OrganizationID string `json:"organization_id"`
	JobID          string `json:"job_id"`
	Side           string `json:"side"`
	ResumeID       string `json:"resume_id"`
}

type Response struct {
	ID             string `json:"id"`
	CandidateID    string `json:"candidate_id"`
	OrganizationID string `json:"organization_id"`
	JobID          string `json:"job_id"`
	ResumeID       string `json:"resume_id,omitempty"`

	CandidateInterested    bool `json:"candidate_interested"`
	OrganizationInterested bool `json:"organization_interested"`

	Status   int     `json:"status"`
	VideoURL *string `json:"video_url,omitempty"`
	Expired  bool    `json:"expired"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiredAt time.Time `json:"expired_at"`
}

var (
	ErrInvalidRequest       = errors.New("invalid_request")
	ErrInvalidID            = errors.New("invalid_id")
	ErrNotFound             = errors.New("application_not_found")
	ErrCandidateNotFound    = errors.New("candidate_not_found")
	ErrOrganizationNotFound = errors.New("organization_not_found")
	ErrJobNotFound          = errors.New("job_not_found")
	ErrResumeNotFound       = errors.New("resume_not_found")
	ErrNotMatched           = errors.New("application_not_matched")
)
