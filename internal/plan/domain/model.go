package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Plan is the administrative entitlement descriptor for one subscription tier.
// Nil caps mean unlimited.
type Plan struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Code string `json:"code" gorm:"type:text;not null;uniqueIndex:ux_plans_code"`
	Name string `json:"name" gorm:"type:text;not null"`

	ResumeAccess            bool `json:"resume_access" gorm:"not null;default:false"`
	ProfileVideoRequest     bool `json:"profile_video_request" gorm:"not null;default:false"`
	JobPosting              bool `json:"job_posting" gorm:"not null;default:false"`
	SkillLocationFilters    bool `json:"skill_location_filters" gorm:"not null;default:false"`
	MatchCandidatesEmailing bool `json:"match_candidates_emailing" gorm:"not null;default:false"`

	ResumeLimit       *int64 `json:"resume_limit,omitempty"`
	ProfileVideoLimit *int64 `json:"profile_video_limit,omitempty"`
	JobPostLimit      *int64 `json:"job_post_limit,omitempty"`

	DurationValue int    `json:"duration_value" gorm:"not null;default:1"`
	DurationUnit  string `json:"duration_unit" gorm:"type:text;not null;default:month"`

	Active    bool              `json:"active" gorm:"not null;default:true"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Plan) TableName() string { return "plans" }

// Entitlement is the immutable snapshot of a plan consumed by the guard.
type Entitlement struct {
	PlanID int64 `json:"plan_id"`

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
}

// Entitlement copies the plan's guard-facing fields into a snapshot.
func (p *Plan) Entitlement() Entitlement {
	return Entitlement{
		PlanID:                  p.ID,
		ResumeAccess:            p.ResumeAccess,
		ProfileVideoRequest:     p.ProfileVideoRequest,
		JobPosting:              p.JobPosting,
		SkillLocationFilters:    p.SkillLocationFilters,
		MatchCandidatesEmailing: p.MatchCandidatesEmailing,
		ResumeLimit:             copyLimit(p.ResumeLimit),
		ProfileVideoLimit:       copyLimit(p.ProfileVideoLimit),
		JobPostLimit:            copyLimit(p.JobPostLimit),
		DurationValue:           p.DurationValue,
		DurationUnit:            p.DurationUnit,
	}
}

// Expiry returns the subscription end computed from the plan duration.
func (p *Plan) Expiry(from time.Time) time.Time {
	value := p.DurationValue
	if value <= 0 {
		value = 1
	}
	switch p.DurationUnit {
	case "day":
		return from.AddDate(0, 0, value)
	case "year":
		return from.AddDate(value, 0, 0)
	default:
		return from.AddDate(0, value, 0)
	}
}

func copyLimit(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
