package domain

import "time"

// Application statuses. The lattice only moves forward: 100 waits for the
// other side, 102 is mutual, 104 and 105 are terminal.
const (
	StatusPending   = 100
	StatusReserved  = 101
	StatusMatched   = 102
	StatusRejected  = 104
	StatusFulfilled = 105
)

const (
	// InitiationWindow bounds how long a one-sided signal stays actionable.
	InitiationWindow = 5 * 24 * time.Hour
	// MatchWindow bounds how long a mutual match stays actionable.
	MatchWindow = 28 * 24 * time.Hour
)

// Application is the canonical record of one candidate/organization/job
// negotiation. At most one row exists per triple; rejection and expiry are
// status transitions, never deletions.
type Application struct {
	ID             int64  `json:"id" gorm:"primaryKey"`
	CandidateID    int64  `json:"candidate_id" gorm:"not null;uniqueIndex:ux_applications_triple,priority:1"`
	OrganizationID int64  `json:"organization_id" gorm:"not null;uniqueIndex:ux_applications_triple,priority:2"`
	JobID          int64  `json:"job_id" gorm:"not null;uniqueIndex:ux_applications_triple,priority:3"`
	ResumeID       *int64 `json:"resume_id,omitempty"`

	CandidateInterested    bool `json:"candidate_interested" gorm:"not null;default:false"`
	OrganizationInterested bool `json:"organization_interested" gorm:"not null;default:false"`

	Status   int     `json:"status" gorm:"not null"`
	VideoURL *string `json:"video_url,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
	ExpiredAt time.Time `json:"expired_at" gorm:"not null"`
}

func (Application) TableName() string { return "applications" }

// Expired reports lazy staleness. Matched and fulfilled records do not expire
// through this window.
func (a *Application) Expired(now time.Time) bool {
	if a.Status == StatusMatched || a.Status == StatusFulfilled {
		return false
	}
	return a.ExpiredAt.Before(now)
}

// Terminal reports whether further interest signals are ignored.
func (a *Application) Terminal() bool {
	return a.Status == StatusRejected || a.Status == StatusFulfilled
}

// Mutual reports whether both sides have signaled interest.
func (a *Application) Mutual() bool {
	return a.CandidateInterested && a.OrganizationInterested
}
