package domain

import (
	"errors"
	"strings"
)

// Action is a metered or flag-gated operation a caller asks permission for.
type Action string

const (
	ActionResumeView              Action = "resume_view"
	ActionResumeDownload          Action = "resume_download"
	ActionProfileVideoRequest     Action = "profile_video_request"
	ActionJobPost                 Action = "job_post"
	ActionSkillLocationFilters    Action = "skill_location_filters"
	ActionMatchCandidatesEmailing Action = "match_candidates_emailing"
)

// Dimension is the usage bucket an action draws from. Boolean-only actions
// map to DimensionNone and never touch a counter.
type Dimension string

const (
	DimensionResume  Dimension = "resume"
	DimensionVideo   Dimension = "video"
	DimensionJobPost Dimension = "job_post"
	DimensionNone    Dimension = "none"
)

var ErrUnknownAction = errors.New("unknown_action")

// ParseAction validates a caller-supplied action string. An unrecognized
// value is a caller error, not a business denial.
func ParseAction(raw string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(raw))) {
	case ActionResumeView:
		return ActionResumeView, nil
	case ActionResumeDownload:
		return ActionResumeDownload, nil
	case ActionProfileVideoRequest:
		return ActionProfileVideoRequest, nil
	case ActionJobPost:
		return ActionJobPost, nil
	case ActionSkillLocationFilters:
		return ActionSkillLocationFilters, nil
	case ActionMatchCandidatesEmailing:
		return ActionMatchCandidatesEmailing, nil
	default:
		return "", ErrUnknownAction
	}
}

// Dimension maps an action to its usage bucket. Résumé views and downloads
// share one quota.
func (a Action) Dimension() Dimension {
	switch a {
	case ActionResumeView, ActionResumeDownload:
		return DimensionResume
	case ActionProfileVideoRequest:
		return DimensionVideo
	case ActionJobPost:
		return DimensionJobPost
	default:
		return DimensionNone
	}
}
