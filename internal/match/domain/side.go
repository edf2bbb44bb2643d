package domain

import (
	"errors"
	"strings"
)

// Side identifies which party a signal comes from.
type Side string

const (
	SideCandidate    Side = "candidate"
	SideOrganization Side = "organization"
)

var ErrInvalidSide = errors.New("invalid_side")

func ParseSide(raw string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(raw))) {
	case SideCandidate:
		return SideCandidate, nil
	case SideOrganization:
		return SideOrganization, nil
	default:
		return "", ErrInvalidSide
	}
}
