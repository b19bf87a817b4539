package pricing

import (
	"fmt"
	"strings"

	"PriceSim/internal/domain/models"
)

// DomainPolicy decides what happens to signals outside their documented domain.
type DomainPolicy string

const (
	// PolicyReject fails the projection with a DomainAssumptionViolation.
	PolicyReject DomainPolicy = "reject"
	// PolicyClamp clamps offending signals into range and projects.
	PolicyClamp DomainPolicy = "clamp"
	// PolicyAllow projects unguarded values as-is.
	PolicyAllow DomainPolicy = "allow"
)

// ParseDomainPolicy maps a config string to a policy; empty means reject.
func ParseDomainPolicy(s string) (DomainPolicy, error) {
	switch DomainPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyReject:
		return PolicyReject, nil
	case PolicyClamp:
		return PolicyClamp, nil
	case PolicyAllow:
		return PolicyAllow, nil
	default:
		return "", fmt.Errorf("unknown domain policy %q", s)
	}
}

type bound struct {
	name     string
	get      func(*models.SignalSet) *float64
	min, max float64 // max == 0 means unbounded
}

var signalBounds = []bound{
	{"requests", func(s *models.SignalSet) *float64 { return &s.Requests }, 0, 0},
	{"call_time", func(s *models.SignalSet) *float64 { return &s.CallTime }, 0, 0},
	{"waiting_time", func(s *models.SignalSet) *float64 { return &s.WaitingTime }, 0, 0},
	{"active_days", func(s *models.SignalSet) *float64 { return &s.ActiveDays }, 0, 7},
	{"repeat_rate", func(s *models.SignalSet) *float64 { return &s.RepeatRate }, 0, 1},
	{"approval_rate", func(s *models.SignalSet) *float64 { return &s.ApprovalRate }, 0, 1},
	{"penalty_points", func(s *models.SignalSet) *float64 { return &s.PenaltyPoints }, 0, 0},
}

// CheckDomain returns the signals outside their documented domain. It is
// advisory; callers decide whether a violation is fatal.
func CheckDomain(s models.SignalSet) []Violation {
	var out []Violation
	for _, b := range signalBounds {
		v := *b.get(&s)
		if v < b.min || (b.max != 0 && v > b.max) {
			out = append(out, Violation{Signal: b.name, Value: v, Min: b.min, Max: b.max})
		}
	}
	return out
}

// Clamp returns s with every signal forced into its documented domain.
func Clamp(s models.SignalSet) models.SignalSet {
	for _, b := range signalBounds {
		p := b.get(&s)
		if *p < b.min {
			*p = b.min
		}
		if b.max != 0 && *p > b.max {
			*p = b.max
		}
	}
	return s
}
