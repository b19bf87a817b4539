// Package pricing implements the weekly price projection model.
package pricing

import (
	"math"

	"PriceSim/internal/domain/models"
	domsvc "PriceSim/internal/domain/service"
)

// Normalization denominators of the model.
const (
	RequestsScale      = 84.0   // 12 requests/day over a week
	CallTimeScale      = 2520.0 // 6h/day over a week, minutes
	WaitingTimeScale   = 2520.0
	ActiveDaysScale    = 7.0
	PenaltyPointsScale = 5.0
)

// Projector computes price trajectories. The zero value rejects
// out-of-domain signals.
type Projector struct {
	policy DomainPolicy
}

// NewProjector creates a projector with the given domain policy.
func NewProjector(policy DomainPolicy) *Projector {
	if policy == "" {
		policy = PolicyReject
	}
	return &Projector{policy: policy}
}

// Policy returns the configured domain policy.
func (p *Projector) Policy() DomainPolicy {
	if p == nil || p.policy == "" {
		return PolicyReject
	}
	return p.policy
}

// Project validates params according to the policy and runs the model.
func (p *Projector) Project(params models.ProjectionParameters) (models.PriceSeries, error) {
	if err := validate(params); err != nil {
		return nil, err
	}
	switch p.Policy() {
	case PolicyClamp:
		params.Signals = Clamp(params.Signals)
	case PolicyReject:
		if vs := CheckDomain(params.Signals); len(vs) > 0 {
			return nil, &DomainAssumptionViolation{Violations: vs}
		}
	}
	return project(params), nil
}

// Project runs the model with the default (reject) policy.
func Project(params models.ProjectionParameters) (models.PriceSeries, error) {
	return (&Projector{}).Project(params)
}

func validate(p models.ProjectionParameters) error {
	if p.HorizonWeeks < 1 {
		return &InvalidParameterError{Field: "horizon_weeks", Reason: "must be at least 1"}
	}
	if !finite(p.StartingPrice) || p.StartingPrice <= 0 {
		return &InvalidParameterError{Field: "starting_price", Reason: "must be a positive number"}
	}
	if !finite(p.AdjustmentFactor) {
		return &InvalidParameterError{Field: "adjustment_factor", Reason: "must be finite"}
	}
	s, w, t := p.Signals, p.Weights, p.Thresholds
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"signals.requests", s.Requests}, {"signals.call_time", s.CallTime},
		{"signals.waiting_time", s.WaitingTime}, {"signals.active_days", s.ActiveDays},
		{"signals.repeat_rate", s.RepeatRate}, {"signals.approval_rate", s.ApprovalRate},
		{"signals.penalty_points", s.PenaltyPoints},
		{"weights.requests", w.Requests}, {"weights.call_time", w.CallTime},
		{"weights.waiting_time", w.WaitingTime}, {"weights.active_days", w.ActiveDays},
		{"weights.repeat_rate", w.RepeatRate}, {"weights.approval_rate", w.ApprovalRate},
		{"weights.penalty_points", w.PenaltyPoints},
		{"thresholds.waiting_time", t.WaitingTime}, {"thresholds.active_days", t.ActiveDays},
		{"thresholds.approval_rate", t.ApprovalRate}, {"thresholds.call_time", t.CallTime},
		{"thresholds.penalty_points", t.PenaltyPoints},
	} {
		if !finite(f.v) {
			return &InvalidParameterError{Field: f.name, Reason: "must be finite"}
		}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func project(p models.ProjectionParameters) models.PriceSeries {
	prices := make(models.PriceSeries, 1, p.HorizonWeeks+1)
	prices[0] = p.StartingPrice

	// Signals are fixed for the whole horizon, so is the weighted part.
	variable := VariableEffect(p.Signals, p.Weights)
	last := p.StartingPrice
	for week := 1; week <= p.HorizonWeeks; week++ {
		decrease := DecreaseEffect(p.Signals, p.Thresholds, week, p.HorizonWeeks)
		growth := (variable + decrease) * p.AdjustmentFactor
		last = last * (1 + growth)
		prices = append(prices, last)
	}
	return prices
}

// VariableEffect is the dot product of normalized signals and weights.
func VariableEffect(s models.SignalSet, w models.WeightSet) float64 {
	return s.Requests/RequestsScale*w.Requests +
		s.CallTime/CallTimeScale*w.CallTime +
		s.WaitingTime/WaitingTimeScale*w.WaitingTime +
		s.ActiveDays/ActiveDaysScale*w.ActiveDays +
		s.RepeatRate*w.RepeatRate +
		s.PenaltyPoints/PenaltyPointsScale*w.PenaltyPoints +
		s.ApprovalRate*w.ApprovalRate
}

// DecreaseEffect is the (non-positive) penalty for one step: exp(week/horizon)
// per triggered threshold. The call time threshold is never evaluated.
func DecreaseEffect(s models.SignalSet, t models.DecreaseThresholds, week, horizon int) float64 {
	penalty := math.Exp(float64(week) / float64(horizon))
	effect := 0.0
	if s.WaitingTime <= t.WaitingTime {
		effect -= penalty
	}
	if s.ActiveDays <= t.ActiveDays {
		effect -= penalty
	}
	if s.PenaltyPoints >= t.PenaltyPoints {
		effect -= penalty
	}
	if s.ApprovalRate <= t.ApprovalRate {
		effect -= penalty
	}
	return effect
}

var _ domsvc.Projector = (*Projector)(nil)
