package models

// Requests for pricing HTTP endpoints. Pointer fields let an explicit zero
// survive default filling; defaults match the simulation form.

type SignalsRequest struct {
	Requests      *float64 `json:"requests" default:"20" validate:"required,gte=0"`
	CallTime      *float64 `json:"call_time" default:"500" validate:"required,gte=0"`
	WaitingTime   *float64 `json:"waiting_time" default:"1500" validate:"required,gte=0"`
	ActiveDays    *float64 `json:"active_days" default:"4" validate:"required,gte=0,lte=7"`
	RepeatRate    *float64 `json:"repeat_rate" default:"0.5" validate:"required,gte=0,lte=1"`
	ApprovalRate  *float64 `json:"approval_rate" default:"0.85" validate:"required,gte=0,lte=1"`
	PenaltyPoints *float64 `json:"penalty_points" default:"0" validate:"required,gte=0"`
}

type WeightsRequest struct {
	Requests      *float64 `json:"requests" default:"0.5" validate:"required,gte=0,lte=1"`
	CallTime      *float64 `json:"call_time" default:"0.5" validate:"required,gte=0,lte=1"`
	WaitingTime   *float64 `json:"waiting_time" default:"0.6" validate:"required,gte=0,lte=1"`
	ActiveDays    *float64 `json:"active_days" default:"0.6" validate:"required,gte=0,lte=1"`
	RepeatRate    *float64 `json:"repeat_rate" default:"0.7" validate:"required,gte=-1,lte=1"`
	ApprovalRate  *float64 `json:"approval_rate" default:"-0.8" validate:"required,gte=-1,lte=1"`
	PenaltyPoints *float64 `json:"penalty_points" default:"-0.5" validate:"required,gte=-1,lte=0.8"`
}

type ThresholdsRequest struct {
	WaitingTime   *float64 `json:"waiting_time" default:"180" validate:"required,gte=0"`
	ActiveDays    *float64 `json:"active_days" default:"2" validate:"required,gte=0"`
	ApprovalRate  *float64 `json:"approval_rate" default:"0.8" validate:"required,gte=0,lte=1"`
	CallTime      *float64 `json:"call_time" default:"1500" validate:"required,gte=0"`
	PenaltyPoints *float64 `json:"penalty_points" default:"1" validate:"required,gte=0"`
}

type TemplateRequest struct {
	AdjustmentFactor *float64          `json:"adjustment_factor" default:"0.15" validate:"required,gte=0,lte=1"`
	Weights          WeightsRequest    `json:"weights"`
	Thresholds       ThresholdsRequest `json:"thresholds"`
}

type SimulateRequest struct {
	SessionID    string          `json:"session_id" validate:"omitempty,uuid"`
	CurrentPrice *float64        `json:"current_price" default:"1000" validate:"required,gt=0"`
	Signals      SignalsRequest  `json:"signals"`
	Template     TemplateRequest `json:"template"`
}

type ProjectRequest struct {
	StartingPrice *float64        `json:"starting_price" default:"1000" validate:"required,gt=0"`
	HorizonWeeks  *int            `json:"horizon_weeks" default:"12" validate:"required,gte=1,lte=520"`
	Signals       SignalsRequest  `json:"signals"`
	Template      TemplateRequest `json:"template"`
}

type RecomputeRequest struct {
	Template TemplateRequest `json:"template"`
	Rows     []BatchRow      `json:"rows" validate:"required,min=1"`
}

type SessionRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Model converts the request into a SignalSet.
func (r SignalsRequest) Model() SignalSet {
	return SignalSet{
		Requests:      deref(r.Requests),
		CallTime:      deref(r.CallTime),
		WaitingTime:   deref(r.WaitingTime),
		ActiveDays:    deref(r.ActiveDays),
		RepeatRate:    deref(r.RepeatRate),
		ApprovalRate:  deref(r.ApprovalRate),
		PenaltyPoints: deref(r.PenaltyPoints),
	}
}

func (r WeightsRequest) Model() WeightSet {
	return WeightSet{
		Requests:      deref(r.Requests),
		CallTime:      deref(r.CallTime),
		WaitingTime:   deref(r.WaitingTime),
		ActiveDays:    deref(r.ActiveDays),
		RepeatRate:    deref(r.RepeatRate),
		ApprovalRate:  deref(r.ApprovalRate),
		PenaltyPoints: deref(r.PenaltyPoints),
	}
}

func (r ThresholdsRequest) Model() DecreaseThresholds {
	return DecreaseThresholds{
		WaitingTime:   deref(r.WaitingTime),
		ActiveDays:    deref(r.ActiveDays),
		ApprovalRate:  deref(r.ApprovalRate),
		CallTime:      deref(r.CallTime),
		PenaltyPoints: deref(r.PenaltyPoints),
	}
}

func (r TemplateRequest) Model() Template {
	return Template{
		AdjustmentFactor: deref(r.AdjustmentFactor),
		Weights:          r.Weights.Model(),
		Thresholds:       r.Thresholds.Model(),
	}
}
