package models

// SignalSet holds the raw behavioral measurements for one period.
type SignalSet struct {
	Requests      float64 `json:"requests" yaml:"requests"`
	CallTime      float64 `json:"call_time" yaml:"call_time"`       // minutes
	WaitingTime   float64 `json:"waiting_time" yaml:"waiting_time"` // minutes
	ActiveDays    float64 `json:"active_days" yaml:"active_days"`   // 0..7
	RepeatRate    float64 `json:"repeat_rate" yaml:"repeat_rate"`   // 0..1
	ApprovalRate  float64 `json:"approval_rate" yaml:"approval_rate"`
	PenaltyPoints float64 `json:"penalty_points" yaml:"penalty_points"`
}

// WeightSet holds one coefficient per signal, applied to normalized values.
type WeightSet struct {
	Requests      float64 `json:"requests" yaml:"requests"`
	CallTime      float64 `json:"call_time" yaml:"call_time"`
	WaitingTime   float64 `json:"waiting_time" yaml:"waiting_time"`
	ActiveDays    float64 `json:"active_days" yaml:"active_days"`
	RepeatRate    float64 `json:"repeat_rate" yaml:"repeat_rate"`
	ApprovalRate  float64 `json:"approval_rate" yaml:"approval_rate"`
	PenaltyPoints float64 `json:"penalty_points" yaml:"penalty_points"`
}

// DecreaseThresholds gate the additional decay term.
// CallTime is carried and reported but not evaluated by the projector.
type DecreaseThresholds struct {
	WaitingTime   float64 `json:"waiting_time" yaml:"waiting_time"`
	ActiveDays    float64 `json:"active_days" yaml:"active_days"`
	ApprovalRate  float64 `json:"approval_rate" yaml:"approval_rate"`
	CallTime      float64 `json:"call_time" yaml:"call_time"`
	PenaltyPoints float64 `json:"penalty_points" yaml:"penalty_points"`
}

// ProjectionParameters is the full input of one projection.
type ProjectionParameters struct {
	StartingPrice    float64            `json:"starting_price"`
	AdjustmentFactor float64            `json:"adjustment_factor"`
	HorizonWeeks     int                `json:"horizon_weeks"`
	Signals          SignalSet          `json:"signals"`
	Weights          WeightSet          `json:"weights"`
	Thresholds       DecreaseThresholds `json:"thresholds"`
}

// Template is the configuration carried from the interactive phase into
// batch recomputation: everything except price, signals and horizon.
type Template struct {
	AdjustmentFactor float64            `json:"adjustment_factor" yaml:"adjustment_factor"`
	Weights          WeightSet          `json:"weights" yaml:"weights"`
	Thresholds       DecreaseThresholds `json:"thresholds" yaml:"thresholds"`
}

// Params builds projection parameters for one subject from the template.
func (t Template) Params(price float64, horizon int, s SignalSet) ProjectionParameters {
	return ProjectionParameters{
		StartingPrice:    price,
		AdjustmentFactor: t.AdjustmentFactor,
		HorizonWeeks:     horizon,
		Signals:          s,
		Weights:          t.Weights,
		Thresholds:       t.Thresholds,
	}
}

// Template extracts the carry-over part of p.
func (p ProjectionParameters) Template() Template {
	return Template{
		AdjustmentFactor: p.AdjustmentFactor,
		Weights:          p.Weights,
		Thresholds:       p.Thresholds,
	}
}

// PriceSeries is the projected price per week; index 0 is the starting price.
type PriceSeries []float64

// Final returns the last projected price.
func (s PriceSeries) Final() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// Deltas returns week-over-week differences; the first entry is 0.
func (s PriceSeries) Deltas() []float64 {
	out := make([]float64, len(s))
	for i := 1; i < len(s); i++ {
		out[i] = s[i] - s[i-1]
	}
	return out
}

// SimulationRow is one line of the interactive result table.
type SimulationRow struct {
	Week  int     `json:"week"`
	Price float64 `json:"price"`
	Delta int64   `json:"delta"`
}

// Simulation is the interactive simulator output.
type Simulation struct {
	SessionID string          `json:"session_id,omitempty"`
	Series    PriceSeries     `json:"series"`
	Table     []SimulationRow `json:"table"`
	Summary   []SummaryItem   `json:"summary"`
}
