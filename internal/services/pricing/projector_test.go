package pricing

import (
	"errors"
	"math"
	"testing"

	"PriceSim/internal/domain/models"
)

func referenceParams() models.ProjectionParameters {
	return models.ProjectionParameters{
		StartingPrice:    1000,
		AdjustmentFactor: 0.15,
		HorizonWeeks:     1,
		Signals: models.SignalSet{
			Requests: 20, CallTime: 500, WaitingTime: 1500, ActiveDays: 4,
			RepeatRate: 0.5, ApprovalRate: 0.85, PenaltyPoints: 0,
		},
		Weights: models.WeightSet{
			Requests: 0.5, CallTime: 0.5, WaitingTime: 0.6, ActiveDays: 0.6,
			RepeatRate: 0.7, ApprovalRate: -0.8, PenaltyPoints: -0.5,
		},
		Thresholds: models.DecreaseThresholds{
			WaitingTime: 180, ActiveDays: 2, ApprovalRate: 0.8, CallTime: 1500, PenaltyPoints: 1,
		},
	}
}

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestProjectReferenceScenario(t *testing.T) {
	got, err := Project(referenceParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 prices, got %d", len(got))
	}
	if !almostEqual(got[1], 1088.2380952380952, 1e-9) {
		t.Fatalf("unexpected next price %v", got[1])
	}
}

func TestProjectSeriesShape(t *testing.T) {
	for _, n := range []int{1, 2, 12, 52} {
		p := referenceParams()
		p.HorizonWeeks = n
		got, err := Project(p)
		if err != nil {
			t.Fatalf("horizon %d: %v", n, err)
		}
		if len(got) != n+1 {
			t.Fatalf("horizon %d: expected %d prices, got %d", n, n+1, len(got))
		}
		if got[0] != p.StartingPrice {
			t.Fatalf("horizon %d: first price %v != starting price", n, got[0])
		}
	}
}

func TestProjectConstantSeries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ProjectionParameters)
	}{
		{"zero weights no triggers", func(p *models.ProjectionParameters) { p.Weights = models.WeightSet{} }},
		{"zero adjustment factor", func(p *models.ProjectionParameters) {
			p.AdjustmentFactor = 0
			p.Signals.WaitingTime = 10 // triggers a decrease, still flat
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := referenceParams()
			p.HorizonWeeks = 12
			tt.mutate(&p)
			got, err := Project(p)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i, v := range got {
				if v != p.StartingPrice {
					t.Fatalf("week %d: expected %v, got %v", i, p.StartingPrice, v)
				}
			}
		})
	}
}

func TestDecreaseEffectGrowsWithStep(t *testing.T) {
	s := models.SignalSet{WaitingTime: 100, ActiveDays: 1, ApprovalRate: 0.5, PenaltyPoints: 3}
	th := referenceParams().Thresholds
	const horizon = 12
	prev := 0.0
	for week := 1; week <= horizon; week++ {
		e := DecreaseEffect(s, th, week, horizon)
		if week > 1 && !(e < prev) {
			t.Fatalf("week %d: penalty %v not larger in magnitude than %v", week, e, prev)
		}
		prev = e
	}
	if !almostEqual(prev, -4*math.E, 1e-12) {
		t.Fatalf("final week penalty = %v, want %v", prev, -4*math.E)
	}
}

func TestDecreaseConditions(t *testing.T) {
	th := referenceParams().Thresholds
	base := referenceParams().Signals
	tests := []struct {
		name   string
		mutate func(*models.SignalSet)
		want   int
	}{
		{"none", func(*models.SignalSet) {}, 0},
		{"waiting time at threshold", func(s *models.SignalSet) { s.WaitingTime = 180 }, 1},
		{"active days below", func(s *models.SignalSet) { s.ActiveDays = 1 }, 1},
		{"penalty at threshold", func(s *models.SignalSet) { s.PenaltyPoints = 1 }, 1},
		{"approval at threshold", func(s *models.SignalSet) { s.ApprovalRate = 0.8 }, 1},
		{"call time below is ignored", func(s *models.SignalSet) { s.CallTime = 10 }, 0},
		{"all four", func(s *models.SignalSet) {
			s.WaitingTime, s.ActiveDays, s.PenaltyPoints, s.ApprovalRate = 0, 0, 5, 0
		}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			got := DecreaseEffect(s, th, 1, 1)
			want := -float64(tt.want) * math.E
			if !almostEqual(got, want, 1e-12) {
				t.Fatalf("got %v, want %v", got, want)
			}
		})
	}
}

func TestCallTimeThresholdHasNoEffect(t *testing.T) {
	p := referenceParams()
	p.HorizonWeeks = 12
	p.Signals.CallTime = 100
	p.Thresholds.CallTime = 0
	above, err := Project(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Thresholds.CallTime = 5000
	below, err := Project(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range above {
		if above[i] != below[i] {
			t.Fatalf("week %d differs: %v vs %v", i, above[i], below[i])
		}
	}
}

func TestProjectNoFloorAtZero(t *testing.T) {
	p := referenceParams()
	p.AdjustmentFactor = 1
	p.Weights = models.WeightSet{}
	p.Signals = models.SignalSet{WaitingTime: 0, ActiveDays: 0, ApprovalRate: 0, PenaltyPoints: 5}
	got, err := Project(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 1000 * (1 - 4*math.E)
	if !almostEqual(got[1], want, 1e-9) || got[1] >= 0 {
		t.Fatalf("expected negative price %v, got %v", want, got[1])
	}
}

func TestProjectInvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ProjectionParameters)
		field  string
	}{
		{"zero horizon", func(p *models.ProjectionParameters) { p.HorizonWeeks = 0 }, "horizon_weeks"},
		{"negative horizon", func(p *models.ProjectionParameters) { p.HorizonWeeks = -3 }, "horizon_weeks"},
		{"zero price", func(p *models.ProjectionParameters) { p.StartingPrice = 0 }, "starting_price"},
		{"nan weight", func(p *models.ProjectionParameters) { p.Weights.CallTime = math.NaN() }, "weights.call_time"},
		{"inf factor", func(p *models.ProjectionParameters) { p.AdjustmentFactor = math.Inf(1) }, "adjustment_factor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := referenceParams()
			tt.mutate(&p)
			_, err := Project(p)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
			var ipe *InvalidParameterError
			if !errors.As(err, &ipe) || ipe.Field != tt.field {
				t.Fatalf("expected field %s, got %v", tt.field, err)
			}
		})
	}
}

func TestProjectInvalidFieldIsStable(t *testing.T) {
	p := referenceParams()
	p.Thresholds.CallTime = math.NaN()
	p.Weights.Requests = math.Inf(-1)
	p.Signals.PenaltyPoints = math.NaN()
	for i := 0; i < 50; i++ {
		_, err := Project(p)
		var ipe *InvalidParameterError
		if !errors.As(err, &ipe) || ipe.Field != "signals.penalty_points" {
			t.Fatalf("run %d: expected signals.penalty_points, got %v", i, err)
		}
	}
}

func TestProjectDomainPolicies(t *testing.T) {
	p := referenceParams()
	p.Signals.ActiveDays = 9

	_, err := NewProjector(PolicyReject).Project(p)
	if !errors.Is(err, ErrDomainAssumption) {
		t.Fatalf("reject: expected ErrDomainAssumption, got %v", err)
	}
	var dav *DomainAssumptionViolation
	if !errors.As(err, &dav) || len(dav.Violations) != 1 || dav.Violations[0].Signal != "active_days" {
		t.Fatalf("reject: unexpected violations %v", err)
	}

	clamped, err := NewProjector(PolicyClamp).Project(p)
	if err != nil {
		t.Fatalf("clamp: unexpected error: %v", err)
	}
	p7 := p
	p7.Signals.ActiveDays = 7
	want, _ := Project(p7)
	if clamped[1] != want[1] {
		t.Fatalf("clamp: got %v, want %v", clamped[1], want[1])
	}

	allowed, err := NewProjector(PolicyAllow).Project(p)
	if err != nil {
		t.Fatalf("allow: unexpected error: %v", err)
	}
	if !(allowed[1] > clamped[1]) {
		t.Fatalf("allow: expected unclamped active days to raise price, got %v <= %v", allowed[1], clamped[1])
	}
}

func TestCheckDomain(t *testing.T) {
	s := models.SignalSet{Requests: -1, WaitingTime: 10, ActiveDays: 3, RepeatRate: 1.2, ApprovalRate: 0.5}
	vs := CheckDomain(s)
	if len(vs) != 2 {
		t.Fatalf("expected 2 violations, got %v", vs)
	}
	if vs[0].Signal != "requests" || vs[1].Signal != "repeat_rate" {
		t.Fatalf("unexpected violations %v", vs)
	}
	if CheckDomain(referenceParams().Signals) != nil {
		t.Fatalf("reference signals should be in domain")
	}
}

func TestParseDomainPolicy(t *testing.T) {
	for in, want := range map[string]DomainPolicy{"": PolicyReject, "Clamp": PolicyClamp, " allow ": PolicyAllow} {
		got, err := ParseDomainPolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParseDomainPolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDomainPolicy("floor"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
