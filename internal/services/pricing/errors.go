package pricing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidParameter = errors.New("pricing: invalid parameter")
	ErrDomainAssumption = errors.New("pricing: signal outside documented domain")
)

// InvalidParameterError reports a malformed projection input.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool { return target == ErrInvalidParameter }

// Violation describes one signal outside its normalization domain.
type Violation struct {
	Signal string  `json:"signal"`
	Value  float64 `json:"value"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max,omitempty"` // 0 means unbounded above
}

func (v Violation) String() string {
	if v.Max == 0 {
		return fmt.Sprintf("%s=%g (want >= %g)", v.Signal, v.Value, v.Min)
	}
	return fmt.Sprintf("%s=%g (want %g..%g)", v.Signal, v.Value, v.Min, v.Max)
}

// DomainAssumptionViolation lists signals whose values fall outside the
// range the normalization constants assume.
type DomainAssumptionViolation struct {
	Violations []Violation
}

func (e *DomainAssumptionViolation) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "signal out of domain: " + strings.Join(parts, ", ")
}

func (e *DomainAssumptionViolation) Is(target error) bool { return target == ErrDomainAssumption }
