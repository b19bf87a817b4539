package models

import "time"

// Session is the interactive state carried into the batch phase.
type Session struct {
	ID        string    `json:"id"`
	Template  Template  `json:"template"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionSettings is the carried-over template of a session together with
// its human-readable settings summary.
type SessionSettings struct {
	Session Session       `json:"session"`
	Summary []SummaryItem `json:"summary"`
}
