package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"PriceSim/internal/domain/models"
	domrepo "PriceSim/internal/domain/repository"
	domsvc "PriceSim/internal/domain/service"
)

// DefaultSimulationWeeks is the horizon of the interactive simulation.
const DefaultSimulationWeeks = 12

// Simulator runs the interactive projection and remembers the settings used
// so a later batch recomputation can reuse them.
type Simulator struct {
	proj     domsvc.Projector
	sessions domrepo.SessionStore
	metrics  domrepo.Metrics
	weeks    int
}

// NewSimulator creates a Simulator. weeks <= 0 falls back to 12.
func NewSimulator(proj domsvc.Projector, sessions domrepo.SessionStore, metrics domrepo.Metrics, weeks int) *Simulator {
	if weeks <= 0 {
		weeks = DefaultSimulationWeeks
	}
	return &Simulator{proj: proj, sessions: sessions, metrics: metrics, weeks: weeks}
}

// Weeks returns the simulation horizon.
func (s *Simulator) Weeks() int { return s.weeks }

// Simulate projects the price over the simulation horizon and stores the
// template under sessionID (a new id is issued when empty).
func (s *Simulator) Simulate(ctx context.Context, sessionID string, price float64, signals models.SignalSet, tpl models.Template) (*models.Simulation, error) {
	series, err := s.run("simulate", tpl.Params(price, s.weeks, signals))
	if err != nil {
		return nil, err
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if s.sessions != nil {
		sess := models.Session{ID: sessionID, Template: tpl, UpdatedAt: time.Now().UTC()}
		if err := s.sessions.Save(ctx, sess); err != nil {
			s.metrics.RecordError("session_save")
			return nil, fmt.Errorf("save session: %w", err)
		}
	}

	return &models.Simulation{
		SessionID: sessionID,
		Series:    series,
		Table:     BuildTable(series),
		Summary:   BuildSummary(tpl),
	}, nil
}

// Preview projects without touching the session store.
func (s *Simulator) Preview(price float64, signals models.SignalSet, tpl models.Template) (*models.Simulation, error) {
	series, err := s.run("ws", tpl.Params(price, s.weeks, signals))
	if err != nil {
		return nil, err
	}
	return &models.Simulation{Series: series, Table: BuildTable(series), Summary: BuildSummary(tpl)}, nil
}

// Project runs a projection with an explicit horizon.
func (s *Simulator) Project(params models.ProjectionParameters) (models.PriceSeries, error) {
	return s.run("project", params)
}

// Settings returns the template stored for a session.
func (s *Simulator) Settings(ctx context.Context, sessionID string) (models.Session, error) {
	if s.sessions == nil {
		return models.Session{}, domrepo.ErrSessionNotFound
	}
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return models.Session{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return sess, nil
}

func (s *Simulator) run(source string, params models.ProjectionParameters) (models.PriceSeries, error) {
	start := time.Now()
	series, err := s.proj.Project(params)
	if err != nil {
		s.metrics.RecordError(source + "_projection")
		return nil, err
	}
	s.metrics.RecordProjection(source)
	s.metrics.RecordFinalPrice(source, series.Final())
	s.metrics.RecordLatency(source, time.Since(start).Seconds())
	return series, nil
}

// BuildTable turns a series into 1-based week rows with integer deltas
// truncated toward zero; the first row has delta 0.
func BuildTable(series models.PriceSeries) []models.SimulationRow {
	deltas := series.Deltas()
	rows := make([]models.SimulationRow, len(series))
	for i, p := range series {
		rows[i] = models.SimulationRow{Week: i + 1, Price: p, Delta: int64(deltas[i])}
	}
	return rows
}
