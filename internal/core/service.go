package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"mazecore/pkg/domain"
)

// Service wraps the engine with run identity, archival, and metrics. Each
// Generate call is an independent, stateless computation; the only state
// shared across calls is the injected store.
type Service struct {
	store   domain.ScheduleStore
	metrics MetricsRecorder
	now     func() time.Time
}

// ServiceOption customizes Service construction.
type ServiceOption func(*Service)

// WithMetrics installs a metrics recorder.
func WithMetrics(rec MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithClock overrides the service time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a service persisting runs to store. A nil store is
// allowed; runs are then returned without being archived.
func NewService(store domain.ScheduleStore, opts ...ServiceOption) *Service {
	s := &Service{store: store, metrics: NoopMetricsRecorder{}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate runs the engine over the supplied roster and archives the result.
func (s *Service) Generate(ctx context.Context, animals []domain.Animal, cfg domain.ScheduleConfig) (domain.ScheduleRun, error) {
	started := s.now()
	result, err := GenerateSchedule(animals, cfg)
	s.metrics.Observe(ctx, "generate_schedule", err == nil, s.now().Sub(started))
	if err != nil {
		return domain.ScheduleRun{}, err
	}
	if result.Fallbacks > 0 {
		s.metrics.AddFallbacks(ctx, result.Fallbacks)
	}

	run := domain.ScheduleRun{
		ID:        newRunID(),
		CreatedAt: started.UTC(),
		Config:    cfg,
		Animals:   append([]domain.Animal(nil), animals...),
		ExitArms:  result.ExitArms,
		Days:      result.Days,
		Fallbacks: result.Fallbacks,
	}
	if s.store != nil {
		if err := s.store.SaveRun(ctx, run); err != nil {
			return domain.ScheduleRun{}, fmt.Errorf("archive run: %w", err)
		}
	}
	return run, nil
}

// Run returns an archived run by ID.
func (s *Service) Run(ctx context.Context, id string) (domain.ScheduleRun, bool, error) {
	if s.store == nil {
		return domain.ScheduleRun{}, false, nil
	}
	return s.store.GetRun(ctx, id)
}

// Runs lists all archived runs.
func (s *Service) Runs(ctx context.Context) ([]domain.ScheduleRun, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListRuns(ctx)
}

func newRunID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
