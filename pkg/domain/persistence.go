package domain

import (
	"context"
	"time"
)

// ScheduleRun is a persisted schedule generation result. The engine itself is
// stateless; runs are archived by the service layer so previously generated
// schedules can be listed and re-exported.
type ScheduleRun struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Config    ScheduleConfig `json:"config"`
	Animals   []Animal       `json:"animals"`
	ExitArms  ExitArmMap     `json:"exit_arms"`
	Days      []DayTable     `json:"days"`
	Fallbacks int            `json:"fallbacks"`
}

// ScheduleStore is a minimal abstraction over durable run archives. Concrete
// backends live under internal/archive; higher layers depend only on this
// interface.
type ScheduleStore interface {
	// SaveRun persists a run. Run IDs are unique; saving an existing ID fails.
	SaveRun(ctx context.Context, run ScheduleRun) error
	// GetRun returns the run with the given ID when present.
	GetRun(ctx context.Context, id string) (ScheduleRun, bool, error)
	// ListRuns returns all archived runs ordered by creation time ascending.
	ListRuns(ctx context.Context) ([]ScheduleRun, error)
}
