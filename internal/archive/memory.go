package archive

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mazecore/pkg/domain"
)

// MemoryStore archives schedule runs in process memory. It is the reference
// implementation of domain.ScheduleStore and the default backend for tests
// and single-shot CLI use.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]domain.ScheduleRun
}

var _ domain.ScheduleStore = (*MemoryStore)(nil)

// NewMemory returns an empty in-memory run archive.
func NewMemory() *MemoryStore {
	return &MemoryStore{runs: make(map[string]domain.ScheduleRun)}
}

// SaveRun stores a run; run IDs are create-only.
func (s *MemoryStore) SaveRun(_ context.Context, run domain.ScheduleRun) error {
	if run.ID == "" {
		return fmt.Errorf("run id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	s.runs[run.ID] = run
	return nil
}

// GetRun returns the archived run with the given ID when present.
func (s *MemoryStore) GetRun(_ context.Context, id string) (domain.ScheduleRun, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok, nil
}

// ListRuns returns all archived runs ordered by creation time, then ID.
func (s *MemoryStore) ListRuns(_ context.Context) ([]domain.ScheduleRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ScheduleRun, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
