package storage

import (
	"context"
	"sync"
)

// MemoryStore is the default, always-built Store backend: plain maps
// behind a single RWMutex, with defensive-copy-on-read/write discipline
// so callers can never mutate a stored record through a returned slice.
type MemoryStore struct {
	mu sync.RWMutex

	runs        map[string]RunSummary
	history     map[string][]float64
	diagnostics map[string][]GenerationDiagnostics
	topGenomes  map[string][]TopGenomeRecord
	lineage     map[string][]LineageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]RunSummary)
	s.history = make(map[string][]float64)
	s.diagnostics = make(map[string][]GenerationDiagnostics)
	s.topGenomes = make(map[string][]TopGenomeRecord)
	s.lineage = make(map[string][]LineageRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.RunID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, runID string) (RunSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	return run, ok, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[runID] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), history...), true, nil
}

func (s *MemoryStore) SaveGenerationDiagnostics(_ context.Context, runID string, diagnostics []GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	s.diagnostics[runID] = copied
	return nil
}

func (s *MemoryStore) GetGenerationDiagnostics(_ context.Context, runID string) ([]GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	return copied, true, nil
}

func (s *MemoryStore) SaveTopGenomes(_ context.Context, runID string, top []TopGenomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]TopGenomeRecord, len(top))
	for i, rec := range top {
		copied[i] = TopGenomeRecord{
			Rank:     rec.Rank,
			Fitness:  rec.Fitness,
			Discrete: append([]int(nil), rec.Discrete...),
			Volumes:  append([]float64(nil), rec.Volumes...),
		}
	}
	s.topGenomes[runID] = copied
	return nil
}

func (s *MemoryStore) GetTopGenomes(_ context.Context, runID string) ([]TopGenomeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	top, ok := s.topGenomes[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]TopGenomeRecord, len(top))
	for i, rec := range top {
		copied[i] = TopGenomeRecord{
			Rank:     rec.Rank,
			Fitness:  rec.Fitness,
			Discrete: append([]int(nil), rec.Discrete...),
			Volumes:  append([]float64(nil), rec.Volumes...),
		}
	}
	return copied, true, nil
}

func (s *MemoryStore) SaveLineage(_ context.Context, runID string, lineage []LineageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]LineageRecord, len(lineage))
	copy(copied, lineage)
	s.lineage[runID] = copied
	return nil
}

func (s *MemoryStore) GetLineage(_ context.Context, runID string) ([]LineageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lineage, ok := s.lineage[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]LineageRecord, len(lineage))
	copy(copied, lineage)
	return copied, true, nil
}
