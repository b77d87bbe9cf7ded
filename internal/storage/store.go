// Package storage persists a completed optimization run's summary
// artifacts — fitness history, per-generation diagnostics, lineage, and
// the top-N genomes — behind a Store interface with an in-memory
// implementation always built and a SQLite-backed implementation gated
// behind the "sqlite" build tag.
package storage

import "context"

// VersionedRecord captures schema and codec evolution for persisted
// records so a future migration can tell which shape it is reading.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunSummary is the top-level record for one completed optimization run.
type RunSummary struct {
	VersionedRecord
	RunID          string  `json:"run_id"`
	N              int     `json:"n"`
	Variant        string  `json:"variant"`
	BestFitness    float64 `json:"best_fitness"`
	Generations    int     `json:"generations"`
	Converged      bool    `json:"converged"`
	AverageFitness float64 `json:"average_fitness"`
	StdDev         float64 `json:"stddev"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	StartedAtUnix  int64   `json:"started_at_unix"`
}

// GenerationDiagnostics is one generation's fitness-distribution
// snapshot, mirroring ga.Stats but decoupled from the ga package so
// storage has no dependency on the optimizer's internals.
type GenerationDiagnostics struct {
	Generation          int     `json:"generation"`
	BestFitness         float64 `json:"best_fitness"`
	MeanFitness         float64 `json:"mean_fitness"`
	MinFitness          float64 `json:"min_fitness"`
	StdDev              float64 `json:"stddev"`
	DistinctGenomeCount int     `json:"distinct_genome_count"`
}

// TopGenomeRecord is one of a run's top-N genomes by fitness.
type TopGenomeRecord struct {
	Rank     int       `json:"rank"`
	Fitness  float64   `json:"fitness"`
	Discrete []int     `json:"discrete"`
	Volumes  []float64 `json:"volumes,omitempty"`
}

// LineageRecord is the parent/operation/generation triple recorded for
// one accepted genome during a run — see ga.LineageRecord, which this
// mirrors field-for-field; internal/platform converts between the two
// before calling Store.SaveLineage.
type LineageRecord struct {
	VersionedRecord
	GenomeID    string `json:"genome_id"`
	ParentID    string `json:"parent_id"`
	Generation  int    `json:"generation"`
	Operation   string `json:"operation"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Store defines persistence operations for a completed run's artifacts.
type Store interface {
	Init(ctx context.Context) error

	SaveRun(ctx context.Context, run RunSummary) error
	GetRun(ctx context.Context, runID string) (RunSummary, bool, error)

	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)

	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]GenerationDiagnostics, bool, error)

	SaveTopGenomes(ctx context.Context, runID string, top []TopGenomeRecord) error
	GetTopGenomes(ctx context.Context, runID string) ([]TopGenomeRecord, bool, error)

	SaveLineage(ctx context.Context, runID string, lineage []LineageRecord) error
	GetLineage(ctx context.Context, runID string) ([]LineageRecord, bool, error)
}
