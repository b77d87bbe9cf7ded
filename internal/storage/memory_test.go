package storage

import (
	"context"
	"testing"
)

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	run := RunSummary{
		RunID:       "run-1",
		N:           4,
		Variant:     "hybrid",
		BestFitness: 12.5,
		Generations: 50,
		Converged:   true,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	loaded, ok, err := store.GetRun(ctx, run.RunID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatalf("expected run %s", run.RunID)
	}
	if loaded.BestFitness != run.BestFitness || loaded.Variant != run.Variant {
		t.Fatalf("unexpected run loaded: %+v", loaded)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing run to be absent, got ok=%t err=%v", ok, err)
	}
}

func TestMemoryStoreFitnessHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Init(ctx)

	history := []float64{1.0, 2.5, 3.75}
	if err := store.SaveFitnessHistory(ctx, "run-1", history); err != nil {
		t.Fatalf("save history: %v", err)
	}

	loaded, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok {
		t.Fatal("expected fitness history run-1")
	}
	if len(loaded) != len(history) || loaded[1] != history[1] {
		t.Fatalf("unexpected history loaded: %+v", loaded)
	}

	loaded[0] = 999
	reloaded, _, _ := store.GetFitnessHistory(ctx, "run-1")
	if reloaded[0] == 999 {
		t.Fatal("GetFitnessHistory must return a defensive copy")
	}
}

func TestMemoryStoreGenerationDiagnosticsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Init(ctx)

	diagnostics := []GenerationDiagnostics{
		{Generation: 0, BestFitness: 1.0, MeanFitness: 0.5, MinFitness: 0.1, StdDev: 0.2, DistinctGenomeCount: 10},
		{Generation: 1, BestFitness: 1.2, MeanFitness: 0.6, MinFitness: 0.2, StdDev: 0.18, DistinctGenomeCount: 8},
	}
	if err := store.SaveGenerationDiagnostics(ctx, "run-1", diagnostics); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}

	loaded, ok, err := store.GetGenerationDiagnostics(ctx, "run-1")
	if err != nil {
		t.Fatalf("get diagnostics: %v", err)
	}
	if !ok || len(loaded) != 2 || loaded[1].DistinctGenomeCount != 8 {
		t.Fatalf("unexpected diagnostics loaded: %+v", loaded)
	}
}

func TestMemoryStoreTopGenomesRoundTripIsDefensive(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Init(ctx)

	top := []TopGenomeRecord{
		{Rank: 1, Fitness: 9.9, Discrete: []int{0, 1, 2}, Volumes: []float64{0.5, 0.5}},
	}
	if err := store.SaveTopGenomes(ctx, "run-1", top); err != nil {
		t.Fatalf("save top genomes: %v", err)
	}

	top[0].Discrete[0] = 999
	loaded, ok, err := store.GetTopGenomes(ctx, "run-1")
	if err != nil {
		t.Fatalf("get top genomes: %v", err)
	}
	if !ok {
		t.Fatal("expected top genomes run-1")
	}
	if loaded[0].Discrete[0] == 999 {
		t.Fatal("SaveTopGenomes must not alias the caller's slice")
	}

	loaded[0].Discrete[1] = 42
	reloaded, _, _ := store.GetTopGenomes(ctx, "run-1")
	if reloaded[0].Discrete[1] == 42 {
		t.Fatal("GetTopGenomes must return a defensive copy")
	}
}

func TestMemoryStoreLineageRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Init(ctx)

	lineage := []LineageRecord{
		{GenomeID: "g1", ParentID: "", Generation: 0, Operation: "seed", Fingerprint: "fp1"},
		{GenomeID: "g2", ParentID: "g1", Generation: 1, Operation: "crossover", Fingerprint: "fp2"},
	}
	if err := store.SaveLineage(ctx, "run-1", lineage); err != nil {
		t.Fatalf("save lineage: %v", err)
	}

	loaded, ok, err := store.GetLineage(ctx, "run-1")
	if err != nil {
		t.Fatalf("get lineage: %v", err)
	}
	if !ok || len(loaded) != 2 || loaded[1].ParentID != "g1" {
		t.Fatalf("unexpected lineage loaded: %+v", loaded)
	}
}

func TestMemoryStoreMissingRunArtifactsReportAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Init(ctx)

	if _, ok, err := store.GetFitnessHistory(ctx, "unknown"); err != nil || ok {
		t.Fatalf("expected absent fitness history, got ok=%t err=%v", ok, err)
	}
	if _, ok, err := store.GetGenerationDiagnostics(ctx, "unknown"); err != nil || ok {
		t.Fatalf("expected absent diagnostics, got ok=%t err=%v", ok, err)
	}
	if _, ok, err := store.GetTopGenomes(ctx, "unknown"); err != nil || ok {
		t.Fatalf("expected absent top genomes, got ok=%t err=%v", ok, err)
	}
	if _, ok, err := store.GetLineage(ctx, "unknown"); err != nil || ok {
		t.Fatalf("expected absent lineage, got ok=%t err=%v", ok, err)
	}
}
