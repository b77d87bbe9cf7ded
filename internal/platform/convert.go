package platform

import (
	"context"

	"circopt/internal/ga"
	"circopt/internal/storage"
)

// persist writes a completed run's summary artifacts to store: run
// metadata, fitness history, per-generation diagnostics, lineage, and
// the top-N final genomes — mirroring the save sequence in the
// teacher's Polis.RunEvolution (SaveFitnessHistory, SaveGenerationDiagnostics,
// SaveLineage, SaveTopGenomes), minus the population-snapshot and
// species-history saves that have no analog here.
func persist(ctx context.Context, store storage.Store, runID string, cfg RunConfig, result ga.Result) error {
	if err := store.Init(ctx); err != nil {
		return err
	}

	run := storage.RunSummary{
		RunID:          runID,
		N:              cfg.N,
		Variant:        cfg.Mode,
		BestFitness:    result.BestFitness,
		Generations:    result.Generations,
		Converged:      result.Converged,
		AverageFitness: result.AverageFitness,
		StdDev:         result.StdDev,
		ElapsedSeconds: result.ElapsedSeconds,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		return err
	}

	history := make([]float64, len(result.History))
	for i, s := range result.History {
		history[i] = s.BestFitness
	}
	if err := store.SaveFitnessHistory(ctx, runID, history); err != nil {
		return err
	}

	if err := store.SaveGenerationDiagnostics(ctx, runID, toStorageDiagnostics(result.History)); err != nil {
		return err
	}

	if err := store.SaveLineage(ctx, runID, toStorageLineage(result.Lineage)); err != nil {
		return err
	}

	topN := cfg.TopN
	if topN <= 0 {
		topN = 5
	}
	if err := store.SaveTopGenomes(ctx, runID, toStorageTopGenomes(result.Final, topN)); err != nil {
		return err
	}

	return nil
}

func toStorageDiagnostics(history []ga.Stats) []storage.GenerationDiagnostics {
	out := make([]storage.GenerationDiagnostics, len(history))
	for i, s := range history {
		out[i] = storage.GenerationDiagnostics{
			Generation:          s.Generation,
			BestFitness:         s.BestFitness,
			MeanFitness:         s.MeanFitness,
			MinFitness:          s.MinFitness,
			StdDev:              s.StdDev,
			DistinctGenomeCount: s.DistinctGenomeCount,
		}
	}
	return out
}

func toStorageLineage(lineage []ga.LineageRecord) []storage.LineageRecord {
	out := make([]storage.LineageRecord, len(lineage))
	for i, rec := range lineage {
		out[i] = storage.LineageRecord{
			GenomeID:    rec.GenomeID,
			ParentID:    rec.ParentID,
			Generation:  rec.Generation,
			Operation:   rec.Operation,
			Fingerprint: rec.Fingerprint,
		}
	}
	return out
}

func toStorageTopGenomes(final []ga.ScoredGenome, topN int) []storage.TopGenomeRecord {
	if topN > len(final) {
		topN = len(final)
	}
	out := make([]storage.TopGenomeRecord, topN)
	for i := 0; i < topN; i++ {
		out[i] = storage.TopGenomeRecord{
			Rank:     i + 1,
			Fitness:  final[i].Fitness,
			Discrete: append([]int(nil), final[i].Genome.D...),
			Volumes:  append([]float64(nil), final[i].Genome.C...),
		}
	}
	return out
}
