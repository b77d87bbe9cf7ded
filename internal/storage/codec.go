package storage

import (
	"encoding/json"
	"errors"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func stampVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func checkVersion(v VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

func EncodeRun(run RunSummary) ([]byte, error) {
	run.VersionedRecord = stampVersion()
	return json.Marshal(run)
}

func DecodeRun(data []byte) (RunSummary, error) {
	var run RunSummary
	if err := json.Unmarshal(data, &run); err != nil {
		return RunSummary{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return RunSummary{}, err
	}
	return run, nil
}

func EncodeFitnessHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeFitnessHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func EncodeGenerationDiagnostics(diagnostics []GenerationDiagnostics) ([]byte, error) {
	return json.Marshal(diagnostics)
}

func DecodeGenerationDiagnostics(data []byte) ([]GenerationDiagnostics, error) {
	var diagnostics []GenerationDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, err
	}
	return diagnostics, nil
}

func EncodeTopGenomes(top []TopGenomeRecord) ([]byte, error) {
	return json.Marshal(top)
}

func DecodeTopGenomes(data []byte) ([]TopGenomeRecord, error) {
	var top []TopGenomeRecord
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	return top, nil
}

func EncodeLineage(records []LineageRecord) ([]byte, error) {
	stamped := make([]LineageRecord, len(records))
	for i, r := range records {
		r.VersionedRecord = stampVersion()
		stamped[i] = r
	}
	return json.Marshal(stamped)
}

func DecodeLineage(data []byte) ([]LineageRecord, error) {
	var records []LineageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	for _, record := range records {
		if err := checkVersion(record.VersionedRecord); err != nil {
			return nil, err
		}
	}
	return records, nil
}
