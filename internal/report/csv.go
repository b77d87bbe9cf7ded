// Package report writes the append-only CSV artifacts and the DOT
// visualization of the system's persisted/rendered state, using an
// append-CSV pattern (encoding/csv, one row per record, flush-and-check
// the writer's deferred error).
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"circopt/internal/circuit"
)

// AppendVectorCSV appends one row to the vector CSV: the discrete
// genome as a comma-separated row of integers. The file is created if
// absent; existing content is preserved.
func AppendVectorCSV(path string, discrete []int) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	row := make([]string, len(discrete))
	for i, v := range discrete {
		row[i] = strconv.Itoa(v)
	}
	if err := writer.Write(row); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// AppendUnitsCSV appends one row to the units CSV: per-unit
// concentrate-sum and tailings-sum, two numbers per unit, 2-decimal
// fixed precision, comma-separated.
func AppendUnitsCSV(path string, c *circuit.Circuit) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	row := make([]string, 0, 2*len(c.Units))
	for _, u := range c.Units {
		row = append(row,
			strconv.FormatFloat(u.Conc.Total(), 'f', 2, 64),
			strconv.FormatFloat(u.Tail.Total(), 'f', 2, 64),
		)
	}
	if err := writer.Write(row); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// ReadVectorCSV reads back every row previously written by
// AppendVectorCSV, for tests and for CLI inspection of a run's
// accumulated vector history.
func ReadVectorCSV(path string) ([][]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	result := make([][]int, len(rows))
	for i, row := range rows {
		values := make([]int, len(row))
		for j, field := range row {
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("vector csv row %d field %d: %w", i, j, err)
			}
			values[j] = v
		}
		result[i] = values
	}
	return result, nil
}
