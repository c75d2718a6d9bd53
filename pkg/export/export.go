// Package export writes optimization results to files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/hems/core/model"
)

// Document is the JSON representation of a run.
type Document struct {
	Scenario string            `json:"scenario,omitempty"`
	RunID    string            `json:"run_id,omitempty"`
	Summary  model.Summary     `json:"summary"`
	Days     []model.DayResult `json:"days"`
}

// WriteJSON writes the results and their summary to w in JSON format.
// The LP text and solver output are kept only when withModel is set.
func WriteJSON(w io.Writer, scenario, runID string, results []model.DayResult, withModel bool) error {
	days := results
	if !withModel {
		days = make([]model.DayResult, len(results))
		for i, r := range results {
			r.Model, r.SolverOutput = "", ""
			days[i] = r
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{
		Scenario: scenario,
		RunID:    runID,
		Summary:  model.Summarize(results),
		Days:     days,
	})
}

var csvHeader = []string{
	"timestamp", "import_kw", "export_kw", "battery_kw", "pv_kw", "pv_available_kw",
	"load_kw", "battery_kwh", "import_price", "export_price",
}

// WriteCSV writes one row per reported hour.
func WriteCSV(w io.Writer, results []model.DayResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, r := range results {
		for h, ts := range r.Timestamps {
			rec := []string{
				ts.Format(time.RFC3339),
				f(r.ImportKW[h]),
				f(r.ExportKW[h]),
				f(r.BatteryKW[h]),
				f(r.PVKW[h]),
				f(r.PVAvailableKW[h]),
				f(r.UncontrolledLoadKW[h]),
				f(r.BatteryKWh[h]),
				f(r.ImportPrice[h]),
				f(r.ExportPrice[h]),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes results to path, choosing the format from the extension
// (.json or .csv).
func WriteFile(path, scenario, runID string, results []model.DayResult, withModel bool) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".csv" {
		return fmt.Errorf("unsupported export format: %s", ext)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if ext == ".csv" {
		return WriteCSV(f, results)
	}
	return WriteJSON(f, scenario, runID, results, withModel)
}
