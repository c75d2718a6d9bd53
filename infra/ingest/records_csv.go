package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/hems/core/model"
)

var recordsHeader = []string{"timestamp", "consumption_kwh", "import_price", "export_price", "pv_normalized"}

// DecodeRecordsCSV reads resolved hourly records. The first line must be the
// header timestamp,consumption_kwh,import_price,export_price,pv_normalized;
// timestamps are RFC 3339.
func DecodeRecordsCSV(r io.Reader) ([]model.HourlyRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(recordsHeader)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("records csv header: %w", err)
	}
	for i, h := range header {
		if strings.TrimSpace(strings.ToLower(h)) != recordsHeader[i] {
			return nil, fmt.Errorf("records csv: column %d is %q, want %q", i+1, h, recordsHeader[i])
		}
	}

	var out []model.HourlyRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("records csv: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			return nil, fmt.Errorf("records csv line %d: %w", line, err)
		}
		var vals [4]float64
		for i := range vals {
			if vals[i], err = strconv.ParseFloat(row[i+1], 64); err != nil {
				return nil, fmt.Errorf("records csv line %d, %s: %w", line, recordsHeader[i+1], err)
			}
		}
		out = append(out, model.HourlyRecord{
			Timestamp:      ts.UTC(),
			ConsumptionKWh: vals[0],
			ImportPrice:    vals[1],
			ExportPrice:    vals[2],
			PVNormalized:   vals[3],
		})
	}
	return out, nil
}

// LoadRecordsCSVFile reads resolved hourly records from a CSV file.
func LoadRecordsCSVFile(path string) ([]model.HourlyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return DecodeRecordsCSV(f)
}
