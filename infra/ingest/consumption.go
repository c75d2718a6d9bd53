package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// ConsumptionRecord is one hour of metered consumption with its spot price.
type ConsumptionRecord struct {
	From        time.Time `json:"from"`
	Consumption *float64  `json:"consumption"` // kWh, null when the meter has no reading
	Cost        *float64  `json:"cost"`
	// UnitPrice is the spot price excluding VAT.
	UnitPrice float64 `json:"unitPrice"`
	// UnitPriceVAT is the VAT part of the spot price.
	UnitPriceVAT float64 `json:"unitPriceVAT"`
	Currency     string  `json:"currency"`
}

// SpotPrice returns the spot price including VAT.
func (r ConsumptionRecord) SpotPrice() float64 { return r.UnitPrice + r.UnitPriceVAT }

// DecodeConsumption reads a JSON array of consumption records. Timestamps
// are converted to UTC and records must be strictly increasing in time.
func DecodeConsumption(r io.Reader) ([]ConsumptionRecord, error) {
	var recs []ConsumptionRecord
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode consumption: %w", err)
	}
	for i := range recs {
		if recs[i].From.IsZero() {
			return nil, fmt.Errorf("consumption record %d: missing from", i)
		}
		if recs[i].Consumption == nil {
			return nil, fmt.Errorf("consumption record %d (%s): missing consumption",
				i, recs[i].From.Format(time.RFC3339))
		}
		recs[i].From = recs[i].From.UTC()
		if i > 0 && !recs[i].From.After(recs[i-1].From) {
			return nil, fmt.Errorf("consumption record %d (%s): not after its predecessor",
				i, recs[i].From.Format(time.RFC3339))
		}
	}
	return recs, nil
}

// LoadConsumptionFile reads consumption records from a JSON file.
func LoadConsumptionFile(path string) ([]ConsumptionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return DecodeConsumption(f)
}
