package app

import (
	"context"

	"github.com/kilianp07/hems/config"
	"github.com/kilianp07/hems/core/model"
	"github.com/kilianp07/hems/infra/ingest"
	"github.com/kilianp07/hems/infra/logger"
)

// LoadRecords resolves the configured input into hourly records: either a
// records CSV as is, or metered consumption merged with a PVWatts yield
// curve and priced with tariff.
func LoadRecords(ctx context.Context, in config.InputConfig, tariff ingest.Tariff, log logger.Logger) ([]model.HourlyRecord, error) {
	if in.Records != "" {
		return ingest.LoadRecordsCSVFile(in.Records)
	}
	consumption, err := ingest.LoadConsumptionFile(in.Consumption)
	if err != nil {
		return nil, err
	}

	var (
		ds       *ingest.PVWattsDataset
		capacity = in.PVWattsCapacityKW
	)
	if in.PVWatts != nil {
		ds, err = ingest.NewPVWattsClient(in.PVWattsURL, log).Fetch(ctx, *in.PVWatts)
		capacity = in.PVWatts.SystemCapacity
	} else {
		ds, err = ingest.LoadPVWattsFile(in.PVWattsFile)
	}
	if err != nil {
		return nil, err
	}
	curve, err := ds.Curve(capacity, in.AlignTZ)
	if err != nil {
		return nil, err
	}
	return ingest.Merge(consumption, curve, tariff), nil
}
