package ingest

import (
	"github.com/kilianp07/hems/core/model"
)

// Merge combines metered consumption, a PV yield curve and a tariff into
// optimizer input. Records keep the order and timestamps of consumption.
func Merge(consumption []ConsumptionRecord, curve YieldCurve, tariff Tariff) []model.HourlyRecord {
	out := make([]model.HourlyRecord, 0, len(consumption))
	for _, c := range consumption {
		var kwh float64
		if c.Consumption != nil {
			kwh = *c.Consumption
		}
		out = append(out, model.HourlyRecord{
			Timestamp:      c.From,
			ConsumptionKWh: kwh,
			ImportPrice:    tariff.Import(c.UnitPrice, c.UnitPriceVAT),
			ExportPrice:    tariff.Export(c.UnitPrice, c.UnitPriceVAT),
			PVNormalized:   curve.At(c.From),
		})
	}
	return out
}
