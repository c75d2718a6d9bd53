package optimize

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/hems/core/lpmodel"
	"github.com/kilianp07/hems/core/model"
	"github.com/kilianp07/hems/core/solver"
)

// anchorTolerance is the largest deviation of soc(0) from the start-of-day
// charge accepted from a solver.
const anchorTolerance = 1e-6

// Extract maps the solution of a day's LP back onto the 24 reported hours and
// computes the day's costs. modelText is kept on the result for audit.
func Extract(w model.DayWindow, spec model.SystemSpec, sol solver.Solution, modelText string) (model.DayResult, error) {
	const n = model.ReportHours
	if len(w.Records) < n {
		return model.DayResult{}, &InsufficientHorizonError{Day: w.Day, Hours: len(w.Records), Required: n}
	}
	res := model.DayResult{
		Day:                w.Day,
		Timestamps:         make([]time.Time, n),
		ImportKW:           make([]float64, n),
		ExportKW:           make([]float64, n),
		BatteryKW:          make([]float64, n),
		PVKW:               make([]float64, n),
		PVAvailableKW:      make([]float64, n),
		UncontrolledLoadKW: make([]float64, n),
		BatteryKWh:         make([]float64, n),
		ImportPrice:        make([]float64, n),
		ExportPrice:        make([]float64, n),
		BatteryKWhAtSoD:    spec.BatteryKWhAtSoD,
		Spec:               spec,
		Model:              modelText,
		SolverOutput:       sol.Raw,
	}

	read := func(role string, h int) (float64, error) {
		name := lpmodel.VarName(role, h)
		v, ok := sol.Value(name)
		if !ok {
			return 0, fmt.Errorf("solution has no value for %s", name)
		}
		if math.Abs(v) < 1e-9 {
			v = 0
		}
		return v, nil
	}

	for h := 0; h < n; h++ {
		r := w.Records[h]
		var err error
		if res.ImportKW[h], err = read(RoleImport, h); err != nil {
			return model.DayResult{}, err
		}
		if res.ExportKW[h], err = read(RoleExport, h); err != nil {
			return model.DayResult{}, err
		}
		if res.BatteryKW[h], err = read(RoleBattery, h); err != nil {
			return model.DayResult{}, err
		}
		if res.PVKW[h], err = read(RolePV, h); err != nil {
			return model.DayResult{}, err
		}
		if res.BatteryKWh[h], err = read(RoleSoC, h); err != nil {
			return model.DayResult{}, err
		}
		res.Timestamps[h] = r.Timestamp
		res.PVAvailableKW[h] = PVAvailable(r, spec)
		res.UncontrolledLoadKW[h] = r.ConsumptionKWh
		res.ImportPrice[h] = r.ImportPrice
		res.ExportPrice[h] = r.ExportPrice
	}

	if d := math.Abs(res.BatteryKWh[0] - spec.BatteryKWhAtSoD); d > anchorTolerance {
		return model.DayResult{}, fmt.Errorf("soc_h0 = %v deviates from start-of-day charge %v",
			res.BatteryKWh[0], spec.BatteryKWhAtSoD)
	}
	res.BatteryKWh[0] = spec.BatteryKWhAtSoD
	// Solver round-off must not push the carried charge outside the battery.
	for h := 1; h < n; h++ {
		res.BatteryKWh[h] = math.Min(math.Max(res.BatteryKWh[h], 0), spec.BatteryKWh)
	}
	res.BatteryKWhAtEoD = res.BatteryKWh[n-1]

	res.CurtailedPVKWh = floats.Sum(res.PVAvailableKW) - floats.Sum(res.PVKW)
	if math.Abs(res.CurtailedPVKWh) < 1e-9 {
		res.CurtailedPVKWh = 0
	}
	res.Cost.Total = floats.Dot(res.ImportKW, res.ImportPrice) - floats.Dot(res.ExportKW, res.ExportPrice)
	res.Cost.OnlyUncontrolledLoad = floats.Dot(res.UncontrolledLoadKW, res.ImportPrice)
	return res, nil
}
