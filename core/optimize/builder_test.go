package optimize

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/hems/core/lpmodel"
	"github.com/kilianp07/hems/core/model"
	"github.com/kilianp07/hems/core/solver"
)

var day0 = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

func window(n int, f func(h int, r *model.HourlyRecord)) model.DayWindow {
	recs := make([]model.HourlyRecord, n)
	for h := range recs {
		recs[h] = model.HourlyRecord{Timestamp: day0.Add(time.Duration(h) * time.Hour)}
		if f != nil {
			f(h, &recs[h])
		}
	}
	return model.DayWindow{Day: day0, Records: recs}
}

var testSpec = model.SystemSpec{
	BatteryKW: 5, BatteryKWh: 10, BatteryKWhAtSoD: 3, PVKW: 4, MaxImportKW: 11, MaxExportKW: 7,
}

func mustBuilder(t *testing.T, cfg Config) *Builder {
	t.Helper()
	b, err := NewBuilder(cfg)
	require.NoError(t, err)
	return b
}

func TestNewBuilder_Defaults(t *testing.T) {
	b := mustBuilder(t, Config{})
	assert.Equal(t, model.HorizonHours, b.Config().HorizonHours)
	assert.True(t, b.Config().CurtailmentEnabled())

	_, err := NewBuilder(Config{HorizonHours: 12})
	assert.ErrorContains(t, err, "horizon_hours")
	_, err = NewBuilder(Config{HorizonHours: 72})
	assert.Error(t, err)
}

func TestBuild_Structure(t *testing.T) {
	w := window(48, func(h int, r *model.HourlyRecord) {
		r.ConsumptionKWh = 0.5
		r.ImportPrice = 0.3
		r.ExportPrice = 0.1
		r.PVNormalized = 0.25
	})
	m, err := mustBuilder(t, Config{}).Build(w, testSpec)
	require.NoError(t, err)

	assert.Equal(t, "dispatch_2023-06-01", m.Name)
	assert.Equal(t, lpmodel.Minimize, m.Sense)
	assert.Len(t, m.Vars, 5*48)
	// 48 balance rows, one anchor and 47 continuity rows.
	assert.Len(t, m.Constraints, 48+1+47)
	assert.Len(t, m.Objective, 2*48)

	bounds := func(name string) (float64, float64) {
		v, ok := m.Var(name)
		require.True(t, ok, name)
		return v.Lower, v.Upper
	}
	lo, hi := bounds("import_h7")
	assert.Equal(t, [2]float64{0, 11}, [2]float64{lo, hi})
	lo, hi = bounds("export_h7")
	assert.Equal(t, [2]float64{0, 7}, [2]float64{lo, hi})
	lo, hi = bounds("battery_h0")
	assert.Equal(t, [2]float64{-5, 5}, [2]float64{lo, hi})
	lo, hi = bounds("pv_h47")
	assert.Equal(t, [2]float64{0, 1}, [2]float64{lo, hi})
	lo, hi = bounds("soc_h0")
	assert.Equal(t, 0.0, lo)
	assert.True(t, math.IsInf(hi, 1))
	lo, hi = bounds("soc_h5")
	assert.Equal(t, [2]float64{0, 10}, [2]float64{lo, hi})

	text := m.String()
	assert.Contains(t, text, "balance_h0: import_h0 - export_h0 + battery_h0 + pv_h0 = 0.5")
	assert.Contains(t, text, "anchor_soc: soc_h0 = 3")
	assert.Contains(t, text, "continuity_h1: soc_h0 - battery_h1 - soc_h1 = 0")
}

func TestBuild_Objective(t *testing.T) {
	w := window(24, func(h int, r *model.HourlyRecord) {
		r.ImportPrice = float64(h)
		r.ExportPrice = 0.5
	})
	m, err := mustBuilder(t, Config{HorizonHours: 24}).Build(w, testSpec)
	require.NoError(t, err)

	values := map[string]float64{"import_h3": 2, "export_h4": 1}
	// import_h0 has a zero price and is dropped from the objective.
	assert.Len(t, m.Objective, 47)
	assert.InDelta(t, 3*2-0.5*1, lpmodel.Eval(m.Objective, values), 1e-12)
}

func TestBuild_HorizonLimits(t *testing.T) {
	b := mustBuilder(t, Config{HorizonHours: 24})
	m, err := b.Build(window(48, nil), testSpec)
	require.NoError(t, err)
	assert.Len(t, m.Vars, 5*24)

	m, err = mustBuilder(t, Config{}).Build(window(30, nil), testSpec)
	require.NoError(t, err)
	assert.Len(t, m.Vars, 5*30)

	_, err = b.Build(window(23, nil), testSpec)
	var ih *InsufficientHorizonError
	require.True(t, errors.As(err, &ih))
	assert.Equal(t, 23, ih.Hours)
	assert.Equal(t, 24, ih.Required)
	assert.Contains(t, err.Error(), "2023-06-01")
}

func TestBuild_Options(t *testing.T) {
	off := false
	w := window(24, func(_ int, r *model.HourlyRecord) { r.PVNormalized = 0.5 })
	m, err := mustBuilder(t, Config{HorizonHours: 24, Curtailment: &off, IdleFirstHour: true}).Build(w, testSpec)
	require.NoError(t, err)

	pv, _ := m.Var("pv_h3")
	assert.Equal(t, 2.0, pv.Lower)
	assert.Equal(t, 2.0, pv.Upper)
	bat, _ := m.Var("battery_h0")
	assert.Equal(t, 0.0, bat.Lower)
	assert.Equal(t, 0.0, bat.Upper)
	bat, _ = m.Var("battery_h1")
	assert.Equal(t, -5.0, bat.Lower)
}

func TestBuild_NegativePVClamped(t *testing.T) {
	w := window(24, func(_ int, r *model.HourlyRecord) { r.PVNormalized = -0.01 })
	m, err := mustBuilder(t, Config{HorizonHours: 24}).Build(w, testSpec)
	require.NoError(t, err)
	pv, _ := m.Var("pv_h12")
	assert.Equal(t, 0.0, pv.Upper)
}

func TestBuild_InvalidInput(t *testing.T) {
	b := mustBuilder(t, Config{HorizonHours: 24})
	bad := testSpec
	bad.BatteryKWhAtSoD = 11
	_, err := b.Build(window(24, nil), bad)
	assert.ErrorContains(t, err, "exceeds battery_kwh")

	nan := window(24, func(h int, r *model.HourlyRecord) {
		if h == 5 {
			r.ConsumptionKWh = math.NaN()
		}
	})
	_, err = b.Build(nan, testSpec)
	assert.Error(t, err)
}

func solutionFor(n int, f func(role string, h int) float64) solver.Solution {
	values := make(map[string]float64)
	for h := 0; h < n; h++ {
		for _, role := range []string{RoleImport, RoleExport, RoleBattery, RolePV, RoleSoC} {
			values[lpmodel.VarName(role, h)] = f(role, h)
		}
	}
	return solver.Solution{Status: solver.StatusOptimal, Values: values, Raw: "raw"}
}

func TestExtract(t *testing.T) {
	w := window(48, func(h int, r *model.HourlyRecord) {
		r.ConsumptionKWh = 1
		r.ImportPrice = 0.2
		r.ExportPrice = 0.05
		r.PVNormalized = 0.5
	})
	sol := solutionFor(48, func(role string, h int) float64 {
		switch role {
		case RoleImport:
			return 1
		case RoleExport:
			return 0.5
		case RolePV:
			return 1.5 // of 2 available
		case RoleSoC:
			return 3 + 1e-8
		case RoleBattery:
			return -1e-12
		}
		return 0
	})

	res, err := Extract(w, testSpec, sol, "model text")
	require.NoError(t, err)
	assert.Len(t, res.ImportKW, 24)
	assert.Equal(t, 3.0, res.BatteryKWh[0])
	assert.Equal(t, 3.0, res.BatteryKWhAtSoD)
	assert.InDelta(t, 3.0, res.BatteryKWhAtEoD, 1e-7)
	assert.Equal(t, 0.0, res.BatteryKW[5])
	assert.Equal(t, 2.0, res.PVAvailableKW[0])
	assert.InDelta(t, 12.0, res.CurtailedPVKWh, 1e-9)
	assert.InDelta(t, 24*(0.2-0.5*0.05), res.Cost.Total, 1e-9)
	assert.InDelta(t, 24*0.2, res.Cost.OnlyUncontrolledLoad, 1e-9)
	assert.Equal(t, "model text", res.Model)
	assert.Equal(t, "raw", res.SolverOutput)
	assert.Equal(t, w.Records[23].Timestamp, res.Timestamps[23])
	assert.Equal(t, testSpec, res.Spec)
}

func TestExtract_Failures(t *testing.T) {
	w := window(24, nil)
	sol := solutionFor(24, func(string, int) float64 { return 0 })
	delete(sol.Values, "pv_h17")
	_, err := Extract(w, testSpec, sol, "")
	assert.ErrorContains(t, err, "pv_h17")

	sol = solutionFor(24, func(string, int) float64 { return 0 })
	_, err = Extract(w, testSpec, sol, "")
	assert.ErrorContains(t, err, "deviates from start-of-day")
}
