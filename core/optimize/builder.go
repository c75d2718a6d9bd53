package optimize

import (
	"fmt"
	"math"

	"github.com/kilianp07/hems/core/lpmodel"
	"github.com/kilianp07/hems/core/model"
)

// Variable roles. Each role combined with an hour index names one LP column.
const (
	RoleImport  = "import"
	RoleExport  = "export"
	RoleBattery = "battery"
	RolePV      = "pv"
	RoleSoC     = "soc"
)

// Builder encodes one day of the dispatch problem as a linear program.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder for the given formulation.
func NewBuilder(cfg Config) (*Builder, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg}, nil
}

// Config returns the formulation settings in use.
func (b *Builder) Config() Config { return b.cfg }

// PVAvailable returns the PV power the installation can deliver in the
// record's hour. Negative normalized yields are treated as zero.
func PVAvailable(r model.HourlyRecord, spec model.SystemSpec) float64 {
	return math.Max(0, r.PVNormalized*spec.PVKW)
}

// Build returns the LP for window under spec. Hours past the horizon
// configured on the builder are ignored.
func (b *Builder) Build(w model.DayWindow, spec model.SystemSpec) (*lpmodel.Model, error) {
	if len(w.Records) < model.ReportHours {
		return nil, &InsufficientHorizonError{Day: w.Day, Hours: len(w.Records), Required: model.ReportHours}
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("day %s: %w", w.Name(), err)
	}
	hours := min(b.cfg.HorizonHours, len(w.Records))
	m := lpmodel.New("dispatch_"+w.Name(), lpmodel.Minimize)

	for h := 0; h < hours; h++ {
		r := w.Records[h]
		imp := lpmodel.VarName(RoleImport, h)
		exp := lpmodel.VarName(RoleExport, h)
		bat := lpmodel.VarName(RoleBattery, h)
		pv := lpmodel.VarName(RolePV, h)
		soc := lpmodel.VarName(RoleSoC, h)

		pvAvail := PVAvailable(r, spec)
		pvLo := 0.0
		if !b.cfg.CurtailmentEnabled() {
			pvLo = pvAvail
		}
		batLo, batHi := -spec.BatteryKW, spec.BatteryKW
		if h == 0 && b.cfg.IdleFirstHour {
			batLo, batHi = 0, 0
		}
		// soc(0) is fixed by the anchor constraint rather than by a bound.
		socLo, socHi := 0.0, spec.BatteryKWh
		if h == 0 {
			socHi = math.Inf(1)
		}

		for _, v := range []lpmodel.Var{
			{Name: imp, Lower: 0, Upper: spec.MaxImportKW},
			{Name: exp, Lower: 0, Upper: spec.MaxExportKW},
			{Name: bat, Lower: batLo, Upper: batHi},
			{Name: pv, Lower: pvLo, Upper: pvAvail},
			{Name: soc, Lower: socLo, Upper: socHi},
		} {
			if err := m.AddVar(v.Name, v.Lower, v.Upper); err != nil {
				return nil, err
			}
		}

		m.AddObjective(imp, r.ImportPrice)
		m.AddObjective(exp, -r.ExportPrice)

		m.AddConstraint(lpmodel.Constraint{
			Name:  lpmodel.VarName("balance", h),
			Terms: []lpmodel.Term{{Var: imp, Coef: 1}, {Var: exp, Coef: -1}, {Var: bat, Coef: 1}, {Var: pv, Coef: 1}},
			RHS:   r.ConsumptionKWh,
		})
		if h == 0 {
			m.AddConstraint(lpmodel.Constraint{
				Name:  "anchor_soc",
				Terms: []lpmodel.Term{{Var: soc, Coef: 1}},
				RHS:   spec.BatteryKWhAtSoD,
			})
			continue
		}
		m.AddConstraint(lpmodel.Constraint{
			Name: lpmodel.VarName("continuity", h),
			Terms: []lpmodel.Term{
				{Var: lpmodel.VarName(RoleSoC, h-1), Coef: 1},
				{Var: bat, Coef: -1},
				{Var: soc, Coef: -1},
			},
		})
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("day %s: %w", w.Name(), err)
	}
	return m, nil
}
