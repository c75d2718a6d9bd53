package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/hems/core/metrics"
)

// PromSink exposes optimizer progress and costs as Prometheus metrics.
type PromSink struct {
	days      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	failures  *prometheus.CounterVec
	cost      *prometheus.GaugeVec
	curtailed *prometheus.GaugeVec
	soc       *prometheus.GaugeVec
}

// NewPromSink registers the optimizer metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var err error
	s := &PromSink{}
	if s.days, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hems_days_solved_total",
		Help: "Number of days solved",
	}, []string{"scenario"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hems_day_solve_duration_seconds",
		Help:    "Time to build, solve and extract one day",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
	}, []string{"scenario"})); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hems_day_failures_total",
		Help: "Number of days that could not be solved",
	}, []string{"scenario", "kind"})); err != nil {
		return nil, err
	}
	if s.cost, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hems_cost",
		Help: "Accumulated cost of the solved days",
	}, []string{"scenario", "kind"})); err != nil {
		return nil, err
	}
	if s.curtailed, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hems_curtailed_pv_kwh",
		Help: "Accumulated curtailed PV energy",
	}, []string{"scenario"})); err != nil {
		return nil, err
	}
	if s.soc, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hems_battery_kwh_at_eod",
		Help: "Battery charge at the end of the last solved day",
	}, []string{"scenario"})); err != nil {
		return nil, err
	}
	return s, nil
}

// register adds c to reg, returning the collector already registered under
// the same descriptor if there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordDay accumulates the costs of a solved day.
func (s *PromSink) RecordDay(ev coremetrics.DayEvent) error {
	r := ev.Result
	s.days.WithLabelValues(ev.Scenario).Inc()
	s.duration.WithLabelValues(ev.Scenario).Observe(ev.SolveDuration.Seconds())
	s.cost.WithLabelValues(ev.Scenario, "total").Add(r.Cost.Total)
	s.cost.WithLabelValues(ev.Scenario, "only_uncontrolled_load").Add(r.Cost.OnlyUncontrolledLoad)
	s.curtailed.WithLabelValues(ev.Scenario).Add(r.CurtailedPVKWh)
	s.soc.WithLabelValues(ev.Scenario).Set(r.BatteryKWhAtEoD)
	return nil
}

// RecordFailure counts a failed day by failure kind.
func (s *PromSink) RecordFailure(ev coremetrics.FailureEvent) error {
	s.failures.WithLabelValues(ev.Scenario, ev.Kind).Inc()
	return nil
}
