package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/hems/core/logger"
	coremetrics "github.com/kilianp07/hems/core/metrics"
	infralogger "github.com/kilianp07/hems/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket receiving schedules.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes hourly schedules and day costs to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      infralogger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.Recorder {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordDay writes one schedule point per reported hour and a summary point
// for the day.
func (s *InfluxSink) RecordDay(ev coremetrics.DayEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r := ev.Result
	points := make([]*write.Point, 0, len(r.Timestamps)+1)
	for h, ts := range r.Timestamps {
		points = append(points, write.NewPointWithMeasurement("dispatch_schedule").
			AddTag("scenario", ev.Scenario).
			AddTag("run_id", ev.RunID).
			AddField("import_kw", round3(r.ImportKW[h])).
			AddField("export_kw", round3(r.ExportKW[h])).
			AddField("battery_kw", round3(r.BatteryKW[h])).
			AddField("pv_kw", round3(r.PVKW[h])).
			AddField("pv_available_kw", round3(r.PVAvailableKW[h])).
			AddField("load_kw", round3(r.UncontrolledLoadKW[h])).
			AddField("battery_kwh", round3(r.BatteryKWh[h])).
			AddField("import_price", r.ImportPrice[h]).
			AddField("export_price", r.ExportPrice[h]).
			SetTime(ts))
	}
	points = append(points, write.NewPointWithMeasurement("day_cost").
		AddTag("scenario", ev.Scenario).
		AddTag("run_id", ev.RunID).
		AddField("total", round3(r.Cost.Total)).
		AddField("only_uncontrolled_load", round3(r.Cost.OnlyUncontrolledLoad)).
		AddField("curtailed_pv_kwh", round3(r.CurtailedPVKWh)).
		AddField("battery_kwh_at_eod", round3(r.BatteryKWhAtEoD)).
		AddField("solve_ms", ev.SolveDuration.Milliseconds()).
		SetTime(r.Day))
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordFailure writes a failed day.
func (s *InfluxSink) RecordFailure(ev coremetrics.FailureEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("day_failure").
		AddTag("scenario", ev.Scenario).
		AddTag("run_id", ev.RunID).
		AddTag("kind", ev.Kind).
		AddField("error", ev.Err).
		SetTime(ev.Day)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun writes the summary of a completed run.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sum := ev.Summary
	p := write.NewPointWithMeasurement("run_summary").
		AddTag("scenario", ev.Scenario).
		AddTag("run_id", ev.RunID).
		AddField("days", sum.Days).
		AddField("total", round3(sum.Total)).
		AddField("only_uncontrolled_load", round3(sum.OnlyUncontrolledLoad)).
		AddField("savings", round3(sum.Savings())).
		AddField("curtailed_pv_kwh", round3(sum.CurtailedPVKWh)).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
