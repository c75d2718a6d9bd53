// Package mqtt publishes optimized schedules to an MQTT broker so that
// home automation can follow them.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/hems/core/factory"
	"github.com/kilianp07/hems/core/logger"
	"github.com/kilianp07/hems/core/metrics"
	infralogger "github.com/kilianp07/hems/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

func init() {
	_ = metrics.RegisterSink("mqtt", func(conf map[string]any) (metrics.Recorder, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSchedulePublisher(c)
	})
}

// HourMessage is one hour of a published schedule.
type HourMessage struct {
	Timestamp   time.Time `json:"timestamp"`
	ImportKW    float64   `json:"import_kw"`
	ExportKW    float64   `json:"export_kw"`
	BatteryKW   float64   `json:"battery_kw"`
	PVKW        float64   `json:"pv_kw"`
	BatteryKWh  float64   `json:"battery_kwh"`
	ImportPrice float64   `json:"import_price"`
	ExportPrice float64   `json:"export_price"`
}

// ScheduleMessage is the payload published for each solved day.
type ScheduleMessage struct {
	Scenario        string        `json:"scenario"`
	RunID           string        `json:"run_id"`
	Day             string        `json:"day"`
	CostTotal       float64       `json:"cost_total"`
	CostBaseline    float64       `json:"cost_only_uncontrolled_load"`
	BatteryKWhAtEoD float64       `json:"battery_kwh_at_eod"`
	Hours           []HourMessage `json:"hours"`
}

// SchedulePublisher publishes each solved day as a retained JSON message on
// <prefix>/<scenario>/schedule/<day>.
type SchedulePublisher struct {
	cli     pahoClient
	cfg     Config
	log     logger.Logger
	backoff time.Duration
}

// NewSchedulePublisher connects to the broker.
func NewSchedulePublisher(cfg Config) (*SchedulePublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := infralogger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &SchedulePublisher{
		cli:     c,
		cfg:     cfg,
		log:     log,
		backoff: time.Duration(cfg.BackoffMS) * time.Millisecond,
	}, nil
}

func (p *SchedulePublisher) topic(scenario string, parts ...string) string {
	if scenario == "" {
		scenario = "default"
	}
	return strings.Join(append([]string{p.cfg.TopicPrefix, scenario}, parts...), "/")
}

// RecordDay publishes the schedule of a solved day.
func (p *SchedulePublisher) RecordDay(ev metrics.DayEvent) error {
	r := ev.Result
	msg := ScheduleMessage{
		Scenario:        ev.Scenario,
		RunID:           ev.RunID,
		Day:             r.Name(),
		CostTotal:       r.Cost.Total,
		CostBaseline:    r.Cost.OnlyUncontrolledLoad,
		BatteryKWhAtEoD: r.BatteryKWhAtEoD,
		Hours:           make([]HourMessage, len(r.Timestamps)),
	}
	for h, ts := range r.Timestamps {
		msg.Hours[h] = HourMessage{
			Timestamp:   ts,
			ImportKW:    r.ImportKW[h],
			ExportKW:    r.ExportKW[h],
			BatteryKW:   r.BatteryKW[h],
			PVKW:        r.PVKW[h],
			BatteryKWh:  r.BatteryKWh[h],
			ImportPrice: r.ImportPrice[h],
			ExportPrice: r.ExportPrice[h],
		}
	}
	return p.publish(p.topic(ev.Scenario, "schedule", r.Name()), !p.cfg.NoRetain, msg)
}

// RecordFailure publishes the failed day on <prefix>/<scenario>/failure.
func (p *SchedulePublisher) RecordFailure(ev metrics.FailureEvent) error {
	return p.publish(p.topic(ev.Scenario, "failure"), false, map[string]any{
		"run_id": ev.RunID,
		"day":    ev.Day.Format(time.DateOnly),
		"kind":   ev.Kind,
		"error":  ev.Err,
	})
}

// RecordRun publishes the run summary on <prefix>/<scenario>/summary.
func (p *SchedulePublisher) RecordRun(ev metrics.RunEvent) error {
	return p.publish(p.topic(ev.Scenario, "summary"), !p.cfg.NoRetain, map[string]any{
		"run_id":  ev.RunID,
		"summary": ev.Summary,
		"savings": ev.Summary.Savings(),
	})
}

func (p *SchedulePublisher) publish(topic string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.QoS, retained, payload)
		token.Wait()
		if publishErr = token.Error(); publishErr == nil {
			p.log.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.log.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt < p.cfg.MaxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Close gracefully closes the MQTT connection.
func (p *SchedulePublisher) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}
