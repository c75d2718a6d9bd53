// Package metrics defines the recorders that observe optimizer runs. Sinks
// such as PromSink, InfluxSink or the MQTT schedule publisher implement
// Recorder and optionally FailureRecorder and RunRecorder; NewSink returns a
// MultiSink when several are configured.
package metrics
