// Package infra contains technical adapters: LP solver backends, input
// ingestion, MQTT publishing, metrics exporters and error reporting. These
// packages should depend only on the interfaces defined in the core packages.
package infra
