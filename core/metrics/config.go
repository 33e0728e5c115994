package metrics

import "github.com/kilianp07/ambulance-dispatch/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusAddr is the listen address of the /metrics endpoint when a
	// prometheus sink is configured and the service is kept running.
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr"`
}
