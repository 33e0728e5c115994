package dispatch

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsRegistration(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)
	// touch metrics so they are exported
	dispatchAttempts.WithLabelValues("dispatched").Inc()
	backlogRequeues.Inc()
	backlogLength.Set(1)
	availableFleet.Set(2)
	costToPatient.Observe(3)
	routeQueries.Inc()
	rejectedCalls.Inc()
	orderAcks.WithLabelValues("acked").Inc()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[*mf.Name] = true
	}
	expected := []string{
		"dispatch_attempts_total",
		"dispatch_backlog_requeues_total",
		"dispatch_backlog_length",
		"dispatch_available_vehicles",
		"dispatch_cost_to_patient",
		"dispatch_route_queries_total",
		"dispatch_rejected_calls_total",
		"dispatch_order_acks_total",
	}
	for _, n := range expected {
		if !names[n] {
			t.Errorf("metric %s not registered", n)
		}
	}
}
