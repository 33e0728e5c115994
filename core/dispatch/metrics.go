package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	dispatchAttempts *prometheus.CounterVec
	backlogRequeues  prometheus.Counter
	backlogLength    prometheus.Gauge
	availableFleet   prometheus.Gauge
	costToPatient    prometheus.Histogram
	routeQueries     prometheus.Counter
	rejectedCalls    prometheus.Counter
	orderAcks        *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Counter, prometheus.Gauge, prometheus.Gauge, prometheus.Histogram, prometheus.Counter, prometheus.Counter, *prometheus.CounterVec) {
	att := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_attempts_total",
			Help: "Dispatch attempts by outcome",
		},
		[]string{"outcome"},
	)
	req := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_backlog_requeues_total",
			Help: "Number of backlog entries re-inserted after a failed retry",
		},
	)
	bl := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_backlog_length",
			Help: "Number of calls waiting in the backlog",
		},
	)
	av := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_available_vehicles",
			Help: "Number of Available vehicles at the end of the last tick",
		},
	)
	cost := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_cost_to_patient",
			Help:    "Shortest-path cost from the selected vehicle to the patient",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
	rq := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_route_queries_total",
			Help: "Number of shortest-path queries issued by the selector",
		},
	)
	rej := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_rejected_calls_total",
			Help: "Number of malformed calls rejected at ingestion",
		},
	)
	acks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_order_acks_total",
			Help: "Dispatch orders sent to crews by acknowledgment result",
		},
		[]string{"result"},
	)
	return att, req, bl, av, cost, rq, rej, acks
}

func init() {
	dispatchAttempts, backlogRequeues, backlogLength, availableFleet, costToPatient, routeQueries, rejectedCalls, orderAcks = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(dispatchAttempts, backlogRequeues, backlogLength, availableFleet, costToPatient, routeQueries, rejectedCalls, orderAcks)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	dispatchAttempts, backlogRequeues, backlogLength, availableFleet, costToPatient, routeQueries, rejectedCalls, orderAcks = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
