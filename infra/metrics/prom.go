package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/ambulance-dispatch/core/metrics"
)

// PromSink records dispatch activity in Prometheus metrics.
type PromSink struct {
	dispatches *prometheus.CounterVec
	wait       prometheus.Histogram
	fleet      *prometheus.GaugeVec
	backlog    prometheus.Gauge
	queued     *prometheus.CounterVec
	rejected   prometheus.Counter
}

// NewPromSink registers dispatch metrics on the default Prometheus registerer.
// The Prometheus server should be started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ambulance_dispatches_total",
			Help: "Total number of ambulances committed to calls",
		}, []string{"vehicle_id"}),
		wait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ambulance_call_wait_ticks",
			Help:    "Ticks between call arrival and dispatch",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		fleet: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ambulance_fleet_vehicles",
			Help: "Number of vehicles per status at the end of the last tick",
		}, []string{"status"}),
		backlog: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ambulance_backlog_calls",
			Help: "Number of calls waiting for an ambulance",
		}),
		queued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ambulance_calls_queued_total",
			Help: "Calls put in the backlog, split by first insertion or requeue",
		}, []string{"requeue"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ambulance_calls_rejected_total",
			Help: "Malformed calls rejected at ingestion",
		}),
	}
	var err error
	if s.dispatches, err = register(reg, s.dispatches); err != nil {
		return nil, err
	}
	if s.wait, err = register(reg, s.wait); err != nil {
		return nil, err
	}
	if s.fleet, err = register(reg, s.fleet); err != nil {
		return nil, err
	}
	if s.backlog, err = register(reg, s.backlog); err != nil {
		return nil, err
	}
	if s.queued, err = register(reg, s.queued); err != nil {
		return nil, err
	}
	if s.rejected, err = register(reg, s.rejected); err != nil {
		return nil, err
	}
	return s, nil
}

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

// RecordDispatch counts dispatches per vehicle and observes the call wait.
func (s *PromSink) RecordDispatch(evs []coremetrics.DispatchEvent) error {
	for _, e := range evs {
		s.dispatches.WithLabelValues(strconv.Itoa(int(e.VehicleID))).Inc()
		s.wait.Observe(float64(e.Wait))
	}
	return nil
}

// RecordTick sets the fleet and backlog gauges.
func (s *PromSink) RecordTick(snap coremetrics.TickSnapshot) error {
	s.fleet.WithLabelValues("available").Set(float64(snap.Available))
	s.fleet.WithLabelValues("unavailable").Set(float64(snap.Unavailable))
	s.backlog.Set(float64(snap.Backlog))
	return nil
}

// RecordQueued counts backlog insertions.
func (s *PromSink) RecordQueued(ev coremetrics.QueuedCallEvent) error {
	s.queued.WithLabelValues(strconv.FormatBool(ev.Requeue)).Inc()
	return nil
}

// RecordRejectedCall counts rejected calls.
func (s *PromSink) RecordRejectedCall(coremetrics.RejectedCallEvent) error {
	s.rejected.Inc()
	return nil
}
