package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/ambulance-dispatch/core/metrics"
)

func TestPromSink_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	evs := []coremetrics.DispatchEvent{{VehicleID: 1, Wait: 0}, {VehicleID: 1, Wait: 3}, {VehicleID: 2, Wait: 1}}
	if err := sink.RecordDispatch(evs); err != nil {
		t.Fatalf("record error: %v", err)
	}
	expected := `
# HELP ambulance_dispatches_total Total number of ambulances committed to calls
# TYPE ambulance_dispatches_total counter
ambulance_dispatches_total{vehicle_id="1"} 2
ambulance_dispatches_total{vehicle_id="2"} 1
`
	if err := testutil.CollectAndCompare(sink.dispatches, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.wait); c != 1 {
		t.Errorf("wait histogram not recorded")
	}

	if err := sink.RecordTick(coremetrics.TickSnapshot{Available: 3, Unavailable: 1, Backlog: 4}); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if v := testutil.ToFloat64(sink.fleet.WithLabelValues("available")); v != 3 {
		t.Errorf("available gauge = %v", v)
	}
	if v := testutil.ToFloat64(sink.backlog); v != 4 {
		t.Errorf("backlog gauge = %v", v)
	}

	_ = sink.RecordQueued(coremetrics.QueuedCallEvent{Requeue: true})
	_ = sink.RecordQueued(coremetrics.QueuedCallEvent{})
	_ = sink.RecordRejectedCall(coremetrics.RejectedCallEvent{})
	if v := testutil.ToFloat64(sink.queued.WithLabelValues("true")); v != 1 {
		t.Errorf("requeue counter = %v", v)
	}
	if v := testutil.ToFloat64(sink.rejected); v != 1 {
		t.Errorf("rejected counter = %v", v)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	_ = first.RecordDispatch([]coremetrics.DispatchEvent{{VehicleID: 5}})
	if v := testutil.ToFloat64(second.dispatches.WithLabelValues("5")); v != 1 {
		t.Fatalf("collectors not shared, got %v", v)
	}
}

func TestFactory_Registered(t *testing.T) {
	types := strings.Join(coremetrics.SinkTypes(), ",")
	for _, name := range []string{"influx", "nop", "prometheus"} {
		if !strings.Contains(types, name) {
			t.Errorf("sink %s not registered: %s", name, types)
		}
	}
}
