package scenarios

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/ambulance-dispatch/core/dispatch"
	"github.com/kilianp07/ambulance-dispatch/core/model"
	"github.com/kilianp07/ambulance-dispatch/infra/logger"
	"github.com/kilianp07/ambulance-dispatch/infra/metrics"
	"github.com/kilianp07/ambulance-dispatch/infra/mqtt"
	"github.com/kilianp07/ambulance-dispatch/infra/roadnet"
)

const runID = "qa"

func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	dispatch.ResetMetrics(reg)
	t.Cleanup(func() { dispatch.ResetMetrics(nil) })
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	pub := mqtt.NewMockPublisher()
	for _, id := range sc.FailVehicles {
		pub.FailIDs[id] = true
	}

	graph := roadnet.NewGraph()
	if err := sc.City.Populate(graph); err != nil {
		t.Fatalf("graph: %v", err)
	}
	eng, err := dispatch.NewEngine(sc.City.Inputs(graph), dispatch.Config{MaxTicks: sc.MaxTicks, RunID: runID}, logger.NopLogger{})
	if err == nil {
		eng.SetMetrics(sink)
		eng.SetNotifier(dispatch.NewOrderNotifier(pub, runID, 0))
		err = eng.Run(context.Background())
	}
	if !checkError(t, sc, err) || eng == nil {
		return
	}

	rep := eng.Report()
	if rep.Dispatched != sc.Expected.Dispatched {
		t.Errorf("scenario %s expected %d dispatched, got %d", sc.Name, sc.Expected.Dispatched, rep.Dispatched)
	}
	if got := callIDs(rep.Backlog); !equalInts(got, sc.Expected.Backlog) {
		t.Errorf("scenario %s expected backlog %v, got %v", sc.Name, sc.Expected.Backlog, got)
	}
	var rejected []model.EmergencyCall
	for _, r := range rep.Rejected {
		rejected = append(rejected, r.Call)
	}
	if got := callIDs(rejected); !equalInts(got, sc.Expected.Rejected) {
		t.Errorf("scenario %s expected rejected %v, got %v", sc.Name, sc.Expected.Rejected, got)
	}
	if sc.Expected.Requeues != nil {
		if got := gathered(t, reg, "dispatch_backlog_requeues_total"); int(got) != *sc.Expected.Requeues {
			t.Errorf("scenario %s expected %d requeues, got %v", sc.Name, *sc.Expected.Requeues, got)
		}
	}
	if sc.Expected.Orders != nil && len(pub.Sent()) != *sc.Expected.Orders {
		t.Errorf("scenario %s expected %d orders, got %d", sc.Name, *sc.Expected.Orders, len(pub.Sent()))
	}
	checkLog(t, sc, rep.Log)
}

func checkError(t *testing.T, sc *Scenario, err error) bool {
	t.Helper()
	if sc.Expected.Error == "" {
		if err != nil {
			t.Errorf("scenario %s: unexpected error: %v", sc.Name, err)
			return false
		}
		return true
	}
	if want := errorsByName[sc.Expected.Error]; !errors.Is(err, want) {
		t.Errorf("scenario %s expected error %v, got %v", sc.Name, want, err)
		return false
	}
	return !errors.Is(err, dispatch.ErrUnknownHospitalStation) &&
		!errors.Is(err, dispatch.ErrInvalidFleet) &&
		!errors.Is(err, dispatch.ErrInvalidStations)
}

func checkLog(t *testing.T, sc *Scenario, log []model.DispatchRecord) {
	t.Helper()
	if sc.Expected.Log == nil {
		return
	}
	if len(log) != len(sc.Expected.Log) {
		t.Errorf("scenario %s expected %d log entries, got %d", sc.Name, len(sc.Expected.Log), len(log))
		return
	}
	for i, want := range sc.Expected.Log {
		got := log[i]
		if got.Tick != want.Tick || got.VehicleID != want.VehicleID || got.CallID != want.CallID ||
			got.CostToPatient != want.CostToPatient || got.AvailableAt != want.AvailableAt ||
			(want.Hospital != "" && got.Hospital != want.Hospital) {
			t.Errorf("scenario %s log %d: expected %+v, got %+v", sc.Name, i, want, got)
		}
	}
}

// gathered returns the value of an unlabelled counter or gauge of reg.
func gathered(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name || len(mf.GetMetric()) == 0 {
			continue
		}
		m := mf.GetMetric()[0]
		if c := m.GetCounter(); c != nil {
			return c.GetValue()
		}
		return m.GetGauge().GetValue()
	}
	return 0
}

func callIDs(calls []model.EmergencyCall) []int {
	out := make([]int, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.ID)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
