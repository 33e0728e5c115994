package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/ambulance-dispatch/core/metrics"
)

type lineServer struct {
	mu     sync.Mutex
	bodies []string
	srv    *httptest.Server
}

func newLineServer(t *testing.T) *lineServer {
	ls := &lineServer{}
	ls.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		ls.mu.Lock()
		ls.bodies = append(ls.bodies, strings.TrimSpace(string(b)))
		ls.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(ls.srv.Close)
	return ls
}

func (ls *lineServer) got() []string {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return append([]string(nil), ls.bodies...)
}

func line(p *write.Point) string {
	return strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
}

func TestInfluxSink_RecordDispatch(t *testing.T) {
	ls := newLineServer(t)
	sink := NewInfluxSink(InfluxConfig{URL: ls.srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.DispatchEvent{
		RunID: "r1", Tick: 4, VehicleID: 2, CallID: 9,
		Patient: "P", Hospital: "H", CostToPatient: 3.14159, Wait: 1, Time: now,
	}
	if err := sink.RecordDispatch([]coremetrics.DispatchEvent{ev}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("dispatch_event").
		AddTag("run_id", "r1").
		AddTag("vehicle_id", "2").
		AddTag("hospital", "H").
		AddField("call_id", 9).
		AddField("tick", 4).
		AddField("cost_to_patient", 3.142).
		AddField("wait_ticks", 1).
		SetTime(now)
	if b := ls.got(); len(b) != 1 || b[0] != line(p) {
		t.Errorf("unexpected bodies: %#v", b)
	}
}

func TestInfluxSink_RecordTickQueuedRejected(t *testing.T) {
	ls := newLineServer(t)
	sink := NewInfluxSink(InfluxConfig{URL: ls.srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	if err := sink.RecordTick(coremetrics.TickSnapshot{RunID: "r", Tick: 1, Available: 2, Unavailable: 1, Backlog: 3, Ingested: 5, Dispatched: 2, Time: now}); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if err := sink.RecordQueued(coremetrics.QueuedCallEvent{RunID: "r", Tick: 1, CallID: 7, Requeue: true, Reason: "no ambulance available", Time: now}); err != nil {
		t.Fatalf("queued: %v", err)
	}
	if err := sink.RecordRejectedCall(coremetrics.RejectedCallEvent{RunID: "r", CallID: 8, Reason: "malformed call", Time: now}); err != nil {
		t.Fatalf("rejected: %v", err)
	}
	exp := []string{
		line(write.NewPointWithMeasurement("tick_snapshot").
			AddTag("run_id", "r").
			AddField("tick", 1).
			AddField("available", 2).
			AddField("unavailable", 1).
			AddField("backlog", 3).
			AddField("ingested", 5).
			AddField("dispatched", 2).
			SetTime(now)),
		line(write.NewPointWithMeasurement("call_queued").
			AddTag("run_id", "r").
			AddTag("requeue", "true").
			AddField("call_id", 7).
			AddField("tick", 1).
			AddField("reason", "no ambulance available").
			SetTime(now)),
		line(write.NewPointWithMeasurement("call_rejected").
			AddTag("run_id", "r").
			AddField("call_id", 8).
			AddField("reason", "malformed call").
			SetTime(now)),
	}
	b := ls.got()
	if len(b) != len(exp) {
		t.Fatalf("expected %d writes, got %#v", len(exp), b)
	}
	for i := range exp {
		if b[i] != exp[i] {
			t.Errorf("write %d: got %s want %s", i, b[i], exp[i])
		}
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
