package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kilianp07/ambulance-dispatch/core/events"
	coremetrics "github.com/kilianp07/ambulance-dispatch/core/metrics"
	"github.com/kilianp07/ambulance-dispatch/core/model"
	infralogger "github.com/kilianp07/ambulance-dispatch/infra/logger"
	"github.com/kilianp07/ambulance-dispatch/internal/eventbus"
)

type queueRecorder struct {
	coremetrics.NopSink
	mu  sync.Mutex
	evs []coremetrics.QueuedCallEvent
	err error
}

func (q *queueRecorder) RecordQueued(ev coremetrics.QueuedCallEvent) error {
	q.mu.Lock()
	q.evs = append(q.evs, ev)
	q.mu.Unlock()
	return q.err
}

type errorLog struct {
	infralogger.NopLogger
	mu   sync.Mutex
	msgs []string
}

func (l *errorLog) Errorf(format string, args ...any) {
	l.mu.Lock()
	l.msgs = append(l.msgs, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func TestEventCollector(t *testing.T) {
	bus := eventbus.New()
	rec := &queueRecorder{}
	done := StartEventCollector(context.Background(), bus, rec, "run", nil)

	bus.Publish(events.PromotedEvent{Tick: 1})
	bus.Publish(events.QueuedEvent{Tick: 2, Call: model.EmergencyCall{ID: 4}, Reason: errors.New("busy"), Requeue: true})
	time.Sleep(20 * time.Millisecond)
	bus.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.evs) != 1 {
		t.Fatalf("expected 1 queued event, got %d", len(rec.evs))
	}
	ev := rec.evs[0]
	if ev.RunID != "run" || ev.CallID != 4 || !ev.Requeue || ev.Reason != "busy" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestEventCollector_NoRecorder(t *testing.T) {
	done := StartEventCollector(context.Background(), eventbus.New(), struct{ coremetrics.MetricsSink }{}, "run", nil)
	select {
	case <-done:
	default:
		t.Fatal("collector must exit immediately without a queue recorder")
	}
}

func TestEventCollector_LogsSinkErrors(t *testing.T) {
	bus := eventbus.New()
	rec := &queueRecorder{err: errors.New("influx down")}
	log := &errorLog{}
	done := StartEventCollector(context.Background(), bus, rec, "run", log)

	bus.Publish(events.QueuedEvent{Tick: 1, Call: model.EmergencyCall{ID: 9}})
	time.Sleep(20 * time.Millisecond)
	bus.Close()
	<-done

	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.msgs) != 1 || !strings.Contains(log.msgs[0], "influx down") {
		t.Fatalf("expected the sink error to be logged, got %v", log.msgs)
	}
}
