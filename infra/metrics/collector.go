package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/ambulance-dispatch/core/events"
	"github.com/kilianp07/ambulance-dispatch/core/logger"
	coremetrics "github.com/kilianp07/ambulance-dispatch/core/metrics"
	infralogger "github.com/kilianp07/ambulance-dispatch/infra/logger"
	"github.com/kilianp07/ambulance-dispatch/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records backlog
// activity on sinks implementing coremetrics.QueueRecorder. It stops when the
// context is canceled or the bus is closed; the returned channel is closed
// once the collector has exited. Sink errors are reported on log, which may
// be nil.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, runID string, log logger.Logger) <-chan struct{} {
	if log == nil {
		log = infralogger.NopLogger{}
	}
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.QueueRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				e, isQueued := ev.(events.QueuedEvent)
				if !isQueued {
					continue
				}
				reason := ""
				if e.Reason != nil {
					reason = e.Reason.Error()
				}
				err := rec.RecordQueued(coremetrics.QueuedCallEvent{
					RunID:   runID,
					Tick:    e.Tick,
					CallID:  e.Call.ID,
					Requeue: e.Requeue,
					Reason:  reason,
					Time:    time.Now(),
				})
				if err != nil {
					log.Errorf("queue metrics error for call %d: %v", e.Call.ID, err)
				}
			}
		}
	}()
	return done
}
