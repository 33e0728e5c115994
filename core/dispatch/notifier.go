package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/ambulance-dispatch/core/model"
	"github.com/kilianp07/ambulance-dispatch/core/mqtt"
)

// DefaultAckTimeout bounds the wait for a crew acknowledgment when the
// notifier is created with a zero timeout.
const DefaultAckTimeout = 5 * time.Second

// Notifier is told about every dispatch. Errors are logged by the engine and
// never alter the simulation.
type Notifier interface {
	NotifyDispatch(ctx context.Context, rec model.DispatchRecord) error
}

// OrderNotifier forwards dispatches as orders on an MQTT client and waits
// for the crew acknowledgment.
type OrderNotifier struct {
	client     mqtt.Client
	runID      string
	ackTimeout time.Duration
	now        func() time.Time
}

// NewOrderNotifier creates a notifier sending orders tagged with runID.
// If ackTimeout is zero, DefaultAckTimeout is used.
func NewOrderNotifier(client mqtt.Client, runID string, ackTimeout time.Duration) *OrderNotifier {
	if ackTimeout <= 0 {
		ackTimeout = DefaultAckTimeout
	}
	return &OrderNotifier{client: client, runID: runID, ackTimeout: ackTimeout, now: time.Now}
}

// NotifyDispatch sends the order and waits for its acknowledgment. Clients
// that do not track acks answer ErrUnknownOrder, which is not a failure.
func (n *OrderNotifier) NotifyDispatch(ctx context.Context, rec model.DispatchRecord) error {
	order := mqtt.OrderFromRecord(n.runID, rec)
	order.Timestamp = n.now().UnixMilli()
	id, err := n.client.SendOrder(ctx, order)
	if err != nil {
		orderAcks.WithLabelValues("send_failed").Inc()
		return err
	}
	ok, err := n.client.WaitForAck(id, n.ackTimeout)
	switch {
	case errors.Is(err, mqtt.ErrUnknownOrder):
		orderAcks.WithLabelValues("untracked").Inc()
		return nil
	case err != nil:
		orderAcks.WithLabelValues("timeout").Inc()
		return fmt.Errorf("vehicle %d call %d: %w", rec.VehicleID, rec.CallID, err)
	case !ok:
		orderAcks.WithLabelValues("nack").Inc()
		return fmt.Errorf("vehicle %d call %d: order %s not acknowledged", rec.VehicleID, rec.CallID, id)
	}
	orderAcks.WithLabelValues("acked").Inc()
	return nil
}
