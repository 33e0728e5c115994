package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/ambulance-dispatch/core/model"
	coremqtt "github.com/kilianp07/ambulance-dispatch/core/mqtt"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// MockPublisher is an in-memory client used in tests and dry runs.
type MockPublisher struct {
	Orders  []coremqtt.Order
	FailIDs map[model.VehicleID]bool
	mu      sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailIDs: make(map[model.VehicleID]bool)}
}

// SendOrder records the order or returns an error if configured to fail for
// the vehicle.
func (m *MockPublisher) SendOrder(_ context.Context, order coremqtt.Order) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[order.VehicleID] {
		return "", fmt.Errorf("publish failed for vehicle %d", order.VehicleID)
	}
	if order.OrderID == "" {
		order.OrderID = fmt.Sprintf("order-%d-%d", order.VehicleID, order.CallID)
	}
	m.Orders = append(m.Orders, order)
	return order.OrderID, nil
}

// WaitForAck acknowledges every order that was recorded.
func (m *MockPublisher) WaitForAck(orderID string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.Orders {
		if o.OrderID == orderID {
			return true, nil
		}
	}
	return false, coremqtt.ErrUnknownOrder
}

// Sent returns a copy of the recorded orders.
func (m *MockPublisher) Sent() []coremqtt.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coremqtt.Order(nil), m.Orders...)
}
