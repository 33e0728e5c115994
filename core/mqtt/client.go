package mqtt

import (
	"context"
	"time"

	"github.com/kilianp07/ambulance-dispatch/core/model"
)

// Order is the dispatch order sent to an ambulance crew.
type Order struct {
	OrderID       string          `json:"order_id"`
	RunID         string          `json:"run_id,omitempty"`
	Tick          int             `json:"tick"`
	VehicleID     model.VehicleID `json:"vehicle_id"`
	CallID        int             `json:"call_id"`
	Patient       model.NodeID    `json:"patient_node"`
	Hospital      model.NodeID    `json:"hospital_node"`
	Station       model.NodeID    `json:"return_station"`
	CostToPatient float64         `json:"cost_to_patient"`
	AvailableAt   float64         `json:"available_at"`
	Timestamp     int64           `json:"timestamp"`
}

// OrderFromRecord builds an order for a dispatch log entry. OrderID and
// Timestamp are left for the client to fill.
func OrderFromRecord(runID string, rec model.DispatchRecord) Order {
	return Order{
		RunID:         runID,
		Tick:          rec.Tick,
		VehicleID:     rec.VehicleID,
		CallID:        rec.CallID,
		Patient:       rec.Patient,
		Hospital:      rec.Hospital,
		Station:       rec.Station,
		CostToPatient: rec.CostToPatient,
		AvailableAt:   rec.AvailableAt,
	}
}

// Client represents an MQTT client capable of sending dispatch orders and
// waiting for acknowledgments from crews.
type Client interface {
	// SendOrder publishes the order to the vehicle topic and returns the
	// order identifier used to track the acknowledgment.
	SendOrder(ctx context.Context, order Order) (orderID string, err error)

	// WaitForAck waits for an acknowledgment for the provided order
	// identifier or until the timeout expires.
	WaitForAck(orderID string, timeout time.Duration) (bool, error)
}
