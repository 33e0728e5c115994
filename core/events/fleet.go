package events

import "github.com/kilianp07/ambulance-dispatch/core/model"

// PromotedEvent is published when vehicles become available again.
type PromotedEvent struct {
	Tick     int
	Vehicles []model.Vehicle
}
