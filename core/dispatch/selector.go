package dispatch

import (
	"errors"
	"fmt"

	"github.com/kilianp07/ambulance-dispatch/core/logger"
	"github.com/kilianp07/ambulance-dispatch/core/model"
	"github.com/kilianp07/ambulance-dispatch/core/roadnet"
)

// Selection is the vehicle chosen for a call.
type Selection struct {
	VehicleID      model.VehicleID
	CostToPatient  float64
	CostToHospital float64
}

// TotalCost is the value minimized by the selector.
func (s Selection) TotalCost() float64 { return s.CostToPatient + s.CostToHospital }

// Selector chooses the best Available vehicle for a call.
type Selector struct {
	network roadnet.Network
	log     logger.Logger
}

// NewSelector creates a selector querying network.
func NewSelector(network roadnet.Network, log logger.Logger) *Selector {
	return &Selector{network: network, log: log}
}

// Select returns the vehicle of available minimizing the cost to the patient
// plus the patient to hospital cost. The latter is computed once per call.
// Vehicles with no path to the patient are skipped and ties go to the lowest
// vehicle identifier.
func (s *Selector) Select(patient, hospital model.NodeID, available []model.Vehicle) (Selection, error) {
	if len(available) == 0 {
		return Selection{}, ErrNoAmbulanceAvailable
	}
	routeQueries.Inc()
	toHospital, _, err := s.network.ShortestPath(patient, hospital)
	if err != nil {
		s.log.Debugf("patient %s cannot reach hospital %s: %v", patient, hospital, err)
		return Selection{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var (
		best  Selection
		found bool
	)
	for _, v := range available {
		routeQueries.Inc()
		cost, _, err := s.network.ShortestPath(v.Location, patient)
		if err != nil {
			if !errors.Is(err, roadnet.ErrNoPath) {
				s.log.Warnf("vehicle %d: route query failed: %v", v.ID, err)
			}
			continue
		}
		cand := Selection{VehicleID: v.ID, CostToPatient: cost, CostToHospital: toHospital}
		if !found || better(cand, best) {
			best, found = cand, true
		}
	}
	if !found {
		return Selection{}, ErrNotFound
	}
	return best, nil
}

func better(a, b Selection) bool {
	if a.TotalCost() != b.TotalCost() {
		return a.TotalCost() < b.TotalCost()
	}
	return a.VehicleID < b.VehicleID
}
