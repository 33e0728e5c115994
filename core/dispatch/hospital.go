package dispatch

import (
	"fmt"
	"sort"

	"github.com/kilianp07/ambulance-dispatch/core/model"
	"github.com/kilianp07/ambulance-dispatch/core/roadnet"
)

// NearestHospital returns the hospital with the cheapest path from patient.
// Ties go to the lowest node identifier. ErrNotFound is returned when no
// hospital is reachable.
func NearestHospital(network roadnet.Network, patient model.NodeID, hospitals []model.NodeID) (model.NodeID, float64, error) {
	node, cost, ok := nearest(network, patient, hospitals)
	if !ok {
		return "", 0, fmt.Errorf("patient %s: %w", patient, ErrNotFound)
	}
	return node, cost, nil
}

// AssignStations maps every hospital to its nearest reachable station, with
// the return travel time measured from the hospital to the station. Hospitals
// that reach no station are left out.
func AssignStations(network roadnet.Network, hospitals, stations []model.NodeID) model.StationAssignment {
	out := make(model.StationAssignment, len(hospitals))
	for _, h := range hospitals {
		st, cost, ok := nearest(network, h, stations)
		if !ok {
			continue
		}
		out[h] = model.StationAssignmentEntry{Station: st, TravelTime: cost}
	}
	return out
}

func nearest(network roadnet.Network, from model.NodeID, targets []model.NodeID) (model.NodeID, float64, bool) {
	sorted := append([]model.NodeID(nil), targets...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	var (
		best     model.NodeID
		bestCost float64
		found    bool
	)
	for _, t := range sorted {
		cost, _, err := network.ShortestPath(from, t)
		if err != nil {
			continue
		}
		if !found || cost < bestCost {
			best, bestCost, found = t, cost, true
		}
	}
	return best, bestCost, found
}
