package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ambulance-dispatch/core/model"
	"github.com/kilianp07/ambulance-dispatch/infra/logger"
)

func selectorGraph(t *testing.T) *countingNetwork {
	g := buildGraph(t, []model.NodeID{"X"},
		edge{"S1", "P", 3},
		edge{"S2", "P", 3},
		edge{"S3", "P", 5},
		edge{"P", "H", 4},
	)
	return newCountingNetwork(g)
}

func available(locs map[model.VehicleID]model.NodeID) []model.Vehicle {
	var out []model.Vehicle
	for id, n := range locs {
		out = append(out, model.Vehicle{ID: id, Status: model.Available, Location: n, Station: n})
	}
	return out
}

func TestSelector_TieBreaksOnLowestID(t *testing.T) {
	net := selectorGraph(t)
	s := NewSelector(net, logger.NopLogger{})
	sel, err := s.Select("P", "H", available(map[model.VehicleID]model.NodeID{7: "S2", 4: "S1", 2: "S3"}))
	require.NoError(t, err)
	assert.Equal(t, model.VehicleID(4), sel.VehicleID)
	assert.Equal(t, 3.0, sel.CostToPatient)
	assert.Equal(t, 4.0, sel.CostToHospital)
	assert.Equal(t, 7.0, sel.TotalCost())
}

func TestSelector_HospitalLegQueriedOnce(t *testing.T) {
	net := selectorGraph(t)
	s := NewSelector(net, logger.NopLogger{})
	_, err := s.Select("P", "H", available(map[model.VehicleID]model.NodeID{1: "S1", 2: "S2", 3: "S3"}))
	require.NoError(t, err)
	assert.Equal(t, 1, net.queries[[2]model.NodeID{"P", "H"}])
	assert.Equal(t, 1, net.queries[[2]model.NodeID{"S3", "P"}])
}

func TestSelector_SkipsUnreachable(t *testing.T) {
	net := selectorGraph(t)
	s := NewSelector(net, logger.NopLogger{})
	sel, err := s.Select("P", "H", available(map[model.VehicleID]model.NodeID{1: "X", 2: "S3"}))
	require.NoError(t, err)
	assert.Equal(t, model.VehicleID(2), sel.VehicleID)
	assert.Equal(t, 5.0, sel.CostToPatient)
}

func TestSelector_Errors(t *testing.T) {
	net := selectorGraph(t)
	s := NewSelector(net, logger.NopLogger{})

	_, err := s.Select("P", "H", nil)
	if !errors.Is(err, ErrNoAmbulanceAvailable) {
		t.Fatalf("expected ErrNoAmbulanceAvailable, got %v", err)
	}
	_, err = s.Select("P", "H", available(map[model.VehicleID]model.NodeID{1: "X"}))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = s.Select("X", "H", available(map[model.VehicleID]model.NodeID{1: "S1"}))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unreachable hospital, got %v", err)
	}
}
