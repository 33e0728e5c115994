package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ambulance-dispatch/core/model"
)

func TestNearestHospital(t *testing.T) {
	g := buildGraph(t, []model.NodeID{"Z"},
		edge{"P", "H1", 2},
		edge{"P", "H2", 2},
		edge{"P", "H3", 1.5},
		edge{"H3", "X", 0},
	)
	h, cost, err := NearestHospital(g, "P", []model.NodeID{"H2", "H1"})
	require.NoError(t, err)
	assert.Equal(t, model.NodeID("H1"), h)
	assert.Equal(t, 2.0, cost)

	h, _, err = NearestHospital(g, "P", []model.NodeID{"H1", "H3"})
	require.NoError(t, err)
	assert.Equal(t, model.NodeID("H3"), h)

	_, _, err = NearestHospital(g, "Z", []model.NodeID{"H1"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssignStations(t *testing.T) {
	g := buildGraph(t, []model.NodeID{"H3"},
		edge{"H1", "S1", 4},
		edge{"H1", "S2", 1},
		edge{"H2", "S1", 3},
	)
	got := AssignStations(g, []model.NodeID{"H1", "H2", "H3"}, []model.NodeID{"S1", "S2"})
	assert.Equal(t, model.StationAssignment{
		"H1": {Station: "S2", TravelTime: 1},
		"H2": {Station: "S1", TravelTime: 3},
	}, got)
}
