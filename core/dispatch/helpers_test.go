package dispatch

import (
	"testing"

	"github.com/kilianp07/ambulance-dispatch/core/model"
	"github.com/kilianp07/ambulance-dispatch/core/roadnet"
	infraroad "github.com/kilianp07/ambulance-dispatch/infra/roadnet"
)

type edge struct {
	a, b model.NodeID
	w    float64
}

func buildGraph(t *testing.T, nodes []model.NodeID, edges ...edge) *infraroad.Graph {
	t.Helper()
	g := infraroad.NewGraph()
	for _, n := range nodes {
		g.AddNode(n)
	}
	for _, e := range edges {
		if err := g.AddEdge(e.a, e.b, e.w); err != nil {
			t.Fatalf("add edge %s-%s: %v", e.a, e.b, err)
		}
	}
	return g
}

// countingNetwork records the queries issued against the wrapped network.
type countingNetwork struct {
	roadnet.Network
	queries map[[2]model.NodeID]int
}

func newCountingNetwork(n roadnet.Network) *countingNetwork {
	return &countingNetwork{Network: n, queries: map[[2]model.NodeID]int{}}
}

func (c *countingNetwork) ShortestPath(s, t model.NodeID) (float64, []model.NodeID, error) {
	c.queries[[2]model.NodeID{s, t}]++
	return c.Network.ShortestPath(s, t)
}
