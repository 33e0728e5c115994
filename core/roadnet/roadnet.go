// Package roadnet defines the road network contract consumed by the dispatch
// engine. Implementations live in infra/roadnet.
package roadnet

import (
	"errors"

	"github.com/kilianp07/ambulance-dispatch/core/model"
)

// ErrNoPath is returned when the target cannot be reached from the source.
var ErrNoPath = errors.New("no path")

// ErrUnknownNode is returned when a query references a node absent from the
// network.
var ErrUnknownNode = errors.New("unknown node")

// Network answers shortest-path queries over a weighted road graph.
//
// Implementations must be safe for concurrent readers and must not change
// their answers between calls unless the graph itself is modified.
type Network interface {
	// ShortestPath returns the minimum total edge weight from source to
	// target and the nodes along that path, source and target included.
	ShortestPath(source, target model.NodeID) (float64, []model.NodeID, error)
	// HasNode reports whether id is a node of the network.
	HasNode(id model.NodeID) bool
}
