// Package roadnet implements core/roadnet.Network on top of gonum graphs.
package roadnet

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/kilianp07/ambulance-dispatch/core/model"
	coreroadnet "github.com/kilianp07/ambulance-dispatch/core/roadnet"
)

// Graph is an undirected weighted road network. Shortest-path trees are
// computed once per source node and cached until the graph is modified.
type Graph struct {
	mu    sync.RWMutex
	g     *simple.WeightedUndirectedGraph
	ids   map[model.NodeID]int64
	names map[int64]model.NodeID
	trees map[int64]path.Shortest
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		g:     simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		ids:   make(map[model.NodeID]int64),
		names: make(map[int64]model.NodeID),
		trees: make(map[int64]path.Shortest),
	}
}

// AddNode registers id. Adding an existing node is a no-op.
func (g *Graph) AddNode(id model.NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.node(id)
}

// node returns the gonum node for id, creating it when needed. Callers hold
// the write lock.
func (g *Graph) node(id model.NodeID) simple.Node {
	if nid, ok := g.ids[id]; ok {
		return simple.Node(nid)
	}
	n := simple.Node(g.g.NewNode().ID())
	g.g.AddNode(n)
	g.ids[id] = n.ID()
	g.names[n.ID()] = id
	g.trees = make(map[int64]path.Shortest)
	return n
}

// AddEdge adds an undirected road between a and b. When the road already
// exists the lower weight is kept.
func (g *Graph) AddEdge(a, b model.NodeID, weight float64) error {
	if a == "" || b == "" {
		return fmt.Errorf("edge %q-%q: empty node id", a, b)
	}
	if a == b {
		return fmt.Errorf("edge %q-%q: self loop", a, b)
	}
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("edge %q-%q: invalid weight %v", a, b, weight)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	u, v := g.node(a), g.node(b)
	if e := g.g.WeightedEdge(u.ID(), v.ID()); e != nil && e.Weight() <= weight {
		return nil
	}
	g.g.SetWeightedEdge(g.g.NewWeightedEdge(u, v, weight))
	g.trees = make(map[int64]path.Shortest)
	return nil
}

// HasNode implements roadnet.Network.
func (g *Graph) HasNode(id model.NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.ids[id]
	return ok
}

// Nodes returns every node id in ascending order.
func (g *Graph) Nodes() []model.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]model.NodeID, 0, len(g.ids))
	for id := range g.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ShortestPath implements roadnet.Network.
func (g *Graph) ShortestPath(source, target model.NodeID) (float64, []model.NodeID, error) {
	tree, tid, err := g.tree(source, target)
	if err != nil {
		return 0, nil, err
	}
	nodes, weight := tree.To(tid)
	if len(nodes) == 0 || math.IsInf(weight, 1) {
		return 0, nil, fmt.Errorf("%s -> %s: %w", source, target, coreroadnet.ErrNoPath)
	}
	g.mu.RLock()
	out := make([]model.NodeID, len(nodes))
	for i, n := range nodes {
		out[i] = g.names[n.ID()]
	}
	g.mu.RUnlock()
	return weight, out, nil
}

// tree returns the cached shortest-path tree rooted at source, computing it
// on first use.
func (g *Graph) tree(source, target model.NodeID) (path.Shortest, int64, error) {
	g.mu.RLock()
	sid, sok := g.ids[source]
	tid, tok := g.ids[target]
	tree, cached := g.trees[sid]
	g.mu.RUnlock()
	if !sok {
		return path.Shortest{}, 0, fmt.Errorf("source %s: %w", source, coreroadnet.ErrUnknownNode)
	}
	if !tok {
		return path.Shortest{}, 0, fmt.Errorf("target %s: %w", target, coreroadnet.ErrUnknownNode)
	}
	if cached {
		return tree, tid, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if tree, ok := g.trees[sid]; ok {
		return tree, tid, nil
	}
	tree = path.DijkstraFrom(simple.Node(sid), g.g)
	g.trees[sid] = tree
	return tree, tid, nil
}
