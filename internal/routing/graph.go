package routing

import (
	"fmt"
	"math"
	"sort"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

// Neighbor is one outgoing half of an undirected edge.
type Neighbor struct {
	ID     domain.NodeID
	Weight float64
}

// Graph is an immutable undirected graph weighted by the Euclidean distance
// between node coordinates. It is safe for concurrent readers.
type Graph struct {
	nodes map[domain.NodeID]domain.Node
	adj   map[domain.NodeID][]Neighbor
	ids   []domain.NodeID
	edges int
}

type edgeKey struct {
	lo, hi domain.NodeID
}

// Build resolves every edge row against nodes, weights it, and stores it in
// both directions. Any row naming an unknown node fails the whole build.
func Build(nodes map[domain.NodeID]domain.Node, rows []domain.EdgeRow) (*Graph, error) {
	g := &Graph{
		nodes: make(map[domain.NodeID]domain.Node, len(nodes)),
		adj:   make(map[domain.NodeID][]Neighbor, len(nodes)),
		ids:   make([]domain.NodeID, 0, len(nodes)),
	}

	for id, n := range nodes {
		if !finite(n.X) || !finite(n.Y) {
			return nil, fmt.Errorf("%w: node %d at (%v, %v)", ErrInvalidCoordinate, id, n.X, n.Y)
		}
		n.ID = id
		g.nodes[id] = n
		g.ids = append(g.ids, id)
	}
	sort.Slice(g.ids, func(i, j int) bool { return g.ids[i] < g.ids[j] })

	seen := make(map[edgeKey]struct{}, len(rows))
	for _, row := range rows {
		src, ok := g.nodes[row.Source]
		if !ok {
			return nil, &EndpointError{Edge: row, Missing: row.Source}
		}
		dst, ok := g.nodes[row.Dest]
		if !ok {
			return nil, &EndpointError{Edge: row, Missing: row.Dest}
		}
		// Self loops never shorten a path.
		if row.Source == row.Dest {
			continue
		}

		key := edgeKey{lo: row.Source, hi: row.Dest}
		if key.lo > key.hi {
			key.lo, key.hi = key.hi, key.lo
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		w := Distance(src, dst)
		g.adj[row.Source] = append(g.adj[row.Source], Neighbor{ID: row.Dest, Weight: w})
		g.adj[row.Dest] = append(g.adj[row.Dest], Neighbor{ID: row.Source, Weight: w})
		g.edges++
	}

	for id := range g.adj {
		list := g.adj[id]
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}

	return g, nil
}

// Distance is the straight-line distance between two nodes.
func Distance(a, b domain.Node) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Neighbors returns the nodes adjacent to id, ordered by id. The slice is
// shared and must not be modified.
func (g *Graph) Neighbors(id domain.NodeID) []Neighbor {
	return g.adj[id]
}

// Node returns the node with the given id.
func (g *Graph) Node(id domain.NodeID) (domain.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether id is part of the graph.
func (g *Graph) HasNode(id domain.NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// NodeIDs returns every node id in ascending order.
func (g *Graph) NodeIDs() []domain.NodeID {
	return append([]domain.NodeID(nil), g.ids...)
}

// Len is the number of nodes.
func (g *Graph) Len() int {
	return len(g.ids)
}

// EdgeCount is the number of distinct undirected edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// ShortestNodePath runs the solver on demand.
func (g *Graph) ShortestNodePath(source, dest domain.NodeID) (domain.Route, bool) {
	return ShortestPath(g, source, dest)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
