package routing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
	"github.com/ExclusiveDisjunction/sse-back/internal/generator"
)

const (
	nodeA domain.NodeID = 0
	nodeB domain.NodeID = 1
	nodeC domain.NodeID = 2
	nodeD domain.NodeID = 3
)

// triangleNodes is A(0,0), B(3,0), C(3,4) plus an isolated D. B and C form
// the "library" group.
func triangleNodes() map[domain.NodeID]domain.Node {
	return map[domain.NodeID]domain.Node{
		nodeA: {ID: nodeA, X: 0, Y: 0, Name: "A", IsPath: true},
		nodeB: {ID: nodeB, X: 3, Y: 0, Name: "B", Group: "library"},
		nodeC: {ID: nodeC, X: 3, Y: 4, Name: "C", Group: "library"},
		nodeD: {ID: nodeD, X: 10, Y: 10, Name: "D", Group: "dining"},
	}
}

func triangleEdges() []domain.EdgeRow {
	return []domain.EdgeRow{
		{Source: nodeA, Dest: nodeB},
		{Source: nodeB, Dest: nodeC},
	}
}

func triangleGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := Build(triangleNodes(), triangleEdges())
	require.NoError(t, err)
	return g
}

func nodeList(m map[domain.NodeID]domain.Node) []domain.Node {
	out := make([]domain.Node, 0, len(m))
	for _, n := range m {
		out = append(out, n)
	}
	return out
}

// campus returns a generated graph with some dropped edges, so that a few
// pairs are unreachable.
func campus(t *testing.T, seed int64) (*Graph, domain.Dataset) {
	t.Helper()
	cfg := generator.DefaultConfig()
	cfg.GridColumns = 5
	cfg.GridRows = 4
	cfg.Destinations = 10
	cfg.DropEdgeChance = 0.2
	cfg.Seed = seed

	ds, err := generator.New(cfg).Generate(context.Background())
	require.NoError(t, err)

	g, err := Build(ds.NodeMap(), ds.Edges)
	require.NoError(t, err)
	return g, ds
}
