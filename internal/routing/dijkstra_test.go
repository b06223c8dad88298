package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

func TestShortestPathThroughIntermediate(t *testing.T) {
	g := triangleGraph(t)

	r, ok := ShortestPath(g, nodeA, nodeC)
	require.True(t, ok)
	assert.Equal(t, []domain.NodeID{nodeA, nodeB, nodeC}, r.Points)
	assert.InDelta(t, 7.0, r.Dist, 1e-9)

	back, ok := ShortestPath(g, nodeC, nodeA)
	require.True(t, ok)
	assert.Equal(t, []domain.NodeID{nodeC, nodeB, nodeA}, back.Points)
	assert.InDelta(t, r.Dist, back.Dist, 1e-9)
}

func TestShortestPathIsolatedNode(t *testing.T) {
	g := triangleGraph(t)

	_, ok := ShortestPath(g, nodeA, nodeD)
	assert.False(t, ok)
	_, ok = ShortestPath(g, nodeD, nodeA)
	assert.False(t, ok)
}

func TestShortestPathSameNodeHasEmptyPoints(t *testing.T) {
	g := triangleGraph(t)

	for _, id := range g.NodeIDs() {
		r, ok := ShortestPath(g, id, id)
		require.True(t, ok)
		assert.NotNil(t, r.Points)
		assert.Empty(t, r.Points)
		assert.Zero(t, r.Dist)
	}
}

func TestShortestPathUnknownEndpoints(t *testing.T) {
	g := triangleGraph(t)

	_, ok := ShortestPath(g, nodeA, 77)
	assert.False(t, ok)
	_, ok = ShortestPath(g, 77, nodeA)
	assert.False(t, ok)
	_, ok = ShortestPath(nil, nodeA, nodeB)
	assert.False(t, ok)
}

func TestShortestPathPrefersLighterDetour(t *testing.T) {
	// Through 4 is over 40 long; the shallow arc through 1 and 2 is about 10.3.
	nodes := map[domain.NodeID]domain.Node{
		0: {X: 0, Y: 0},
		1: {X: 3, Y: 1},
		2: {X: 7, Y: 1},
		3: {X: 10, Y: 0},
		4: {X: 5, Y: 20},
	}
	rows := []domain.EdgeRow{
		{Source: 0, Dest: 4}, {Source: 4, Dest: 3},
		{Source: 0, Dest: 1}, {Source: 1, Dest: 2}, {Source: 2, Dest: 3},
	}
	g, err := Build(nodes, rows)
	require.NoError(t, err)

	r, ok := g.ShortestNodePath(0, 3)
	require.True(t, ok)
	assert.Equal(t, []domain.NodeID{0, 1, 2, 3}, r.Points)
	assertRouteWeights(t, g, r)
}

func TestShortestPathProperties(t *testing.T) {
	for _, seed := range []int64{3, 11, 29} {
		g, _ := campus(t, seed)
		ids := g.NodeIDs()

		for _, a := range ids {
			for _, b := range ids {
				ab, okAB := ShortestPath(g, a, b)
				ba, okBA := ShortestPath(g, b, a)
				require.Equal(t, okAB, okBA, "reachability must be symmetric for %d,%d", a, b)
				if !okAB {
					continue
				}
				assert.InDelta(t, ab.Dist, ba.Dist, 1e-9)
				if a == b {
					assert.Empty(t, ab.Points)
					continue
				}
				require.NotEmpty(t, ab.Points)
				assert.Equal(t, a, ab.Points[0])
				assert.Equal(t, b, ab.Points[len(ab.Points)-1])
				assertRouteWeights(t, g, ab)
			}
		}
	}
}

// assertRouteWeights checks that r.Dist is the sum of its hops and that every
// hop is an edge of g.
func assertRouteWeights(t *testing.T, g *Graph, r domain.Route) {
	t.Helper()
	total := 0.0
	for i := 1; i < len(r.Points); i++ {
		from, to := r.Points[i-1], r.Points[i]
		adjacent := false
		for _, n := range g.Neighbors(from) {
			if n.ID == to {
				adjacent = true
				break
			}
		}
		require.True(t, adjacent, "%d-%d is not an edge", from, to)

		a, _ := g.Node(from)
		b, _ := g.Node(to)
		total += Distance(a, b)
	}
	assert.InDelta(t, total, r.Dist, 1e-9)
}
