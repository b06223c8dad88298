package routing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

func TestNearestInGroupPicksClosestMember(t *testing.T) {
	g := triangleGraph(t)
	groups := NewGroupIndex(nodeList(triangleNodes()))

	members, ok := groups.Members("library")
	require.True(t, ok)
	assert.Equal(t, []domain.NodeID{nodeB, nodeC}, members)
	assert.Equal(t, []string{"dining", "library"}, groups.Labels())

	r, ok := NearestInGroup(g, groups, nodeA, "library")
	require.True(t, ok)
	assert.Equal(t, []domain.NodeID{nodeA, nodeB}, r.Points)
	assert.InDelta(t, 3.0, r.Dist, 1e-9)
}

func TestNearestInGroupUnknownLabel(t *testing.T) {
	g := triangleGraph(t)
	groups := NewGroupIndex(nodeList(triangleNodes()))

	_, ok := NearestInGroup(g, groups, nodeA, "nonexistent")
	assert.False(t, ok)
}

func TestNearestInGroupAllMembersUnreachable(t *testing.T) {
	g := triangleGraph(t)
	groups := NewGroupIndex(nodeList(triangleNodes()))

	_, ok := NearestInGroup(g, groups, nodeA, "dining")
	assert.False(t, ok)
}

func TestNearestInGroupMemberIsSource(t *testing.T) {
	g := triangleGraph(t)
	groups := NewGroupIndex(nodeList(triangleNodes()))

	r, ok := NearestInGroup(g, groups, nodeC, "library")
	require.True(t, ok)
	assert.Empty(t, r.Points)
	assert.Zero(t, r.Dist)
}

type fixedProvider map[[2]domain.NodeID]domain.Route

func (p fixedProvider) ShortestNodePath(source, dest domain.NodeID) (domain.Route, bool) {
	r, ok := p[[2]domain.NodeID{source, dest}]
	return r, ok
}

func TestNearestInGroupTieGoesToLowestID(t *testing.T) {
	nodes := []domain.Node{
		{ID: 9, Group: "parking"},
		{ID: 4, Group: "parking"},
		{ID: 6, Group: "parking"},
	}
	p := fixedProvider{
		{0, 9}: {Points: []domain.NodeID{0, 9}, Dist: 5},
		{0, 4}: {Points: []domain.NodeID{0, 4}, Dist: 5},
		{0, 6}: {Points: []domain.NodeID{0, 6}, Dist: 8},
	}

	r, ok := NearestInGroup(p, NewGroupIndex(nodes), 0, "parking")
	require.True(t, ok)
	assert.Equal(t, []domain.NodeID{0, 4}, r.Points)
}

func TestNearestInGroupIsMinimalOverTableAndGraph(t *testing.T) {
	g, ds := campus(t, 13)
	groups := NewGroupIndex(ds.Nodes)
	table, err := BuildTable(context.Background(), g, g.NodeIDs(), g.NodeIDs(), 2)
	require.NoError(t, err)

	for _, provider := range []PathProvider{g, table} {
		for _, label := range groups.Labels() {
			members, _ := groups.Members(label)
			for _, src := range g.NodeIDs() {
				best, ok := NearestInGroup(provider, groups, src, label)
				for _, m := range members {
					r, reach := provider.ShortestNodePath(src, m)
					if !reach {
						continue
					}
					require.True(t, ok, "member %d of %s is reachable from %d", m, label, src)
					assert.LessOrEqual(t, best.Dist, r.Dist)
				}
			}
		}
	}
}
