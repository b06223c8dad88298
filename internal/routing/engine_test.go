package routing

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

func TestEngineRouteBeforePublish(t *testing.T) {
	e := NewEngine()
	assert.Nil(t, e.Current())

	_, ok, err := e.Route(nodeA, domain.ByNode(nodeB))
	assert.ErrorIs(t, err, ErrNoSnapshot)
	assert.False(t, ok)
}

func TestEnginePublishAndRoute(t *testing.T) {
	g := triangleGraph(t)
	snap, err := NewSnapshot(g, nil, nodeList(triangleNodes()), []domain.NodeTag{
		{NodeID: nodeB, Tag: "quiet"},
		{NodeID: nodeB, Tag: "wifi"},
	})
	require.NoError(t, err)

	e := NewEngine()
	assert.Equal(t, uint64(1), e.Publish(snap))
	assert.Same(t, snap, e.Current())
	assert.False(t, snap.LoadedAt.IsZero())
	assert.Equal(t, []string{"quiet", "wifi"}, snap.Tags[nodeB])
	assert.Equal(t, nodeA, snap.Nodes[0].ID)

	r, ok, err := e.Route(nodeA, domain.ByNode(nodeC))
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 7.0, r.Dist, 1e-9)

	r, ok, err = e.Route(nodeA, domain.ByGroup("library"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []domain.NodeID{nodeA, nodeB}, r.Points)

	_, ok, err = e.Route(nodeA, domain.ByGroup("nonexistent"))
	require.NoError(t, err)
	assert.False(t, ok)

	next, err := NewSnapshot(g, nil, nodeList(triangleNodes()), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), e.Publish(next))
	assert.Equal(t, uint64(2), e.Current().Version)
}

func TestSnapshotPrefersTable(t *testing.T) {
	g := triangleGraph(t)
	table, err := BuildTable(context.Background(), g, g.NodeIDs(), []domain.NodeID{nodeB, nodeC}, 1)
	require.NoError(t, err)

	snap, err := NewSnapshot(g, table, nodeList(triangleNodes()), nil)
	require.NoError(t, err)
	assert.Same(t, table, snap.Provider())

	// A is a path node with no column, so the table cannot route to it even
	// though the graph could.
	_, ok := snap.Route(nodeC, domain.ByNode(nodeA))
	assert.False(t, ok)

	r, ok := snap.Route(nodeC, domain.ByNode(nodeB))
	require.True(t, ok)
	assert.InDelta(t, 4.0, r.Dist, 1e-9)

	graphOnly, err := NewSnapshot(g, nil, nodeList(triangleNodes()), nil)
	require.NoError(t, err)
	_, ok = graphOnly.Route(nodeC, domain.ByNode(nodeA))
	assert.True(t, ok)
}

func TestNewSnapshotValidation(t *testing.T) {
	_, err := NewSnapshot(nil, nil, nil, nil)
	assert.Error(t, err)

	_, err = NewSnapshot(triangleGraph(t), nil, nodeList(triangleNodes()), []domain.NodeTag{{NodeID: 99, Tag: "ghost"}})
	assert.Error(t, err)
}

func TestEngineConcurrentReadersDuringPublish(t *testing.T) {
	g := triangleGraph(t)
	e := NewEngine()
	first, err := NewSnapshot(g, nil, nodeList(triangleNodes()), nil)
	require.NoError(t, err)
	e.Publish(first)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				r, ok, err := e.Route(nodeA, domain.ByNode(nodeC))
				if err != nil || !ok || r.Dist != 7 {
					t.Errorf("unexpected route %+v ok=%v err=%v", r, ok, err)
					return
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		next, err := NewSnapshot(g, nil, nodeList(triangleNodes()), nil)
		require.NoError(t, err)
		e.Publish(next)
	}
	wg.Wait()

	assert.Equal(t, uint64(51), e.Current().Version)
}
