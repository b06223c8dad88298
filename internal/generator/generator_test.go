package generator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

func TestGenerateShape(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridColumns, cfg.GridRows, cfg.Destinations = 4, 3, 5
	cfg.TagChance = 1

	ds, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Nodes, 17)
	assert.Len(t, ds.Tags, 5)

	for i, n := range ds.Nodes {
		assert.Equal(t, domain.NodeID(i), n.ID)
		if i < 12 {
			assert.True(t, n.IsPath, "node %d", i)
			assert.False(t, n.HasGroup(), "node %d", i)
		} else {
			assert.False(t, n.IsPath, "node %d", i)
			assert.Contains(t, cfg.Groups, n.Group)
		}
	}

	// Every destination hangs off exactly one walkway.
	doorways := make(map[domain.NodeID]int)
	for _, e := range ds.Edges {
		assert.NotEqual(t, e.Source, e.Dest)
		for _, id := range []domain.NodeID{e.Source, e.Dest} {
			if id >= 12 {
				doorways[id]++
			}
		}
	}
	for id := domain.NodeID(12); id < 17; id++ {
		assert.Equal(t, 1, doorways[id], "destination %d", id)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7

	a, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)
	b, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateFullGridWithoutDrops(t *testing.T) {
	cfg := Config{GridColumns: 3, GridRows: 2, Groups: []string{"lab"}, Seed: 1}

	ds, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Nodes, 6)
	// 2 rows of 2 horizontal plus 3 vertical.
	assert.Len(t, ds.Edges, 7)
	assert.Empty(t, ds.Tags)
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultConfig()).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "campus.json")
	ds := domain.Dataset{
		Nodes: []domain.Node{{ID: 0, Name: "Gate", IsPath: true}, {ID: 1, X: 1, Name: "Lab", Group: "lab"}},
		Edges: []domain.EdgeRow{{Source: 0, Dest: 1}},
	}
	require.NoError(t, WriteDataset(ds, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var back domain.Dataset
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, ds.Nodes, back.Nodes)
	assert.Equal(t, ds.Edges, back.Edges)
}
