package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

// Generator produces synthetic campus maps: a jittered grid of walkway
// (path) nodes with named destinations hanging off it.
type Generator struct {
	cfg  Config
	rand *rand.Rand
	tags []string
}

// New returns a configured Generator instance. Zero-valued dimensions fall
// back to DefaultConfig; probabilities are taken as given.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.GridColumns <= 0 {
		cfg.GridColumns = def.GridColumns
	}
	if cfg.GridRows <= 0 {
		cfg.GridRows = def.GridRows
	}
	if cfg.Spacing <= 0 {
		cfg.Spacing = def.Spacing
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}
	if cfg.Destinations < 0 {
		cfg.Destinations = 0
	}
	if len(cfg.Groups) == 0 {
		cfg.Groups = def.Groups
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
		tags: []string{"accessible", "restrooms", "wifi", "vending", "open-late", "quiet", "printing"},
	}
}

// Generate builds the dataset. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (domain.Dataset, error) {
	cols, rows := g.cfg.GridColumns, g.cfg.GridRows
	gridSize := cols * rows

	var ds domain.Dataset
	ds.Nodes = make([]domain.Node, 0, gridSize+g.cfg.Destinations)

	gridID := func(c, r int) domain.NodeID {
		return domain.NodeID(r*cols + c)
	}

	for r := 0; r < rows; r++ {
		if err := ctx.Err(); err != nil {
			return domain.Dataset{}, err
		}
		for c := 0; c < cols; c++ {
			ds.Nodes = append(ds.Nodes, domain.Node{
				ID:     gridID(c, r),
				X:      float64(c)*g.cfg.Spacing + g.jitter(),
				Y:      float64(r)*g.cfg.Spacing + g.jitter(),
				Name:   fmt.Sprintf("Walkway %d-%d", c, r),
				IsPath: true,
			})

			if c+1 < cols && !g.chance(g.cfg.DropEdgeChance) {
				ds.Edges = append(ds.Edges, domain.EdgeRow{Source: gridID(c, r), Dest: gridID(c+1, r)})
			}
			if r+1 < rows && !g.chance(g.cfg.DropEdgeChance) {
				ds.Edges = append(ds.Edges, domain.EdgeRow{Source: gridID(c, r), Dest: gridID(c, r+1)})
			}
			if c+1 < cols && r+1 < rows && g.chance(g.cfg.DiagonalChance) {
				ds.Edges = append(ds.Edges, domain.EdgeRow{Source: gridID(c, r), Dest: gridID(c+1, r+1)})
			}
		}
	}

	for i := 0; i < g.cfg.Destinations; i++ {
		if err := ctx.Err(); err != nil {
			return domain.Dataset{}, err
		}

		id := domain.NodeID(gridSize + i)
		anchor := ds.Nodes[g.rand.Intn(gridSize)]
		group := g.cfg.Groups[g.rand.Intn(len(g.cfg.Groups))]

		ds.Nodes = append(ds.Nodes, domain.Node{
			ID:    id,
			X:     anchor.X + g.offset(),
			Y:     anchor.Y + g.offset(),
			Name:  fmt.Sprintf("%s %d", group, i+1),
			Group: group,
		})
		// Store half the doorways in the opposite direction; the graph
		// symmetrizes them anyway.
		if g.rand.Intn(2) == 0 {
			ds.Edges = append(ds.Edges, domain.EdgeRow{Source: anchor.ID, Dest: id})
		} else {
			ds.Edges = append(ds.Edges, domain.EdgeRow{Source: id, Dest: anchor.ID})
		}

		if g.chance(g.cfg.TagChance) {
			ds.Tags = append(ds.Tags, domain.NodeTag{NodeID: id, Tag: g.tags[g.rand.Intn(len(g.tags))]})
		}
	}

	return ds, nil
}

func (g *Generator) chance(p float64) bool {
	return p > 0 && g.rand.Float64() < p
}

func (g *Generator) jitter() float64 {
	if g.cfg.Jitter == 0 {
		return 0
	}
	return (g.rand.Float64()*2 - 1) * g.cfg.Jitter
}

// offset places a destination within half a grid cell of its anchor.
func (g *Generator) offset() float64 {
	return (g.rand.Float64()*2 - 1) * g.cfg.Spacing / 2
}
