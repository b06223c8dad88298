package routing

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

// Snapshot is one fully built, read-only routing state. Graph or Table may be
// nil, but not both; when a Table is present it serves all lookups.
type Snapshot struct {
	Graph    *Graph
	Table    *Table
	Groups   GroupIndex
	Nodes    []domain.Node // ascending by id
	Tags     map[domain.NodeID][]string
	Version  uint64
	LoadedAt time.Time
}

// NewSnapshot assembles a snapshot. Tags naming an unknown node are rejected.
func NewSnapshot(g *Graph, t *Table, nodes []domain.Node, tags []domain.NodeTag) (*Snapshot, error) {
	if g == nil && t == nil {
		return nil, fmt.Errorf("routing: snapshot needs a graph or a route table")
	}

	sorted := append([]domain.Node(nil), nodes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	known := make(map[domain.NodeID]struct{}, len(sorted))
	for _, n := range sorted {
		known[n.ID] = struct{}{}
	}
	tagMap := make(map[domain.NodeID][]string)
	for _, tag := range tags {
		if _, ok := known[tag.NodeID]; !ok {
			return nil, fmt.Errorf("routing: tag %q references unknown node %d", tag.Tag, tag.NodeID)
		}
		tagMap[tag.NodeID] = append(tagMap[tag.NodeID], tag.Tag)
	}

	return &Snapshot{
		Graph:  g,
		Table:  t,
		Groups: NewGroupIndex(sorted),
		Nodes:  sorted,
		Tags:   tagMap,
	}, nil
}

// Provider returns the table when one is loaded, otherwise the live graph.
func (s *Snapshot) Provider() PathProvider {
	if s.Table != nil {
		return s.Table
	}
	return s.Graph
}

// Route answers either query shape through the snapshot's provider.
func (s *Snapshot) Route(source domain.NodeID, dest domain.Destination) (domain.Route, bool) {
	p := s.Provider()
	switch dest.Kind {
	case domain.DestinationNode:
		return p.ShortestNodePath(source, dest.Node)
	case domain.DestinationGroup:
		return NearestInGroup(p, s.Groups, source, dest.Group)
	default:
		return domain.Route{}, false
	}
}

// Engine publishes snapshots. Readers always see either the previous or the
// next snapshot in full; a snapshot is never modified after Publish.
type Engine struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// NewEngine returns an engine with nothing published.
func NewEngine() *Engine {
	return &Engine{}
}

// Publish stamps s with the next version and makes it current.
func (e *Engine) Publish(s *Snapshot) uint64 {
	v := e.version.Add(1)
	s.Version = v
	if s.LoadedAt.IsZero() {
		s.LoadedAt = time.Now().UTC()
	}
	e.current.Store(s)
	return v
}

// Current returns the published snapshot, or nil before the first Publish.
func (e *Engine) Current() *Snapshot {
	return e.current.Load()
}

// Route resolves a query against the current snapshot.
func (e *Engine) Route(source domain.NodeID, dest domain.Destination) (domain.Route, bool, error) {
	s := e.Current()
	if s == nil {
		return domain.Route{}, false, ErrNoSnapshot
	}
	r, ok := s.Route(source, dest)
	return r, ok, nil
}
