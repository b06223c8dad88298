package routing

import (
	"container/heap"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

// ShortestPath finds a minimum-weight path from source to dest with
// Dijkstra's algorithm. The boolean is false when no path exists or either
// endpoint is unknown.
//
// When source == dest the result is a zero-distance route with an empty
// Points slice, not a one-element path. Callers rely on this.
func ShortestPath(g *Graph, source, dest domain.NodeID) (domain.Route, bool) {
	if source == dest {
		return domain.Route{Points: []domain.NodeID{}, Dist: 0}, true
	}
	if g == nil || !g.HasNode(source) || !g.HasNode(dest) {
		return domain.Route{}, false
	}

	s := newSearch(g, source)
	if !s.run(dest, true) {
		return domain.Route{}, false
	}
	return s.route(dest)
}

// search holds the state of one single-source run. A node missing from dist
// has not been reached yet; there is no infinity sentinel.
type search struct {
	g       *Graph
	source  domain.NodeID
	dist    map[domain.NodeID]float64
	pred    map[domain.NodeID]domain.NodeID
	visited map[domain.NodeID]bool
	pq      nodePQ
}

func newSearch(g *Graph, source domain.NodeID) *search {
	s := &search{
		g:       g,
		source:  source,
		dist:    make(map[domain.NodeID]float64, g.Len()),
		pred:    make(map[domain.NodeID]domain.NodeID, g.Len()),
		visited: make(map[domain.NodeID]bool, g.Len()),
		pq:      make(nodePQ, 0, g.Len()),
	}
	s.dist[source] = 0
	heap.Push(&s.pq, nodeItem{id: source, dist: 0})
	return s
}

// run pops nodes in distance order. With stopAtDest set it returns as soon as
// dest is popped; otherwise it drains the queue and reports whether dest was
// reached.
func (s *search) run(dest domain.NodeID, stopAtDest bool) bool {
	for s.pq.Len() > 0 {
		u := heap.Pop(&s.pq).(nodeItem).id

		if stopAtDest && u == dest {
			return true
		}
		// Stale duplicate from an earlier, longer relaxation.
		if s.visited[u] {
			continue
		}
		s.visited[u] = true
		s.relax(u)
	}

	_, reached := s.dist[dest]
	return reached && !stopAtDest
}

// drain settles every node reachable from the source.
func (s *search) drain() {
	s.run(s.source, false)
}

func (s *search) relax(u domain.NodeID) {
	du, ok := s.dist[u]
	if !ok {
		return
	}
	for _, n := range s.g.Neighbors(u) {
		if s.visited[n.ID] {
			continue
		}
		// Euclidean weights are never negative; NaN fails the comparison too.
		if !(n.Weight >= 0) {
			continue
		}
		nd := du + n.Weight
		if cur, seen := s.dist[n.ID]; seen && nd >= cur {
			continue
		}
		s.dist[n.ID] = nd
		s.pred[n.ID] = u
		heap.Push(&s.pq, nodeItem{id: n.ID, dist: nd})
	}
}

// route rebuilds the path to dest from the predecessor links.
func (s *search) route(dest domain.NodeID) (domain.Route, bool) {
	if dest == s.source {
		return domain.Route{Points: []domain.NodeID{}, Dist: 0}, true
	}
	d, ok := s.dist[dest]
	if !ok {
		return domain.Route{}, false
	}

	points := []domain.NodeID{dest}
	for v := dest; v != s.source; {
		p, ok := s.pred[v]
		if !ok || len(points) > s.g.Len() {
			return domain.Route{}, false
		}
		points = append(points, p)
		v = p
	}
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return domain.Route{Points: points, Dist: d}, true
}

type nodeItem struct {
	id   domain.NodeID
	dist float64
}

// nodePQ is a min-heap on dist. Entries are never updated in place; a better
// distance pushes a new entry and the old one is skipped when popped.
type nodePQ []nodeItem

func (pq nodePQ) Len() int { return len(pq) }

func (pq nodePQ) Less(i, j int) bool { return pq[i].dist < pq[j].dist }

func (pq nodePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(nodeItem)) }

func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
