package routing

import (
	"sort"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

// PathProvider answers node-to-node queries. Both the live Graph and the
// precomputed Table implement it.
type PathProvider interface {
	ShortestNodePath(source, dest domain.NodeID) (domain.Route, bool)
}

// GroupIndex maps a group label to its member node ids in ascending order.
// It is built once per snapshot and never modified.
type GroupIndex struct {
	members map[string][]domain.NodeID
}

// NewGroupIndex collects every node with a group label.
func NewGroupIndex(nodes []domain.Node) GroupIndex {
	members := make(map[string][]domain.NodeID)
	for _, n := range nodes {
		if !n.HasGroup() {
			continue
		}
		members[n.Group] = append(members[n.Group], n.ID)
	}
	for label := range members {
		ids := members[label]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return GroupIndex{members: members}
}

// Members returns the ids in the group. The slice is shared.
func (g GroupIndex) Members(label string) ([]domain.NodeID, bool) {
	ids, ok := g.members[label]
	return ids, ok
}

// Labels returns every group label, sorted.
func (g GroupIndex) Labels() []string {
	labels := make([]string, 0, len(g.members))
	for label := range g.members {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// NearestInGroup returns the shortest route from source to any member of the
// group. Members without a route are skipped; on equal distance the member
// with the lower id wins.
func NearestInGroup(p PathProvider, groups GroupIndex, source domain.NodeID, label string) (domain.Route, bool) {
	ids, ok := groups.Members(label)
	if !ok {
		return domain.Route{}, false
	}

	var best domain.Route
	found := false
	for _, id := range ids {
		r, ok := p.ShortestNodePath(source, id)
		if !ok {
			continue
		}
		if !found || r.Dist < best.Dist {
			best = r
			found = true
		}
	}
	return best, found
}
