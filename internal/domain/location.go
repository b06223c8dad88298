package domain

// NodeID identifies a map location. IDs are stable across reloads and are
// used directly as Route Table row indexes, so they are expected to be small
// non-negative integers.
type NodeID int64

// Node is a point on the campus map.
type Node struct {
	ID     NodeID  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Name   string  `json:"name"`
	Group  string  `json:"group,omitempty"` // empty when the node belongs to no group
	IsPath bool    `json:"is_path"`         // through-point rather than a named destination
}

// HasGroup reports whether the node carries a group label.
func (n Node) HasGroup() bool {
	return n.Group != ""
}

// EdgeRow is a connection as it is stored upstream: one direction per row.
type EdgeRow struct {
	Source NodeID `json:"source"`
	Dest   NodeID `json:"dest"`
}

// NodeTag is a free-form UI label attached to a node.
type NodeTag struct {
	NodeID NodeID `json:"node_id"`
	Tag    string `json:"tag"`
}

// Dataset is the snapshot of upstream rows the routing engine is built from.
type Dataset struct {
	Nodes []Node    `json:"nodes"`
	Edges []EdgeRow `json:"edges"`
	Tags  []NodeTag `json:"tags"`
}

// NodeMap indexes the dataset's nodes by id.
func (d Dataset) NodeMap() map[NodeID]Node {
	nodes := make(map[NodeID]Node, len(d.Nodes))
	for _, n := range d.Nodes {
		nodes[n.ID] = n
	}
	return nodes
}
