package domain

import "fmt"

// Route is a shortest path between two nodes. Points runs from source to
// destination inclusive, except when source and destination coincide: that
// route has Dist 0 and no points at all.
type Route struct {
	Points []NodeID `json:"points" msgpack:"points"`
	Dist   float64  `json:"dist" msgpack:"dist"`
}

// DestinationKind discriminates the two traverse query shapes.
type DestinationKind int

const (
	DestinationNode DestinationKind = iota
	DestinationGroup
)

func (k DestinationKind) String() string {
	switch k {
	case DestinationNode:
		return "node"
	case DestinationGroup:
		return "group"
	default:
		return fmt.Sprintf("DestinationKind(%d)", int(k))
	}
}

// Destination is either a single node or the nearest member of a group.
// Build one with ByNode or ByGroup.
type Destination struct {
	Kind  DestinationKind
	Node  NodeID
	Group string
}

// ByNode targets a specific node.
func ByNode(id NodeID) Destination {
	return Destination{Kind: DestinationNode, Node: id}
}

// ByGroup targets the closest node carrying the group label.
func ByGroup(label string) Destination {
	return Destination{Kind: DestinationGroup, Group: label}
}

func (d Destination) String() string {
	if d.Kind == DestinationGroup {
		return "group:" + d.Group
	}
	return fmt.Sprintf("node:%d", d.Node)
}
