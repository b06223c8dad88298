package routing

import (
	"errors"
	"fmt"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

var (
	// ErrUnknownEndpoint indicates an edge row that references a node missing
	// from the node set. The upstream store is inconsistent.
	ErrUnknownEndpoint = errors.New("routing: edge endpoint is not a known node")

	// ErrInvalidCoordinate indicates a node whose coordinates are NaN or infinite.
	ErrInvalidCoordinate = errors.New("routing: node coordinate is not finite")

	// ErrMalformedTable indicates a serialized route table that cannot be used.
	ErrMalformedTable = errors.New("routing: malformed route table")

	// ErrDuplicateColumn indicates two table columns mapped to the same node.
	ErrDuplicateColumn = errors.New("routing: duplicate table column")

	// ErrNoSnapshot is returned when routing before any snapshot was published.
	ErrNoSnapshot = errors.New("routing: no snapshot loaded")
)

// EndpointError reports the edge row that failed to resolve.
type EndpointError struct {
	Edge    domain.EdgeRow
	Missing domain.NodeID
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("routing: edge %d->%d references unknown node %d", e.Edge.Source, e.Edge.Dest, e.Missing)
}

func (e *EndpointError) Unwrap() error {
	return ErrUnknownEndpoint
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedTable, fmt.Sprintf(format, args...))
}
