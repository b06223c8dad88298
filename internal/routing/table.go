package routing

import (
	"context"
	"fmt"
	"math"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

// Table is a precomputed set of shortest routes. Rows are indexed directly by
// source node id; columns go through a ColumnMap. A nil entry means no path.
type Table struct {
	rows [][]*domain.Route
	cols ColumnMap
}

// NewTable wraps rows that were computed or decoded elsewhere. Every non-nil
// row must have exactly one entry per column.
func NewTable(rows [][]*domain.Route, cols ColumnMap) (*Table, error) {
	for i, row := range rows {
		if row != nil && len(row) != cols.Len() {
			return nil, malformed("row %d has %d entries, want %d", i, len(row), cols.Len())
		}
	}
	return &Table{rows: rows, cols: cols}, nil
}

// BuildTable runs one full single-source search per source and records the
// route to every column node. Sources and columns must be nodes of g.
func BuildTable(ctx context.Context, g *Graph, sources, columns []domain.NodeID, workers int) (*Table, error) {
	cols, err := NewColumnMap(columns)
	if err != nil {
		return nil, err
	}
	for _, id := range columns {
		if id < 0 || !g.HasNode(id) {
			return nil, fmt.Errorf("routing: table column %d is not a graph node", id)
		}
	}

	var maxID domain.NodeID = -1
	seen := make(map[domain.NodeID]struct{}, len(sources))
	for _, id := range sources {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("routing: table source %d listed twice", id)
		}
		seen[id] = struct{}{}
		if !g.HasNode(id) {
			return nil, fmt.Errorf("routing: table source %d is not a graph node", id)
		}
		if id < 0 {
			return nil, fmt.Errorf("routing: table source %d cannot index a row", id)
		}
		if id > maxID {
			maxID = id
		}
	}

	if span := int64(maxID) + 1; span > maxRowSpan(len(sources)) {
		return nil, fmt.Errorf("routing: table source ids reach %d for %d sources; ids must be dense to index rows", maxID, len(sources))
	}

	rows := make([][]*domain.Route, int(maxID)+1)
	err = runPool(ctx, workers, len(sources), func(idx int) error {
		src := sources[idx]
		s := newSearch(g, src)
		s.drain()

		row := make([]*domain.Route, cols.Len())
		for col, dest := range columns {
			if r, ok := s.route(dest); ok {
				row[col] = &r
			}
		}
		// Each worker owns a distinct row index.
		rows[src] = row
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("build route table: %w", err)
	}

	return &Table{rows: rows, cols: cols}, nil
}

// maxRowSpan bounds the row axis of a built table. Rows are indexed by node
// id, so sparse ids would allocate mostly empty rows.
func maxRowSpan(sources int) int64 {
	return 4*int64(sources) + 1024
}

// Lookup returns the stored route from source to dest. Unknown columns,
// out-of-range rows, and empty entries all report absence.
func (t *Table) Lookup(source, dest domain.NodeID) (domain.Route, bool) {
	if t == nil {
		return domain.Route{}, false
	}
	col, ok := t.cols.ColumnOf(dest)
	if !ok {
		return domain.Route{}, false
	}
	if source < 0 || int64(source) >= int64(len(t.rows)) {
		return domain.Route{}, false
	}
	row := t.rows[source]
	if col < 0 || col >= len(row) {
		return domain.Route{}, false
	}
	entry := row[col]
	if entry == nil {
		return domain.Route{}, false
	}
	return *entry, true
}

// ShortestNodePath serves lookups from the table.
func (t *Table) ShortestNodePath(source, dest domain.NodeID) (domain.Route, bool) {
	return t.Lookup(source, dest)
}

// Rows is the length of the row axis (highest source id + 1).
func (t *Table) Rows() int {
	return len(t.rows)
}

// Columns returns the table's column mapping.
func (t *Table) Columns() ColumnMap {
	return t.cols
}

// Populated counts the entries that hold a route.
func (t *Table) Populated() int {
	n := 0
	for _, row := range t.rows {
		for _, entry := range row {
			if entry != nil {
				n++
			}
		}
	}
	return n
}

// Verify checks a table that was computed elsewhere against g: every
// populated row and assigned column must name a node of g, and each stored
// route must run from its row to its column over edges of g with the
// recorded length. Any mismatch is ErrMalformedTable.
func (t *Table) Verify(g *Graph) error {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return malformed("graph has no nodes")
	}
	if maxID := ids[len(ids)-1]; int64(len(t.rows)) > int64(maxID)+1 {
		return malformed("%d rows but the highest node id is %d", len(t.rows), maxID)
	}
	for col, id := range t.cols.byCol {
		if id != Unassigned && !g.HasNode(id) {
			return malformed("column %d names unknown node %d", col, id)
		}
	}

	for row, entries := range t.rows {
		if entries == nil {
			continue
		}
		source := domain.NodeID(row)
		if !g.HasNode(source) {
			return malformed("row %d is not a node", row)
		}
		for col, entry := range entries {
			if entry == nil {
				continue
			}
			dest, ok := t.cols.NodeAt(col)
			if !ok {
				return malformed("row %d holds a route in unassigned column %d", row, col)
			}
			if err := verifyRoute(g, source, dest, *entry); err != nil {
				return malformed("route %d->%d: %v", source, dest, err)
			}
		}
	}
	return nil
}

func verifyRoute(g *Graph, source, dest domain.NodeID, r domain.Route) error {
	if len(r.Points) == 0 {
		if source != dest {
			return fmt.Errorf("no points")
		}
		return nil
	}
	if r.Points[0] != source || r.Points[len(r.Points)-1] != dest {
		return fmt.Errorf("points run %d->%d", r.Points[0], r.Points[len(r.Points)-1])
	}

	var length float64
	for i, id := range r.Points {
		if !g.HasNode(id) {
			return fmt.Errorf("point %d is unknown node %d", i, id)
		}
		if i == 0 {
			continue
		}
		w, ok := edgeWeight(g, r.Points[i-1], id)
		if !ok {
			return fmt.Errorf("no edge %d-%d", r.Points[i-1], id)
		}
		length += w
	}
	if math.Abs(length-r.Dist) > 1e-6*math.Max(1, length) {
		return fmt.Errorf("dist %g, edges sum to %g", r.Dist, length)
	}
	return nil
}

func edgeWeight(g *Graph, from, to domain.NodeID) (float64, bool) {
	for _, nb := range g.Neighbors(from) {
		if nb.ID == to {
			return nb.Weight, true
		}
	}
	return 0, false
}
