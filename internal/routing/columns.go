package routing

import (
	"fmt"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

// ColumnMap translates between node ids and Route Table column indexes.
// Columns may cover only a subset of the graph's nodes. A column whose node
// is unknown (every entry empty in a decoded table) holds Unassigned.
type ColumnMap struct {
	byNode map[domain.NodeID]int
	byCol  []domain.NodeID
}

// Unassigned marks a column that no node maps to.
const Unassigned domain.NodeID = -1

// NewColumnMap assigns column i to ids[i]. Negative ids leave the column
// unassigned.
func NewColumnMap(ids []domain.NodeID) (ColumnMap, error) {
	m := ColumnMap{
		byNode: make(map[domain.NodeID]int, len(ids)),
		byCol:  append([]domain.NodeID(nil), ids...),
	}
	for col, id := range ids {
		if id < 0 {
			m.byCol[col] = Unassigned
			continue
		}
		if prev, dup := m.byNode[id]; dup {
			return ColumnMap{}, fmt.Errorf("%w: node %d in columns %d and %d", ErrDuplicateColumn, id, prev, col)
		}
		m.byNode[id] = col
	}
	return m, nil
}

// IdentityColumns maps column i to node i for i in [0, n).
func IdentityColumns(n int) ColumnMap {
	ids := make([]domain.NodeID, n)
	for i := range ids {
		ids[i] = domain.NodeID(i)
	}
	m, _ := NewColumnMap(ids)
	return m
}

// ColumnOf returns the column holding routes to id.
func (m ColumnMap) ColumnOf(id domain.NodeID) (int, bool) {
	col, ok := m.byNode[id]
	return col, ok
}

// NodeAt returns the node whose routes live in column col.
func (m ColumnMap) NodeAt(col int) (domain.NodeID, bool) {
	if col < 0 || col >= len(m.byCol) || m.byCol[col] == Unassigned {
		return Unassigned, false
	}
	return m.byCol[col], true
}

// Len is the number of columns.
func (m ColumnMap) Len() int {
	return len(m.byCol)
}

// IDs returns the node ids in column order.
func (m ColumnMap) IDs() []domain.NodeID {
	return append([]domain.NodeID(nil), m.byCol...)
}
