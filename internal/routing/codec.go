package routing

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

// Table files come in two JSON shapes:
//
//	plain:   [[{"points": [...], "dist": n} | null, ...], ...]   column j is node j
//	indexed: [[[nodeId, {"points": [...], "dist": n}] | null, ...], ...]
//
// The indexed shape names the node of every populated entry, so the column
// map is read from the first row and completed from later rows wherever the
// first row is empty. EncodeJSON always writes the indexed shape.

type tableShape int

const (
	shapeUnknown tableShape = iota
	shapePlain
	shapeIndexed
)

type routeJSON struct {
	Points *[]domain.NodeID `json:"points"`
	Dist   *float64         `json:"dist"`
}

// DecodeJSON reads a table in either JSON shape.
func DecodeJSON(r io.Reader) (*Table, error) {
	var raw [][]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	if len(raw) == 0 {
		return &Table{cols: IdentityColumns(0)}, nil
	}

	ncols := len(raw[0])
	colIDs := make([]domain.NodeID, ncols)
	for j := range colIDs {
		colIDs[j] = Unassigned
	}
	shape := shapeUnknown
	rows := make([][]*domain.Route, len(raw))

	for i, row := range raw {
		if len(row) != ncols {
			return nil, malformed("row %d has %d entries, want %d", i, len(row), ncols)
		}
		out := make([]*domain.Route, ncols)
		for j, cell := range row {
			cell = bytes.TrimSpace(cell)
			if len(cell) == 0 || bytes.Equal(cell, []byte("null")) {
				continue
			}

			var cellShape tableShape
			var route domain.Route
			var err error
			switch cell[0] {
			case '{':
				cellShape = shapePlain
				route, err = decodeRouteJSON(cell)
			case '[':
				cellShape = shapeIndexed
				var id domain.NodeID
				id, route, err = decodeIndexedJSON(cell)
				if err == nil {
					switch {
					case id < 0:
						err = fmt.Errorf("negative node id %d", id)
					case colIDs[j] == Unassigned:
						colIDs[j] = id
					case colIDs[j] != id:
						err = fmt.Errorf("column names node %d, earlier rows named %d", id, colIDs[j])
					}
				}
			default:
				err = fmt.Errorf("unexpected value %q", truncate(cell))
			}
			if err != nil {
				return nil, malformed("entry [%d][%d]: %v", i, j, err)
			}

			if shape == shapeUnknown {
				shape = cellShape
			} else if shape != cellShape {
				return nil, malformed("entry [%d][%d] mixes plain and indexed entries", i, j)
			}
			out[j] = &route
		}
		rows[i] = out
	}

	var cols ColumnMap
	if shape == shapeIndexed {
		var err error
		if cols, err = NewColumnMap(colIDs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
	} else {
		cols = IdentityColumns(ncols)
	}
	return NewTable(rows, cols)
}

func decodeRouteJSON(data []byte) (domain.Route, error) {
	var rj routeJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return domain.Route{}, err
	}
	if rj.Points == nil || rj.Dist == nil {
		return domain.Route{}, fmt.Errorf("entry needs both points and dist")
	}
	points := *rj.Points
	if points == nil {
		points = []domain.NodeID{}
	}
	return domain.Route{Points: points, Dist: *rj.Dist}, nil
}

func decodeIndexedJSON(data []byte) (domain.NodeID, domain.Route, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return 0, domain.Route{}, err
	}
	if len(pair) != 2 {
		return 0, domain.Route{}, fmt.Errorf("indexed entry has %d elements, want 2", len(pair))
	}
	var id domain.NodeID
	if err := json.Unmarshal(pair[0], &id); err != nil {
		return 0, domain.Route{}, fmt.Errorf("node id: %w", err)
	}
	route, err := decodeRouteJSON(pair[1])
	return id, route, err
}

// EncodeJSON writes the table in the indexed shape. Rows without a source
// are written as all-null rows so the array stays rectangular.
func (t *Table) EncodeJSON(w io.Writer) error {
	ncols := t.cols.Len()
	out := make([][]any, len(t.rows))
	for i, row := range t.rows {
		cells := make([]any, ncols)
		for j := range cells {
			if j >= len(row) || row[j] == nil {
				continue
			}
			id, ok := t.cols.NodeAt(j)
			if !ok {
				continue
			}
			cells[j] = []any{id, row[j]}
		}
		out[i] = cells
	}
	return json.NewEncoder(w).Encode(out)
}

const msgpackVersion = 1

type tableFile struct {
	Version int               `msgpack:"version"`
	Columns []domain.NodeID   `msgpack:"columns"`
	Rows    [][]*domain.Route `msgpack:"rows"`
}

// EncodeMsgpack writes the table as a versioned msgpack document.
func (t *Table) EncodeMsgpack(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(tableFile{
		Version: msgpackVersion,
		Columns: t.cols.IDs(),
		Rows:    t.rows,
	})
}

// DecodeMsgpack reads a table written by EncodeMsgpack.
func DecodeMsgpack(r io.Reader) (*Table, error) {
	var tf tableFile
	if err := msgpack.NewDecoder(r).Decode(&tf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	if tf.Version != msgpackVersion {
		return nil, malformed("unsupported version %d", tf.Version)
	}
	cols, err := NewColumnMap(tf.Columns)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	for _, row := range tf.Rows {
		for _, entry := range row {
			if entry != nil && entry.Points == nil {
				entry.Points = []domain.NodeID{}
			}
		}
	}
	return NewTable(tf.Rows, cols)
}

func isMsgpackPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		return true
	default:
		return false
	}
}

// ReadTableFile loads a table, choosing the codec by file extension.
func ReadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open route table %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var t *Table
	if isMsgpackPath(path) {
		t, err = DecodeMsgpack(r)
	} else {
		t, err = DecodeJSON(r)
	}
	if err != nil {
		return nil, fmt.Errorf("read route table %s: %w", path, err)
	}
	return t, nil
}

// WriteFile stores the table at path, choosing the codec by file extension.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create route table %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if isMsgpackPath(path) {
		err = t.EncodeMsgpack(w)
	} else {
		err = t.EncodeJSON(w)
	}
	if err == nil {
		err = w.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write route table %s: %w", path, err)
	}
	return nil
}

func truncate(b []byte) string {
	const max = 32
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
