package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

// SQLiteSource reads the relational campus layout: NODES, EDGES and
// NODE_TAGS tables.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens the database file at path and makes sure the campus
// tables exist.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	s := NewSQLite(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite wraps an already opened database.
func NewSQLite(db *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: db}
}

// Migrate creates the campus tables when they are missing.
func (s *SQLiteSource) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create campus tables: %w", err)
	}
	return nil
}

// Load reads every node, edge row and tag.
func (s *SQLiteSource) Load(ctx context.Context) (domain.Dataset, error) {
	var ds domain.Dataset

	rows, err := s.db.QueryContext(ctx, selectNodesSQL)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("load nodes: %w", err)
	}
	for rows.Next() {
		var (
			n      domain.Node
			name   sql.NullString
			group  sql.NullString
			isPath sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.X, &n.Y, &name, &group, &isPath); err != nil {
			rows.Close()
			return domain.Dataset{}, fmt.Errorf("load nodes: %w", err)
		}
		n.Name = name.String
		n.Group = group.String
		n.IsPath = isPath.Int64 == 1
		ds.Nodes = append(ds.Nodes, n)
	}
	if err := closeRows(rows); err != nil {
		return domain.Dataset{}, fmt.Errorf("load nodes: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, selectEdgesSQL)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("load edges: %w", err)
	}
	for rows.Next() {
		var e domain.EdgeRow
		if err := rows.Scan(&e.Source, &e.Dest); err != nil {
			rows.Close()
			return domain.Dataset{}, fmt.Errorf("load edges: %w", err)
		}
		ds.Edges = append(ds.Edges, e)
	}
	if err := closeRows(rows); err != nil {
		return domain.Dataset{}, fmt.Errorf("load edges: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, selectTagsSQL)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("load tags: %w", err)
	}
	for rows.Next() {
		var tag domain.NodeTag
		if err := rows.Scan(&tag.NodeID, &tag.Tag); err != nil {
			rows.Close()
			return domain.Dataset{}, fmt.Errorf("load tags: %w", err)
		}
		ds.Tags = append(ds.Tags, tag)
	}
	if err := closeRows(rows); err != nil {
		return domain.Dataset{}, fmt.Errorf("load tags: %w", err)
	}

	return ds, nil
}

// Save replaces all campus rows inside one transaction.
func (s *SQLiteSource) Save(ctx context.Context, dataset domain.Dataset) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{"DELETE FROM NODE_TAGS", "DELETE FROM EDGES", "DELETE FROM NODES"} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear campus tables: %w", err)
		}
	}

	for _, n := range dataset.Nodes {
		var group any
		if n.HasGroup() {
			group = n.Group
		}
		isPath := 0
		if n.IsPath {
			isPath = 1
		}
		if _, err = tx.ExecContext(ctx, insertNodeSQL, int64(n.ID), n.X, n.Y, n.Name, group, isPath); err != nil {
			return fmt.Errorf("save node %d: %w", n.ID, err)
		}
	}
	for _, e := range dataset.Edges {
		if _, err = tx.ExecContext(ctx, insertEdgeSQL, int64(e.Source), int64(e.Dest)); err != nil {
			return fmt.Errorf("save edge %d->%d: %w", e.Source, e.Dest, err)
		}
	}
	for _, tag := range dataset.Tags {
		if _, err = tx.ExecContext(ctx, insertTagSQL, int64(tag.NodeID), tag.Tag); err != nil {
			return fmt.Errorf("save tag %q on %d: %w", tag.Tag, tag.NodeID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *SQLiteSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteSource) Close(context.Context) error {
	return s.db.Close()
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS NODES (
	N_ID INTEGER PRIMARY KEY,
	X REAL NOT NULL,
	Y REAL NOT NULL,
	NODE_NAME TEXT,
	NODE_GROUP TEXT DEFAULT NULL,
	IS_PATH INTEGER,
	CONSTRAINT NODE_KIND CHECK (IS_PATH IN (0, 1))
);

CREATE TABLE IF NOT EXISTS NODE_TAGS (
	TAG_ID INTEGER PRIMARY KEY,
	N_ID INTEGER NOT NULL,
	TAG TEXT NOT NULL,
	FOREIGN KEY (N_ID) REFERENCES NODES (N_ID) ON DELETE CASCADE ON UPDATE CASCADE,
	CONSTRAINT ONE_TAG UNIQUE (N_ID, TAG)
);

CREATE TABLE IF NOT EXISTS EDGES (
	SOURCE INTEGER NOT NULL,
	DESTINATION INTEGER NOT NULL,
	CONSTRAINT PK1 PRIMARY KEY (SOURCE, DESTINATION),
	FOREIGN KEY (SOURCE) REFERENCES NODES (N_ID) ON DELETE CASCADE ON UPDATE CASCADE,
	FOREIGN KEY (DESTINATION) REFERENCES NODES (N_ID) ON DELETE CASCADE ON UPDATE CASCADE
);
`

const (
	selectNodesSQL = "SELECT N_ID, X, Y, NODE_NAME, NODE_GROUP, IS_PATH FROM NODES ORDER BY N_ID"
	selectEdgesSQL = "SELECT SOURCE, DESTINATION FROM EDGES ORDER BY SOURCE, DESTINATION"
	selectTagsSQL  = "SELECT N_ID, TAG FROM NODE_TAGS ORDER BY N_ID, TAG_ID"

	insertNodeSQL = "INSERT INTO NODES (N_ID, X, Y, NODE_NAME, NODE_GROUP, IS_PATH) VALUES (?, ?, ?, ?, ?, ?)"
	insertEdgeSQL = "INSERT OR IGNORE INTO EDGES (SOURCE, DESTINATION) VALUES (?, ?)"
	insertTagSQL  = "INSERT OR IGNORE INTO NODE_TAGS (N_ID, TAG) VALUES (?, ?)"
)
