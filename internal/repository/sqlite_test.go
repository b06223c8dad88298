package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

func newMemorySQLite(t *testing.T) *SQLiteSource {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every pooled connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s := NewSQLite(db)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func sampleDataset() domain.Dataset {
	return domain.Dataset{
		Nodes: []domain.Node{
			{ID: 0, X: 0, Y: 0, Name: "Gate", IsPath: true},
			{ID: 1, X: 3, Y: 0, Name: "Library", Group: "library"},
			{ID: 2, X: 3, Y: 4, Name: "Annex", Group: "library"},
		},
		Edges: []domain.EdgeRow{{Source: 0, Dest: 1}, {Source: 1, Dest: 2}},
		Tags:  []domain.NodeTag{{NodeID: 1, Tag: "quiet"}, {NodeID: 1, Tag: "wifi"}},
	}
}

func TestSQLiteSource_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	s := newMemorySQLite(t)
	want := sampleDataset()

	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dataset mismatch\nwant %+v\ngot  %+v", want, got)
	}

	// A second save replaces rather than appends.
	smaller := domain.Dataset{Nodes: want.Nodes[:1]}
	if err := s.Save(ctx, smaller); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Nodes) != 1 || len(got.Edges) != 0 || len(got.Tags) != 0 {
		t.Fatalf("expected only the gate to remain, got %+v", got)
	}
}

func TestSQLiteSource_LoadNullColumns(t *testing.T) {
	ctx := context.Background()
	s := newMemorySQLite(t)

	if _, err := s.db.ExecContext(ctx, "INSERT INTO NODES (N_ID, X, Y) VALUES (7, 1.5, 2.5)"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	ds, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := domain.Node{ID: 7, X: 1.5, Y: 2.5}
	if len(ds.Nodes) != 1 || ds.Nodes[0] != want {
		t.Fatalf("expected %+v, got %+v", want, ds.Nodes)
	}
}

func TestSQLiteSource_SaveRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newMemorySQLite(t)
	if err := s.Save(ctx, sampleDataset()); err != nil {
		t.Fatalf("save: %v", err)
	}

	dup := domain.Dataset{Nodes: []domain.Node{{ID: 3, Name: "A"}, {ID: 3, Name: "B"}}}
	if err := s.Save(ctx, dup); err == nil {
		t.Fatalf("expected duplicate node id to fail")
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Nodes) != 3 {
		t.Fatalf("expected previous rows to survive, got %d nodes", len(got.Nodes))
	}
}

func TestOpenSQLiteCreatesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "campus.db")

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close(ctx)

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	ds, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Nodes) != 0 {
		t.Fatalf("expected empty database, got %d nodes", len(ds.Nodes))
	}
}

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campus.json")
	want := sampleDataset()
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	src := NewFile(path)
	if err := src.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	got, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dataset mismatch\nwant %+v\ngot  %+v", want, got)
	}

	missing := NewFile(filepath.Join(t.TempDir(), "nope.json"))
	if _, err := missing.Load(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
