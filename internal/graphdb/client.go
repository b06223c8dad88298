package graphdb

import (
	"context"
	"errors"
)

// Client is the slice of a graph database the campus repository needs: run a
// cypher statement in read or write mode and get every record back.
// ExecuteWriteTx runs several statements in one write transaction; either
// all of them commit or none do.
type Client interface {
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteWriteTx(ctx context.Context, statements []Statement) error
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Statement is one parameterized cypher statement.
type Statement struct {
	Cypher string
	Params map[string]any
}

// Result holds the fully consumed records of one statement.
type Result struct {
	Records []Record
}

// Record maps a returned column name to its value.
type Record map[string]any

// Options configures a Bolt connection.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graphdb: URI is required")
