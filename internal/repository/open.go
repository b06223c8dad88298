package repository

import (
	"context"
	"fmt"

	"github.com/ExclusiveDisjunction/sse-back/internal/config"
	"github.com/ExclusiveDisjunction/sse-back/internal/graphdb"
)

// Open connects to the store selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg config.Config) (Source, error) {
	switch cfg.Store.Driver {
	case config.DriverFile:
		return NewFile(cfg.Store.DatasetPath), nil
	default:
		return OpenStore(ctx, cfg)
	}
}

// OpenStore is Open restricted to drivers that can be written to.
func OpenStore(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.Store.Driver {
	case config.DriverNeo4j:
		client, err := graphdb.NewNeo4jClient(ctx, graphdb.Options{
			URI:            cfg.Graph.URI,
			Database:       cfg.Graph.Database,
			Username:       cfg.Graph.Username,
			Password:       cfg.Graph.Password,
			MaxConnections: cfg.Graph.MaxConnections,
		})
		if err != nil {
			return nil, err
		}
		return NewNeo4j(client), nil
	case config.DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("store driver %q is read-only or unknown", cfg.Store.Driver)
	}
}
