package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
)

// Source loads the raw campus rows the routing engine is built from.
type Source interface {
	Load(ctx context.Context) (domain.Dataset, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Store is a Source that can also be overwritten with a new dataset.
type Store interface {
	Source
	Save(ctx context.Context, dataset domain.Dataset) error
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return math.NaN()
	}
}

func toNodeID(val any) (domain.NodeID, error) {
	switch v := val.(type) {
	case int64:
		return domain.NodeID(v), nil
	case int:
		return domain.NodeID(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("node id %v is not an integer", v)
		}
		return domain.NodeID(v), nil
	default:
		return 0, fmt.Errorf("node id has unexpected type %T", val)
	}
}

func toBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}
