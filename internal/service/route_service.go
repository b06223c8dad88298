package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ExclusiveDisjunction/sse-back/internal/config"
	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
	"github.com/ExclusiveDisjunction/sse-back/internal/repository"
	"github.com/ExclusiveDisjunction/sse-back/internal/routing"
)

// RouteService owns the routing engine. It loads campus data from a
// repository, builds snapshots off to the side and publishes them, and
// answers traverse queries against whatever snapshot is current.
type RouteService struct {
	source  repository.Source
	engine  *routing.Engine
	cfg     config.RoutingConfig
	logger  *slog.Logger
	metrics *Metrics
	nowFn   func() time.Time

	reloadMu    sync.Mutex
	stateMu     sync.RWMutex
	lastErr     error
	lastAttempt time.Time
}

// NewRouteService creates a service with nothing published; call Reload
// before serving queries.
func NewRouteService(source repository.Source, cfg config.RoutingConfig, logger *slog.Logger, metrics *Metrics) *RouteService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &RouteService{
		source:  source,
		engine:  routing.NewEngine(),
		cfg:     cfg,
		logger:  logger.With("component", "route_service"),
		metrics: metrics,
		nowFn:   time.Now,
	}
}

// Reload builds a new snapshot from the repository and publishes it. On
// failure the current snapshot stays in service. Concurrent calls run one at
// a time.
func (s *RouteService) Reload(ctx context.Context) (Status, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.cfg.ReloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ReloadTimeout)
		defer cancel()
	}

	start := s.nowFn()
	snap, err := s.buildSnapshot(ctx)
	s.metrics.reloadDuration.Observe(time.Since(start).Seconds())

	s.stateMu.Lock()
	s.lastAttempt = start.UTC()
	s.lastErr = err
	s.stateMu.Unlock()

	if err != nil {
		s.metrics.reloads.WithLabelValues("failure").Inc()
		s.logger.Error("snapshot reload failed, keeping previous snapshot", "error", err)
		return s.Status(), fmt.Errorf("reload snapshot: %w", err)
	}

	snap.LoadedAt = start.UTC()
	version := s.engine.Publish(snap)
	s.metrics.reloads.WithLabelValues("success").Inc()
	s.recordSnapshot(snap)

	st := s.Status()
	s.logger.Info("snapshot published",
		"version", version,
		"nodes", st.Nodes,
		"edges", st.Edges,
		"provider", st.Provider,
		"table_entries", st.TableEntries,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return st, nil
}

func (s *RouteService) buildSnapshot(ctx context.Context) (*routing.Snapshot, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	g, err := routing.Build(ds.NodeMap(), ds.Edges)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	var table *routing.Table
	switch {
	case s.cfg.TablePath != "":
		if table, err = routing.ReadTableFile(s.cfg.TablePath); err != nil {
			return nil, err
		}
		if err := table.Verify(g); err != nil {
			return nil, fmt.Errorf("route table %s does not match the campus map: %w", s.cfg.TablePath, err)
		}
	case s.cfg.Precompute:
		columns := TableColumns(ds.Nodes, s.cfg.AllColumns)
		if table, err = routing.BuildTable(ctx, g, g.NodeIDs(), columns, s.cfg.Workers); err != nil {
			return nil, err
		}
	}

	return routing.NewSnapshot(g, table, ds.Nodes, ds.Tags)
}

// TableColumns picks the destination columns of a precomputed table: every
// non-path node, or every node when all is set. Ids are ascending.
func TableColumns(nodes []domain.Node, all bool) []domain.NodeID {
	seen := make(map[domain.NodeID]struct{}, len(nodes))
	columns := make([]domain.NodeID, 0, len(nodes))
	for _, n := range nodes {
		if !all && n.IsPath {
			continue
		}
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		columns = append(columns, n.ID)
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i] < columns[j] })
	return columns
}

func (s *RouteService) recordSnapshot(snap *routing.Snapshot) {
	s.metrics.version.Set(float64(snap.Version))
	s.metrics.snapshotNodes.Set(float64(len(snap.Nodes)))
	if snap.Graph != nil {
		s.metrics.snapshotEdges.Set(float64(snap.Graph.EdgeCount()))
	}
	if snap.Table != nil {
		s.metrics.tableEntries.Set(float64(snap.Table.Populated()))
	} else {
		s.metrics.tableEntries.Set(0)
	}
}

// TraverseInput is one routing query.
type TraverseInput struct {
	Start domain.NodeID
	Dest  domain.Destination
}

// Traverse routes from Start to Dest. A false result means no route; an
// error only occurs before the first successful reload.
func (s *RouteService) Traverse(ctx context.Context, in TraverseInput) (domain.Route, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Route{}, false, err
	}

	start := time.Now()
	kind := in.Dest.Kind.String()
	provider := "none"

	var (
		route domain.Route
		ok    bool
		err   error
	)
	if snap := s.engine.Current(); snap != nil {
		provider = providerName(snap)
		route, ok = snap.Route(in.Start, in.Dest)
	} else {
		err = routing.ErrNoSnapshot
	}
	s.metrics.queryDuration.WithLabelValues(kind, provider).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		s.metrics.queries.WithLabelValues(kind, "error").Inc()
	case ok:
		s.metrics.queries.WithLabelValues(kind, "found").Inc()
	default:
		s.metrics.queries.WithLabelValues(kind, "absent").Inc()
		s.logger.Debug("no route", "start", in.Start, "dest", in.Dest.String())
	}
	return route, ok, err
}

// MapNode is a node as shown on the client map.
type MapNode struct {
	ID     domain.NodeID
	X      float64
	Y      float64
	Name   string
	Group  string
	IsPath bool
	Tags   []string
}

// MapNodes lists every node of the current snapshot in id order.
func (s *RouteService) MapNodes() ([]MapNode, error) {
	snap := s.engine.Current()
	if snap == nil {
		return nil, routing.ErrNoSnapshot
	}

	out := make([]MapNode, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		tags := snap.Tags[n.ID]
		if tags == nil {
			tags = []string{}
		}
		out = append(out, MapNode{
			ID:     n.ID,
			X:      n.X,
			Y:      n.Y,
			Name:   n.Name,
			Group:  n.Group,
			IsPath: n.IsPath,
			Tags:   tags,
		})
	}
	return out, nil
}

// Status summarises the published snapshot and the last reload attempt.
type Status struct {
	Loaded       bool
	Version      uint64
	LoadedAt     time.Time
	Provider     string
	Nodes        int
	Edges        int
	Groups       []string
	TableRows    int
	TableColumns int
	TableEntries int
	LastAttempt  time.Time
	LastError    string
}

func (s *RouteService) Status() Status {
	var st Status
	if snap := s.engine.Current(); snap != nil {
		st.Loaded = true
		st.Version = snap.Version
		st.LoadedAt = snap.LoadedAt
		st.Provider = providerName(snap)
		st.Nodes = len(snap.Nodes)
		st.Groups = snap.Groups.Labels()
		if snap.Graph != nil {
			st.Edges = snap.Graph.EdgeCount()
		}
		if snap.Table != nil {
			st.TableRows = snap.Table.Rows()
			st.TableColumns = snap.Table.Columns().Len()
			st.TableEntries = snap.Table.Populated()
		}
	}

	s.stateMu.RLock()
	st.LastAttempt = s.lastAttempt
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	s.stateMu.RUnlock()
	return st
}

// Probe reports whether the service can answer queries and the store is
// still reachable for the next reload.
func (s *RouteService) Probe(ctx context.Context) error {
	if s.engine.Current() == nil {
		return routing.ErrNoSnapshot
	}
	if err := s.source.Ping(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}

// IsNotReady reports whether err means no snapshot has been published yet.
func IsNotReady(err error) bool {
	return errors.Is(err, routing.ErrNoSnapshot)
}

func providerName(snap *routing.Snapshot) string {
	if snap.Table != nil {
		return "table"
	}
	return "graph"
}
