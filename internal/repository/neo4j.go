package repository

import (
	"context"
	"fmt"

	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
	"github.com/ExclusiveDisjunction/sse-back/internal/graphdb"
)

// Neo4jSource keeps the campus map in a graph database as (:Location) nodes
// joined by [:CONNECTS] relationships, with tags as a string list property.
type Neo4jSource struct {
	client graphdb.Client
}

// NewNeo4j wraps a connected graph client.
func NewNeo4j(client graphdb.Client) *Neo4jSource {
	return &Neo4jSource{client: client}
}

// Load reads every location, connection, and tag.
func (s *Neo4jSource) Load(ctx context.Context) (domain.Dataset, error) {
	var ds domain.Dataset

	res, err := s.client.ExecuteRead(ctx, loadLocationsCypher, nil)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("load locations: %w", err)
	}
	for i, record := range res.Records {
		id, err := toNodeID(record["nodeId"])
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("load locations: record %d: %w", i, err)
		}
		ds.Nodes = append(ds.Nodes, domain.Node{
			ID:     id,
			X:      toFloat64(record["x"]),
			Y:      toFloat64(record["y"]),
			Name:   toString(record["name"]),
			Group:  toString(record["group"]),
			IsPath: toBool(record["isPath"]),
		})
		if tags, ok := record["tags"].([]any); ok {
			for _, tag := range tags {
				if label := toString(tag); label != "" {
					ds.Tags = append(ds.Tags, domain.NodeTag{NodeID: id, Tag: label})
				}
			}
		}
	}

	res, err = s.client.ExecuteRead(ctx, loadConnectionsCypher, nil)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("load connections: %w", err)
	}
	for i, record := range res.Records {
		src, err := toNodeID(record["source"])
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("load connections: record %d source: %w", i, err)
		}
		dst, err := toNodeID(record["dest"])
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("load connections: record %d dest: %w", i, err)
		}
		ds.Edges = append(ds.Edges, domain.EdgeRow{Source: src, Dest: dst})
	}

	return ds, nil
}

// Save replaces the stored map with dataset in a single write transaction,
// so a failure leaves the previous map in place.
func (s *Neo4jSource) Save(ctx context.Context, dataset domain.Dataset) error {
	tags := make(map[domain.NodeID][]string)
	for _, tag := range dataset.Tags {
		tags[tag.NodeID] = append(tags[tag.NodeID], tag.Tag)
	}

	nodes := make([]map[string]any, 0, len(dataset.Nodes))
	for _, n := range dataset.Nodes {
		props := map[string]any{
			"nodeId": int64(n.ID),
			"x":      n.X,
			"y":      n.Y,
			"name":   n.Name,
			"isPath": n.IsPath,
			"tags":   append([]string{}, tags[n.ID]...),
		}
		if n.HasGroup() {
			props["group"] = n.Group
		}
		nodes = append(nodes, props)
	}

	edges := make([]map[string]any, 0, len(dataset.Edges))
	for _, e := range dataset.Edges {
		edges = append(edges, map[string]any{"source": int64(e.Source), "dest": int64(e.Dest)})
	}

	err := s.client.ExecuteWriteTx(ctx, []graphdb.Statement{
		{Cypher: clearLocationsCypher},
		{Cypher: saveLocationsCypher, Params: map[string]any{"nodes": nodes}},
		{Cypher: saveConnectionsCypher, Params: map[string]any{"edges": edges}},
	})
	if err != nil {
		return fmt.Errorf("save campus map: %w", err)
	}
	return nil
}

func (s *Neo4jSource) Ping(ctx context.Context) error {
	return s.client.VerifyConnectivity(ctx)
}

func (s *Neo4jSource) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

const loadLocationsCypher = `
MATCH (l:Location)
RETURN l.nodeId AS nodeId,
       l.x AS x,
       l.y AS y,
       coalesce(l.name, "") AS name,
       l.group AS group,
       coalesce(l.isPath, false) AS isPath,
       coalesce(l.tags, []) AS tags
ORDER BY l.nodeId
`

const loadConnectionsCypher = `
MATCH (a:Location)-[:CONNECTS]->(b:Location)
RETURN a.nodeId AS source, b.nodeId AS dest
ORDER BY source, dest
`

const clearLocationsCypher = `
MATCH (l:Location)
DETACH DELETE l
`

const saveLocationsCypher = `
UNWIND $nodes AS node
MERGE (l:Location {nodeId: node.nodeId})
SET l += node
`

// Edge rows naming a missing location are dropped by MATCH; the loader
// never sees them.
const saveConnectionsCypher = `
UNWIND $edges AS edge
MATCH (a:Location {nodeId: edge.source})
MATCH (b:Location {nodeId: edge.dest})
MERGE (a)-[:CONNECTS]->(b)
`
