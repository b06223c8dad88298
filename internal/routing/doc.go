// Package routing is the pathfinding engine: an undirected graph weighted by
// Euclidean distance, a Dijkstra solver over it, an optional precomputed
// route table, and nearest-member resolution for node groups.
//
// Everything here is synchronous and performs no I/O apart from the table
// file helpers. A Snapshot bundles one loaded state; an Engine publishes
// snapshots with a single atomic swap so readers never see a partial reload.
package routing
