package graphdb

import (
	"context"
	"sync"
)

// MemoryClient is an in-process Client for tests. Results are registered per
// cypher statement; a statement with nothing registered returns no records.
type MemoryClient struct {
	mu           sync.Mutex
	results      map[string]Result
	failures     map[string]error
	calls        []ExecutedQuery
	err          error
	connectivity error
}

// ExecutedQuery is one recorded statement.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
	Write  bool
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{results: make(map[string]Result), failures: make(map[string]error)}
}

// WithError makes every subsequent statement fail with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return err.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// FailOn makes cypher fail with err. Inside ExecuteWriteTx the failure rolls
// back the whole batch, so none of its statements are recorded.
func (m *MemoryClient) FailOn(cypher string, err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[cypher] = err
	return m
}

// SetResult registers the records returned whenever cypher runs.
func (m *MemoryClient) SetResult(cypher string, res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[cypher] = res
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.record(cypher, params, false)
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.record(cypher, params, true)
}

func (m *MemoryClient) ExecuteWriteTx(_ context.Context, statements []Statement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	batch := make([]ExecutedQuery, 0, len(statements))
	for _, st := range statements {
		if err := m.failures[st.Cypher]; err != nil {
			return err
		}
		batch = append(batch, ExecutedQuery{Query: st.Cypher, Params: cloneMap(st.Params), Write: true})
	}
	m.calls = append(m.calls, batch...)
	return nil
}

func (m *MemoryClient) record(cypher string, params map[string]any, write bool) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	if err := m.failures[cypher]; err != nil {
		return Result{}, err
	}
	m.calls = append(m.calls, ExecutedQuery{Query: cypher, Params: cloneMap(params), Write: write})
	return m.results[cypher], nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// Calls returns every statement run so far, reads and writes interleaved.
func (m *MemoryClient) Calls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.calls...)
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
