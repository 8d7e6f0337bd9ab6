package core

import (
	"context"
	"sync"

	"github.com/agenthands/creative/internal/core/model"
)

type mockResolver struct {
	entities map[string]model.ResolvedEntity
	err      error
}

func (m *mockResolver) Resolve(_ context.Context, curies []string) (map[string]model.ResolvedEntity, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]model.ResolvedEntity)
	for _, c := range curies {
		if e, ok := m.entities[c]; ok {
			out[c] = e
		}
	}
	return out, nil
}

type mockLookup struct {
	descendants map[string]map[string]string
}

func (m *mockLookup) Descendants(_ context.Context, curies []string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	for _, c := range curies {
		if d, ok := m.descendants[c]; ok {
			out[c] = d
		}
	}
	return out, nil
}

// mockExecutor answers every query graph through respond. It is called
// concurrently by the template runner.
type mockExecutor struct {
	mu      sync.Mutex
	calls   []*model.QueryGraph
	respond func(qg *model.QueryGraph) (*model.Response, error)
}

func (m *mockExecutor) Execute(_ context.Context, qg *model.QueryGraph) (*model.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, qg)
	m.mu.Unlock()
	return m.respond(qg)
}

func (m *mockExecutor) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockExporter struct {
	queryID string
	shape   string
	resp    *model.Response
	err     error
}

func (m *mockExporter) Export(_ context.Context, queryID, shape string, resp *model.Response) error {
	m.queryID, m.shape, m.resp = queryID, shape, resp
	return m.err
}
