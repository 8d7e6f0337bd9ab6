package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/creative/internal/core/model"
)

func exportResponse() *model.Response {
	edge := model.NewKGEdge("ab", model.KGEdgeInfo{Subject: "A", Object: "B", Predicate: "biolink:affects"})
	edge.AddSources(
		model.RetrievalSource{ResourceID: "infores:aggregator", ResourceRole: model.RoleAggregator},
		model.RetrievalSource{ResourceID: "infores:semmeddb", ResourceRole: model.RolePrimary},
	)
	edge.AddSupportGraph("aux-1")

	return &model.Response{
		Description: model.SuccessDescription(1),
		Message: model.Message{
			KnowledgeGraph: &model.KnowledgeGraph{
				Nodes: map[string]*model.KGNode{
					"B": {Name: "beta", Categories: []string{"biolink:Gene"}},
					"A": {Name: "alpha"},
				},
				Edges: map[string]*model.KGEdge{"ab": edge},
			},
			AuxiliaryGraphs: map[string]*model.AuxiliaryGraph{"aux-1": model.NewAuxiliaryGraph([]string{"ab"})},
			Results: []model.Result{{
				NodeBindings: map[string][]model.NodeBinding{"n1": {{ID: "B"}}, "n0": {{ID: "A"}}},
				Analyses: []model.Analysis{{EdgeBindings: map[string][]model.EdgeBinding{
					"e0": {{ID: "ab"}},
				}}},
			}},
		},
	}
}

func TestExport(t *testing.T) {
	mock := &MockDriver{}
	err := NewExporter(mock).Export(context.Background(), "q-1", "pathfinder", exportResponse())
	require.NoError(t, err)

	require.Len(t, mock.Executed, 5)
	assert.Equal(t, SaveQueryQuery, mock.Executed[0].Query)
	assert.Equal(t, "q-1", mock.Executed[0].Params["query_id"])
	assert.Equal(t, "pathfinder", mock.Executed[0].Params["shape"])
	assert.Equal(t, 1, mock.Executed[0].Params["result_count"])

	assert.Equal(t, SaveKGNodesQuery, mock.Executed[1].Query)
	assert.Equal(t, []map[string]any{
		{"id": "A", "name": "alpha", "categories": []string{}},
		{"id": "B", "name": "beta", "categories": []string{"biolink:Gene"}},
	}, mock.Executed[1].Params["nodes"])

	assert.Equal(t, SaveKGEdgesQuery, mock.Executed[2].Query)
	assert.Equal(t, []map[string]any{{
		"id":             "ab",
		"subject":        "A",
		"object":         "B",
		"predicate":      "biolink:affects",
		"primary_source": "infores:semmeddb",
		"support_graphs": []string{"aux-1"},
	}}, mock.Executed[2].Params["edges"])

	assert.Equal(t, SaveAuxGraphsQuery, mock.Executed[3].Query)
	assert.Equal(t, []map[string]any{{"id": "aux-1", "edges": []string{"ab"}}}, mock.Executed[3].Params["aux_graphs"])

	assert.Equal(t, SaveResultsQuery, mock.Executed[4].Query)
	assert.Equal(t, []map[string]any{{
		"id":       "q-1-0",
		"node_ids": []string{"A", "B"},
		"edge_ids": []string{"ab"},
	}}, mock.Executed[4].Params["results"])
}

func TestExport_SkipsEmptyCollections(t *testing.T) {
	mock := &MockDriver{}
	err := NewExporter(mock).Export(context.Background(), "q-2", "standard", &model.Response{})
	require.NoError(t, err)
	require.Len(t, mock.Executed, 1)
	assert.Equal(t, 0, mock.Executed[0].Params["result_count"])
}

func TestExport_WrapsDriverErrors(t *testing.T) {
	boom := errors.New("connection reset")
	mock := &MockDriver{Err: boom, FailOn: SaveKGEdgesQuery}

	err := NewExporter(mock).Export(context.Background(), "q-3", "standard", exportResponse())
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "edges of query q-3")
	assert.Len(t, mock.Executed, 3)
}

func TestExporterCounts(t *testing.T) {
	mock := &MockDriver{Results: map[string]neo4j.EagerResult{
		GetQueryCountsQuery: {Records: []*neo4j.Record{{
			Keys:   []string{"results", "nodes"},
			Values: []any{int64(2), int64(5)},
		}}},
	}}
	results, nodes, err := NewExporter(mock).Counts(context.Background(), "q-4")
	require.NoError(t, err)
	assert.Equal(t, int64(2), results)
	assert.Equal(t, int64(5), nodes)
	assert.Equal(t, "q-4", mock.Executed[0].Params["query_id"])

	_, _, err = NewExporter(&MockDriver{}).Counts(context.Background(), "q-5")
	assert.ErrorIs(t, err, ErrQueryNotFound)
}

func TestExporterDelete(t *testing.T) {
	mock := &MockDriver{}
	require.NoError(t, NewExporter(mock).Delete(context.Background(), "q-6"))
	require.Len(t, mock.Executed, 1)
	assert.Equal(t, DeleteQueryQuery, mock.Executed[0].Query)

	boom := errors.New("gone")
	err := NewExporter(&MockDriver{Err: boom}).Delete(context.Background(), "q-7")
	assert.ErrorIs(t, err, boom)
}
