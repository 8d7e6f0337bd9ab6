package driver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/agenthands/creative/internal/core/model"
)

// Exporter writes assembled responses to a graph database so that result
// graphs of past queries can be inspected with Cypher.
type Exporter struct {
	Driver GraphDriver
}

func NewExporter(d GraphDriver) *Exporter {
	return &Exporter{Driver: d}
}

// Export stores the response's knowledge graph, auxiliary graphs and results
// under queryID. Exporting the same query twice updates it in place.
func (x *Exporter) Export(ctx context.Context, queryID, shape string, resp *model.Response) error {
	msg := resp.Message
	_, err := x.Driver.ExecuteQuery(ctx, SaveQueryQuery, map[string]any{
		"query_id":     queryID,
		"created_at":   time.Now().UTC(),
		"shape":        shape,
		"description":  resp.Description,
		"result_count": len(msg.Results),
	})
	if err != nil {
		return fmt.Errorf("failed to save query %s: %w", queryID, err)
	}

	steps := []struct {
		name  string
		query string
		key   string
		rows  []map[string]any
	}{
		{"nodes", SaveKGNodesQuery, "nodes", nodeRows(msg.KnowledgeGraph)},
		{"edges", SaveKGEdgesQuery, "edges", edgeRows(msg.KnowledgeGraph)},
		{"auxiliary graphs", SaveAuxGraphsQuery, "aux_graphs", auxGraphRows(msg.AuxiliaryGraphs)},
		{"results", SaveResultsQuery, "results", resultRows(queryID, msg.Results)},
	}
	for _, step := range steps {
		if len(step.rows) == 0 {
			continue
		}
		params := map[string]any{"query_id": queryID, step.key: step.rows}
		if _, err := x.Driver.ExecuteQuery(ctx, step.query, params); err != nil {
			return fmt.Errorf("failed to save %s of query %s: %w", step.name, queryID, err)
		}
	}
	return nil
}

func nodeRows(kg *model.KnowledgeGraph) []map[string]any {
	if kg == nil {
		return nil
	}
	rows := make([]map[string]any, 0, len(kg.Nodes))
	for _, id := range sortedIDs(kg.Nodes) {
		n := kg.Nodes[id]
		rows = append(rows, map[string]any{
			"id":         id,
			"name":       n.Name,
			"categories": stringsOrEmpty(n.Categories),
		})
	}
	return rows
}

func edgeRows(kg *model.KnowledgeGraph) []map[string]any {
	if kg == nil {
		return nil
	}
	rows := make([]map[string]any, 0, len(kg.Edges))
	for _, id := range sortedIDs(kg.Edges) {
		e := kg.Edges[id]
		primary := ""
		for _, s := range e.Sources {
			if s.ResourceRole == model.RolePrimary {
				primary = s.ResourceID
				break
			}
		}
		rows = append(rows, map[string]any{
			"id":             id,
			"subject":        e.Subject,
			"object":         e.Object,
			"predicate":      e.Predicate,
			"primary_source": primary,
			"support_graphs": e.SupportGraphs(),
		})
	}
	return rows
}

func auxGraphRows(aux map[string]*model.AuxiliaryGraph) []map[string]any {
	rows := make([]map[string]any, 0, len(aux))
	for _, id := range sortedIDs(aux) {
		rows = append(rows, map[string]any{
			"id":    id,
			"edges": stringsOrEmpty(aux[id].Edges),
		})
	}
	return rows
}

func resultRows(queryID string, results []model.Result) []map[string]any {
	rows := make([]map[string]any, 0, len(results))
	for i, r := range results {
		var nodeIDs []string
		for _, q := range sortedIDs(r.NodeBindings) {
			nodeIDs = append(nodeIDs, r.BoundNodeIDs(q)...)
		}
		edgeIDs := r.EdgeIDs()
		slices.Sort(edgeIDs)
		rows = append(rows, map[string]any{
			"id":       fmt.Sprintf("%s-%d", queryID, i),
			"node_ids": stringsOrEmpty(nodeIDs),
			"edge_ids": stringsOrEmpty(slices.Compact(edgeIDs)),
		})
	}
	return rows
}

func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ErrQueryNotFound is returned by Counts for a query that was never exported.
var ErrQueryNotFound = errors.New("query not found")

// Counts returns how many results and knowledge-graph nodes were exported
// for queryID.
func (x *Exporter) Counts(ctx context.Context, queryID string) (results, nodes int64, err error) {
	res, err := x.Driver.ExecuteQuery(ctx, GetQueryCountsQuery, map[string]any{"query_id": queryID})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count query %s: %w", queryID, err)
	}
	if len(res.Records) == 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrQueryNotFound, queryID)
	}
	rec := res.Records[0]
	r, _ := rec.Get("results")
	n, _ := rec.Get("nodes")
	results, _ = r.(int64)
	nodes, _ = n.(int64)
	return results, nodes, nil
}

// Delete removes an exported query with its results and auxiliary graphs.
// Knowledge-graph nodes and edges are shared between queries and are kept.
func (x *Exporter) Delete(ctx context.Context, queryID string) error {
	if _, err := x.Driver.ExecuteQuery(ctx, DeleteQueryQuery, map[string]any{"query_id": queryID}); err != nil {
		return fmt.Errorf("failed to delete query %s: %w", queryID, err)
	}
	return nil
}
