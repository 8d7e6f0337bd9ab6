package core

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agenthands/creative/internal/core/model"
	"github.com/agenthands/creative/internal/core/shape"
	"github.com/agenthands/creative/internal/core/subclass"
	"github.com/agenthands/creative/internal/core/summary"
	"github.com/agenthands/creative/internal/telemetry"
)

// Assemble merges an executed response into the graph, rebinds results of
// expanded query nodes and finalizes the response. When rebinding fails the
// response is finalized without results and the error is returned.
func (h *Handler) Assemble(ctx context.Context, resp *model.Response) (err error) {
	if h.queryGraph == nil {
		return ErrQueryGraphNotSet
	}
	ctx, span := startSpan(ctx, "resultsAssembly", h.shape)
	defer func() { endSpan(span, err) }()

	h.graph.Merge(&resp.Message)
	results := resp.Message.Results

	if len(h.expansions) > 0 {
		rebinder := &subclass.Rebinder{
			Graph:              h.graph,
			QueryGraph:         h.queryGraph,
			OriginalQueryGraph: h.originalQueryGraph,
			Expansions:         h.expansions,
			Aggregator:         h.Config.Provenance.Source(),
		}
		rebound, err := rebinder.Rebind(results)
		if err != nil {
			h.logs = append(h.logs, model.Error("SubclassRebindError", "Failed to rebind subclass results: %v", err))
			h.finalize(ctx, nil, nil, resp)
			return fmt.Errorf("rebind results: %w", err)
		}
		results = rebound
	}

	h.finalize(ctx, results, nil, resp)
	return nil
}

// finalize prunes the graph against results and builds the response.
// base supplies the schema versions and workflow; resultTemplates restricts
// the execution summary to the templates that produced results.
func (h *Handler) finalize(ctx context.Context, results []model.Result, resultTemplates []int, base *model.Response) {
	start := time.Now()

	stats := h.graph.Prune(results)
	h.logs = append(h.logs, model.Debug("Pruned knowledge graph: removed %d nodes, %d edges and %d auxiliary graphs; kept %d nodes, %d edges and %d auxiliary graphs.",
		stats.NodesRemoved, stats.EdgesRemoved, stats.AuxGraphsRemoved, stats.NodesKept, stats.EdgesKept, stats.AuxGraphsKept))
	if !stats.Clean() {
		slog.Error("results reference missing entries", "query", h.queryID,
			"nodes", stats.MissingNodes, "edges", stats.MissingEdges, "aux_graphs", stats.MissingAuxGraphs)
		h.logs = append(h.logs, model.Error("DanglingReference", "Results reference missing nodes %v, edges %v and auxiliary graphs %v.",
			stats.MissingNodes, stats.MissingEdges, stats.MissingAuxGraphs))
	} else if err := h.graph.CheckInvariants(results); err != nil {
		slog.Warn("pruned graph violates invariants", "query", h.queryID, "error", err)
		h.logs = append(h.logs, model.Error("InvariantViolation", "Pruned knowledge graph is inconsistent: %v", err))
	}

	h.appendOriginalCuries(results)

	resp := &model.Response{
		Description: model.SuccessDescription(len(results)),
		Workflow:    []model.WorkflowStep{{ID: "lookup_and_score"}},
		Message:     h.graph.Message(h.originalQueryGraph, results),
	}
	if base != nil {
		resp.SchemaVersion = base.SchemaVersion
		resp.BiolinkVersion = base.BiolinkVersion
		if len(base.Workflow) > 0 {
			resp.Workflow = base.Workflow
		}
	}
	h.logs = append(h.logs, summary.ExecutionSummary(resp, h.logs, resultTemplates)...)
	h.response = resp

	if h.Exporter != nil {
		if err := h.Exporter.Export(ctx, h.queryID, h.shape.String(), resp); err != nil {
			slog.Warn("export failed", "query", h.queryID, "error", err)
			h.logs = append(h.logs, model.Warning("Failed to export results of query %s: %v", h.queryID, err))
		}
	}

	if h.Metrics != nil {
		h.Metrics.ObservePrune(stats.NodesRemoved, stats.EdgesRemoved, stats.AuxGraphsRemoved)
		h.Metrics.ResultsReturned.WithLabelValues(h.shape.String()).Observe(float64(len(results)))
		h.Metrics.AssemblyDurationSeconds.WithLabelValues(h.shape.String()).Observe(time.Since(start).Seconds())
	}
}

// appendOriginalCuries sets query_id on node bindings whose node was bound
// under a curie other than the one the caller asked for.
func (h *Handler) appendOriginalCuries(results []model.Result) {
	for i := range results {
		for qNodeID, bindings := range results[i].NodeBindings {
			qNode := h.originalQueryGraph.Nodes[qNodeID]
			if !qNode.Pinned() {
				continue
			}
			for j := range bindings {
				b := &bindings[j]
				if b.QueryID != "" || slices.Contains(qNode.IDs, b.ID) {
					continue
				}
				n, ok := h.graph.Nodes[b.ID]
				if !ok {
					continue
				}
				if slices.Contains(qNode.IDs, n.OriginalCurie) {
					b.QueryID = n.OriginalCurie
					continue
				}
				for _, id := range qNode.IDs {
					if n.HasCurie(id) {
						b.QueryID = id
						break
					}
				}
			}
		}
	}
}

func startSpan(ctx context.Context, name string, s shape.Shape) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, name, trace.WithAttributes(attribute.String("query.shape", s.String())))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
