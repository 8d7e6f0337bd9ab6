package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/agenthands/creative/internal/config"
	"github.com/agenthands/creative/internal/core/graph"
	"github.com/agenthands/creative/internal/core/model"
	"github.com/agenthands/creative/internal/core/pathfinder"
	"github.com/agenthands/creative/internal/core/shape"
	"github.com/agenthands/creative/internal/core/subclass"
	"github.com/agenthands/creative/internal/telemetry"
)

var (
	ErrQueryGraphNotSet  = errors.New("query graph not set")
	ErrInvalidQueryGraph = errors.New("invalid query graph")
)

// Resolver maps curies to their normalised entities.
type Resolver interface {
	Resolve(ctx context.Context, curies []string) (map[string]model.ResolvedEntity, error)
}

// Exporter persists an assembled response.
type Exporter interface {
	Export(ctx context.Context, queryID, shape string, resp *model.Response) error
}

// Handler answers one query: it expands the query graph, dispatches on its
// shape, and assembles the executed results into a pruned response.
// A Handler is not safe for concurrent use; create one per query.
type Handler struct {
	Resolver Resolver
	Lookup   subclass.DescendantLookup
	Executor pathfinder.Executor
	Exporter Exporter
	Metrics  *telemetry.Metrics
	Config   *config.Config

	queryID            string
	originalQueryGraph *model.QueryGraph
	queryGraph         *model.QueryGraph
	shape              shape.Shape
	expansions         subclass.Expansions
	graph              *graph.Graph
	logs               []model.LogEntry
	response           *model.Response
}

func NewHandler(cfg *config.Config, resolver Resolver, lookup subclass.DescendantLookup, exec pathfinder.Executor) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Handler{
		Resolver: resolver,
		Lookup:   lookup,
		Executor: exec,
		Config:   cfg,
		graph:    graph.New(),
	}
}

func (h *Handler) QueryID() string        { return h.queryID }
func (h *Handler) Shape() shape.Shape     { return h.shape }
func (h *Handler) Logs() []model.LogEntry { return h.logs }

// SetQueryGraph stores a copy of qg and classifies it. Pinned nodes of
// queries without inferred edges are expanded to their descendants.
func (h *Handler) SetQueryGraph(ctx context.Context, qg *model.QueryGraph) error {
	if qg == nil || len(qg.Nodes) == 0 {
		return fmt.Errorf("%w: no nodes", ErrInvalidQueryGraph)
	}
	for id, n := range qg.Nodes {
		if n == nil {
			return fmt.Errorf("%w: node %s is null", ErrInvalidQueryGraph, id)
		}
	}
	for id, e := range qg.Edges {
		if e == nil {
			return fmt.Errorf("%w: edge %s is null", ErrInvalidQueryGraph, id)
		}
		if qg.Nodes[e.Subject] == nil || qg.Nodes[e.Object] == nil {
			return fmt.Errorf("%w: edge %s references an unknown node", ErrInvalidQueryGraph, id)
		}
	}

	h.queryID = uuid.NewString()
	h.originalQueryGraph = qg.Clone()
	h.queryGraph = qg.Clone()
	h.shape = shape.Classify(h.queryGraph)
	h.expansions = subclass.Expansions{}
	h.logs = append(h.logs, model.Debug("Query %s classified as %s.", h.queryID, h.shape))

	if shape.IsInferred(h.queryGraph) || h.Lookup == nil {
		return nil
	}
	expansions, logs, err := subclass.Expand(ctx, h.queryGraph, h.Lookup)
	h.logs = append(h.logs, logs...)
	if err != nil {
		return fmt.Errorf("expand query graph: %w", err)
	}
	h.expansions = expansions
	return nil
}

// AddQueryNodes resolves every queried curie and adds the resolved entities
// to the graph, remembering the curie each one was asked for as.
func (h *Handler) AddQueryNodes(ctx context.Context) error {
	if h.queryGraph == nil {
		return ErrQueryGraphNotSet
	}
	if h.Resolver == nil {
		return nil
	}

	qNodeByCurie := make(map[string]string)
	var curies []string
	for _, qNodeID := range sortedKeys(h.queryGraph.Nodes) {
		for _, id := range h.queryGraph.Nodes[qNodeID].IDs {
			if _, seen := qNodeByCurie[id]; !seen {
				qNodeByCurie[id] = qNodeID
				curies = append(curies, id)
			}
		}
	}
	if len(curies) == 0 {
		return nil
	}

	resolved, err := h.Resolver.Resolve(ctx, curies)
	if err != nil {
		return fmt.Errorf("resolve query curies: %w", err)
	}
	for _, original := range sortedKeys(resolved) {
		entity := resolved[original]
		if _, ok := h.graph.Nodes[entity.PrimaryID]; ok || entity.PrimaryID == "" {
			continue
		}
		qNodeID := qNodeByCurie[original]
		category := "biolink:NamedThing"
		switch {
		case len(entity.PrimaryTypes) > 0:
			category = entity.PrimaryTypes[0]
			if !strings.HasPrefix(category, "biolink:") {
				category = "biolink:" + category
			}
		case qNodeID != "" && len(h.queryGraph.Nodes[qNodeID].Categories) > 0:
			category = h.queryGraph.Nodes[qNodeID].Categories[0]
		}
		h.graph.AddNode(model.NewKGNode(entity.PrimaryID, model.KGNodeInfo{
			PrimaryCurie:  entity.PrimaryID,
			QNodeID:       qNodeID,
			OriginalCurie: original,
			Curies:        entity.EquivalentIDs,
			Names:         entity.LabelAliases,
			SemanticType:  []string{category},
			Label:         entity.Label,
		}))
	}
	return nil
}

// checkConstraints logs and reports whether the query uses constraints,
// which are not supported.
func (h *Handler) checkConstraints() bool {
	var names []string
	add := func(cs []model.Constraint) {
		for _, c := range cs {
			if !slices.Contains(names, c.Name) {
				names = append(names, c.Name)
			}
		}
	}
	for _, id := range sortedKeys(h.queryGraph.Nodes) {
		add(h.queryGraph.Nodes[id].Constraints)
	}
	for _, id := range sortedKeys(h.queryGraph.Edges) {
		add(h.queryGraph.Edges[id].AttributeConstraints)
	}
	if len(names) == 0 {
		return false
	}
	h.logs = append(h.logs,
		model.Error("UnsupportedAttributeConstraint", "Unsupported Attribute Constraints: [%s]", strings.Join(names, ", ")),
		model.Error("", "%s does not currently support any type of constraint. Your query Terminates.", h.Config.Provenance.ToolName),
	)
	return true
}

// Query executes the query graph and assembles the response. Shape problems
// end the query with a logged warning and an empty response; only execution
// and rebinding failures are returned.
func (h *Handler) Query(ctx context.Context) (err error) {
	if h.queryGraph == nil {
		return ErrQueryGraphNotSet
	}
	ctx, span := startSpan(ctx, "query", h.shape)
	defer func() { endSpan(span, err) }()
	defer func() { h.countQuery(err) }()

	if err := h.AddQueryNodes(ctx); err != nil {
		return err
	}
	if h.checkConstraints() {
		return nil
	}

	switch {
	case h.shape == shape.Pathfinder:
		return h.queryPathfinder(ctx)
	case shape.IsInferred(h.queryGraph) && !shape.IsOneHop(h.queryGraph):
		msg := "Inferred Mode edges are only supported in single-edge queries. Your query terminates."
		slog.Debug(msg, "query", h.queryID)
		h.logs = append(h.logs, model.Warning("%s", msg))
		return nil
	default:
		return h.queryStandard(ctx)
	}
}

func (h *Handler) queryStandard(ctx context.Context) error {
	if h.Executor == nil {
		return fmt.Errorf("execute query: no executor configured")
	}
	resp, err := h.Executor.Execute(ctx, h.queryGraph)
	if err != nil {
		h.logs = append(h.logs, model.Error("QueryExecutionError", "Query execution failed: %v", err))
		return fmt.Errorf("execute query: %w", err)
	}
	h.logs = append(h.logs, resp.Logs...)
	return h.Assemble(ctx, resp)
}

func (h *Handler) queryPathfinder(ctx context.Context) (err error) {
	ctx, span := startSpan(ctx, "pathfinderExecution", h.shape)
	defer func() { endSpan(span, err) }()

	roles, err := pathfinder.Extract(h.queryGraph)
	if err != nil {
		h.logs = append(h.logs, model.Warning("%v. Your query terminates.", err))
		return nil
	}
	qg := h.queryGraph
	templates := pathfinder.GenerateTemplates(qg.Nodes[roles.SubjectNodeID], qg.Nodes[roles.UnpinnedNodeID], qg.Nodes[roles.ObjectNodeID])
	h.logs = append(h.logs, model.Info("Generated %d templates for pathfinder query", len(templates)))

	if h.Executor == nil {
		return fmt.Errorf("run templates: no executor configured")
	}
	responses, logs, err := pathfinder.RunTemplates(ctx, h.Executor, templates, h.Config.Pathfinder.TemplateConcurrency)
	h.logs = append(h.logs, logs...)
	if h.Metrics != nil {
		h.Metrics.TemplatesTotal.WithLabelValues("ok").Add(float64(len(responses)))
		h.Metrics.TemplatesTotal.WithLabelValues("failed").Add(float64(len(templates) - len(responses)))
	}
	if err != nil {
		return err
	}

	merger := pathfinder.NewMerger(roles, h.originalQueryGraph, templates, h.Config.Provenance.Source())
	merger.MaxResults = h.Config.Pathfinder.MaxResults
	bundle, err := merger.Combine(responses)
	if err != nil {
		return fmt.Errorf("combine templates: %w", err)
	}
	parsed := merger.Parse(bundle)
	h.logs = append(h.logs, parsed.Logs...)

	var resultTemplates []int
	for _, r := range responses {
		if len(r.Response.Message.Results) > 0 {
			resultTemplates = append(resultTemplates, r.Index)
		}
	}
	slices.Sort(resultTemplates)
	if resultTemplates == nil {
		resultTemplates = []int{}
	}

	h.graph.Merge(&parsed.Message)
	h.finalize(ctx, parsed.Message.Results, resultTemplates, parsed)
	return nil
}

// Response returns the assembled response, or an empty one carrying the
// logs when the query ended early.
func (h *Handler) Response() *model.Response {
	if h.response != nil {
		h.response.Logs = h.logs
		return h.response
	}
	return &model.Response{
		Description: model.SuccessDescription(0),
		Workflow:    []model.WorkflowStep{{ID: "lookup_and_score"}},
		Message:     h.graph.Message(h.originalQueryGraph, nil),
		Logs:        h.logs,
	}
}

func (h *Handler) countQuery(err error) {
	if h.Metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case h.response == nil:
		outcome = "terminated"
	}
	h.Metrics.QueriesTotal.WithLabelValues(h.shape.String(), outcome).Inc()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
