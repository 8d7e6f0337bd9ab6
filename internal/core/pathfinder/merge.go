package pathfinder

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/agenthands/creative/internal/core/graph"
	"github.com/agenthands/creative/internal/core/model"
)

var ErrTemplateIndex = errors.New("template response references an unknown template")

// Merger folds executed templates into results shaped like the pathfinder
// query graph.
type Merger struct {
	Roles      *Roles
	QueryGraph *model.QueryGraph
	Templates  []Template
	// Aggregator is credited as the primary source of derived edges.
	Aggregator string
	// MaxResults caps the parsed results; zero keeps all.
	MaxResults int
}

func NewMerger(roles *Roles, qg *model.QueryGraph, templates []Template, aggregator string) *Merger {
	return &Merger{
		Roles:      roles,
		QueryGraph: qg,
		Templates:  templates,
		Aggregator: aggregator,
	}
}

type tripleKey struct {
	subject, unpinned, object string
}

type combinedResult struct {
	result model.Result
	seen   [2]map[string]struct{}
}

// Combine merges template responses into one bundle whose results bind the
// pathfinder query ids: one result per (subject, unpinned, object) triple,
// with each intermediate query edge bound to edges realising that hop.
// Responses are processed in template order, so arrival order is irrelevant.
// Template logs are not carried over; RunTemplates already reports them. A hop
// whose bound edges do not all resolve is dropped with a warning.
func (m *Merger) Combine(responses []TemplateResponse) (*model.Response, error) {
	sorted := slices.Clone(responses)
	slices.SortStableFunc(sorted, func(a, b TemplateResponse) int { return cmp.Compare(a.Index, b.Index) })

	g := graph.New()
	for _, tr := range sorted {
		if tr.Index < 0 || tr.Index >= len(m.Templates) {
			return nil, fmt.Errorf("%w: %d", ErrTemplateIndex, tr.Index)
		}
		if tr.Response != nil {
			g.Merge(&tr.Response.Message)
		}
	}

	var (
		order []tripleKey
		logs  []model.LogEntry
	)
	combined := make(map[tripleKey]*combinedResult)
	for _, tr := range sorted {
		if tr.Response == nil {
			continue
		}
		tmpl := m.Templates[tr.Index]
		for _, r := range tr.Response.Message.Results {
			key, ok := templateTriple(r)
			if !ok {
				slog.Debug("skipping template result without a full path binding", "template", tr.Index+1)
				continue
			}
			cr, exists := combined[key]
			if !exists {
				cr = m.newCombinedResult(key, r)
				combined[key] = cr
				order = append(order, key)
			}
			ends := [2][2]string{{key.subject, key.unpinned}, {key.unpinned, key.object}}
			for hop := range 2 {
				segment, missing := segmentEdges(r, tmpl.Hops[hop], g)
				if len(missing) > 0 {
					logs = append(logs, model.Warning("%s Skipping hop %s -> %s: %s missing from the knowledge graph.",
						TemplateTag(tr.Index), ends[hop][0], ends[hop][1], strings.Join(missing, ", ")))
					continue
				}
				for _, edgeID := range m.realiseHop(g, hop, ends[hop], segment) {
					if _, dup := cr.seen[hop][edgeID]; dup {
						continue
					}
					cr.seen[hop][edgeID] = struct{}{}
					qEdgeID := m.Roles.IntermediateEdges[hop]
					bindings := cr.result.Analyses[0].EdgeBindings
					bindings[qEdgeID] = append(bindings[qEdgeID], model.EdgeBinding{ID: edgeID, Attributes: []model.Attribute{}})
				}
			}
		}
	}

	results := make([]model.Result, 0, len(order))
	for _, key := range order {
		cr := combined[key]
		if len(cr.seen[0]) == 0 || len(cr.seen[1]) == 0 {
			continue
		}
		results = append(results, cr.result)
	}

	return &model.Response{Message: g.Message(m.QueryGraph, results), Logs: logs}, nil
}

func templateTriple(r model.Result) (tripleKey, bool) {
	sub, un, obj := r.NodeBindings[NodeSubject], r.NodeBindings[NodeUnpinned], r.NodeBindings[NodeObject]
	if len(sub) == 0 || len(un) == 0 || len(obj) == 0 {
		return tripleKey{}, false
	}
	return tripleKey{sub[0].ID, un[0].ID, obj[0].ID}, true
}

func (m *Merger) newCombinedResult(key tripleKey, r model.Result) *combinedResult {
	binding := func(qNodeID, id string) []model.NodeBinding {
		b := model.NodeBinding{ID: id, Attributes: []model.Attribute{}}
		if src := r.NodeBindings[qNodeID]; len(src) > 0 {
			b.QueryID = src[0].QueryID
		}
		return []model.NodeBinding{b}
	}
	return &combinedResult{
		result: model.Result{
			NodeBindings: map[string][]model.NodeBinding{
				m.Roles.SubjectNodeID:  binding(NodeSubject, key.subject),
				m.Roles.UnpinnedNodeID: binding(NodeUnpinned, key.unpinned),
				m.Roles.ObjectNodeID:   binding(NodeObject, key.object),
			},
			Analyses: []model.Analysis{{EdgeBindings: map[string][]model.EdgeBinding{}}},
		},
		seen: [2]map[string]struct{}{{}, {}},
	}
}

// segmentEdges collects the edges a template result bound to the given
// segment keys, in key order. Every key must be bound and every bound id must
// resolve in the store; otherwise the unresolved keys or ids are returned and
// the segment is unusable.
func segmentEdges(r model.Result, keys []string, g *graph.Graph) (ids, missing []string) {
	for _, key := range keys {
		bound := false
		for _, a := range r.Analyses {
			for _, b := range a.EdgeBindings[key] {
				bound = true
				if _, ok := g.Edges[b.ID]; !ok {
					missing = append(missing, b.ID)
					continue
				}
				if !slices.Contains(ids, b.ID) {
					ids = append(ids, b.ID)
				}
			}
		}
		if !bound {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, missing
	}
	return ids, nil
}

// realiseHop returns the edges to bind for one hop. A single edge already
// oriented like the query edge is bound as is; anything else is represented
// by a hop edge supported by the segment's edges.
func (m *Merger) realiseHop(g *graph.Graph, hop int, ends [2]string, segment []string) []string {
	if len(segment) == 0 {
		return nil
	}
	qEdge := m.QueryGraph.Edges[m.Roles.IntermediateEdges[hop]]
	pathStart := m.Roles.SubjectNodeID
	if hop == 1 {
		pathStart = m.Roles.UnpinnedNodeID
	}
	subject, object := ends[0], ends[1]
	if qEdge.Subject != pathStart {
		subject, object = object, subject
	}

	if len(segment) == 1 {
		e := g.Edges[segment[0]]
		if e.Subject == subject && e.Object == object {
			return segment
		}
	}

	support := slices.Sorted(slices.Values(segment))
	auxID := graph.PathSupportGraphID(support)
	g.AddAuxGraph(auxID, model.NewAuxiliaryGraph(support))
	hopEdge := g.EnsureInferredEdge(graph.HopEdgeID(subject, object), subject, model.PredicateRelatedTo, object, m.Aggregator)
	hopEdge.AddSupportGraph(auxID)
	return []string{hopEdge.ID}
}

// Parse turns a combined bundle into pathfinder results. Each result gains a
// binding of the main query edge to a derived subject→object edge, supported
// by a per-result auxiliary graph listing the edges behind both intermediate
// hops. The bundle's knowledge graph is updated in place. Parsing an already
// parsed response yields the same response.
func (m *Merger) Parse(bundle *model.Response) *model.Response {
	msg := &bundle.Message
	g := graph.FromMessage(msg)
	logs := slices.Clone(bundle.Logs)

	mainQ := m.QueryGraph.Edges[m.Roles.MainEdgeID]
	predicate := model.PredicateRelatedTo
	if len(mainQ.Predicates) == 1 {
		predicate = mainQ.Predicates[0]
	}

	var order []tripleKey
	parsed := make(map[tripleKey]*model.Result)
	for _, r := range msg.Results {
		key, ok := m.pathTriple(r)
		if !ok {
			logs = append(logs, model.Warning("Skipping pathfinder result without subject, intermediate and object bindings."))
			continue
		}
		hops, ok := m.intermediateBindings(g, r)
		if !ok {
			logs = append(logs, model.Warning("Skipping pathfinder result through %s: intermediate edges are missing from the knowledge graph.", key.unpinned))
			continue
		}
		if existing, ok := parsed[key]; ok {
			mergeEdgeBindings(existing.Analyses[0].EdgeBindings, m.Roles.IntermediateEdges, hops)
			continue
		}
		parsed[key] = &model.Result{
			NodeBindings: map[string][]model.NodeBinding{
				m.Roles.SubjectNodeID:  {r.NodeBindings[m.Roles.SubjectNodeID][0]},
				m.Roles.UnpinnedNodeID: {r.NodeBindings[m.Roles.UnpinnedNodeID][0]},
				m.Roles.ObjectNodeID:   {r.NodeBindings[m.Roles.ObjectNodeID][0]},
			},
			Analyses: []model.Analysis{{
				ResourceID: r.Analyses[0].ResourceID,
				Score:      r.Analyses[0].Score,
				EdgeBindings: map[string][]model.EdgeBinding{
					m.Roles.IntermediateEdges[0]: hops[0],
					m.Roles.IntermediateEdges[1]: hops[1],
				},
			}},
		}
		order = append(order, key)
	}

	if m.MaxResults > 0 && len(order) > m.MaxResults {
		logs = append(logs, model.Info("Pathfinder returned %d results, keeping the first %d.", len(order), m.MaxResults))
		order = order[:m.MaxResults]
	}

	for _, key := range order {
		res := parsed[key]
		bound := map[string]string{
			m.Roles.SubjectNodeID:  key.subject,
			m.Roles.UnpinnedNodeID: key.unpinned,
			m.Roles.ObjectNodeID:   key.object,
		}
		mainSub, mainObj := bound[mainQ.Subject], bound[mainQ.Object]
		mainEdge := g.EnsureInferredEdge(graph.PathfinderEdgeID(mainSub, predicate, mainObj), mainSub, predicate, mainObj, m.Aggregator)

		var intermediate []string
		for _, qEdgeID := range m.Roles.IntermediateEdges {
			for _, b := range res.Analyses[0].EdgeBindings[qEdgeID] {
				intermediate = append(intermediate, b.ID)
			}
		}
		auxID := graph.PathfinderSupportGraphID(key.subject, key.unpinned, key.object)
		g.AuxGraphs[auxID] = model.NewAuxiliaryGraph(g.SupportingEdges(intermediate...))
		mainEdge.AddSupportGraph(auxID)
		res.Analyses[0].EdgeBindings[m.Roles.MainEdgeID] = []model.EdgeBinding{{ID: mainEdge.ID, Attributes: []model.Attribute{}}}
	}

	results := make([]model.Result, 0, len(order))
	for _, key := range order {
		results = append(results, *parsed[key])
	}

	return &model.Response{
		Description:    model.SuccessDescription(len(results)),
		SchemaVersion:  bundle.SchemaVersion,
		BiolinkVersion: bundle.BiolinkVersion,
		Workflow:       bundle.Workflow,
		Message:        g.Message(m.QueryGraph, results),
		Logs:           logs,
	}
}

func (m *Merger) pathTriple(r model.Result) (tripleKey, bool) {
	sub := r.NodeBindings[m.Roles.SubjectNodeID]
	un := r.NodeBindings[m.Roles.UnpinnedNodeID]
	obj := r.NodeBindings[m.Roles.ObjectNodeID]
	if len(sub) == 0 || len(un) == 0 || len(obj) == 0 || len(r.Analyses) == 0 {
		return tripleKey{}, false
	}
	return tripleKey{sub[0].ID, un[0].ID, obj[0].ID}, true
}

// intermediateBindings gathers the bindings of both intermediate query edges
// across the result's analyses. Both hops must be bound to stored edges.
func (m *Merger) intermediateBindings(g *graph.Graph, r model.Result) ([2][]model.EdgeBinding, bool) {
	var hops [2][]model.EdgeBinding
	for hop, qEdgeID := range m.Roles.IntermediateEdges {
		seen := make(map[string]struct{})
		for _, a := range r.Analyses {
			for _, b := range a.EdgeBindings[qEdgeID] {
				if _, ok := g.Edges[b.ID]; !ok {
					return hops, false
				}
				if _, dup := seen[b.ID]; dup {
					continue
				}
				seen[b.ID] = struct{}{}
				if b.Attributes == nil {
					b.Attributes = []model.Attribute{}
				}
				hops[hop] = append(hops[hop], b)
			}
		}
		if len(hops[hop]) == 0 {
			return hops, false
		}
	}
	return hops, true
}

func mergeEdgeBindings(dst map[string][]model.EdgeBinding, qEdgeIDs [2]string, hops [2][]model.EdgeBinding) {
	for hop, qEdgeID := range qEdgeIDs {
		for _, b := range hops[hop] {
			if !slices.ContainsFunc(dst[qEdgeID], func(x model.EdgeBinding) bool { return x.ID == b.ID }) {
				dst[qEdgeID] = append(dst[qEdgeID], b)
			}
		}
	}
}
