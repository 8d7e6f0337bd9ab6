package graph

import (
	"slices"

	"github.com/agenthands/creative/internal/core/model"
)

// NewInferredEdge builds a derived edge backed by support graphs. The
// aggregator is credited as its primary knowledge source.
func NewInferredEdge(id, subject, predicate, object, aggregator string) *model.KGEdge {
	e := model.NewKGEdge(id, model.KGEdgeInfo{Subject: subject, Object: object, Predicate: predicate})
	e.EnsureSupportGraphs()
	e.AddAttribute(model.AttrKnowledgeLevel, model.LogicalEntailment)
	e.AddAttribute(model.AttrAgentType, model.AutomatedAgent)
	e.AddSources(model.RetrievalSource{ResourceID: aggregator, ResourceRole: model.RolePrimary})
	return e
}

// EnsureInferredEdge returns the edge stored under id, creating it with
// NewInferredEdge when absent.
func (g *Graph) EnsureInferredEdge(id, subject, predicate, object, aggregator string) *model.KGEdge {
	if e, ok := g.Edges[id]; ok {
		return e
	}
	e := NewInferredEdge(id, subject, predicate, object, aggregator)
	g.AddEdge(e)
	return e
}

// Merge upserts the message's nodes, edges and auxiliary graphs into the
// store. Entries already present win; a node seen twice keeps the union of
// its equivalent curies.
func (g *Graph) Merge(msg *model.Message) {
	if msg.KnowledgeGraph != nil {
		for _, id := range sortedKeys(msg.KnowledgeGraph.Nodes) {
			n := msg.KnowledgeGraph.Nodes[id]
			hydrateNode(id, n)
			g.AddNode(n)
		}
		for _, id := range sortedKeys(msg.KnowledgeGraph.Edges) {
			e := msg.KnowledgeGraph.Edges[id]
			e.ID = id
			g.AddEdge(e)
		}
	}
	for id, aux := range msg.AuxiliaryGraphs {
		g.AddAuxGraph(id, aux)
	}
	g.Reindex()
}

// SupportingEdges expands edgeIDs one level through their support graphs: an
// edge with support graphs contributes the edges those graphs list, an edge
// without contributes itself. The result is sorted and deduplicated.
func (g *Graph) SupportingEdges(edgeIDs ...string) []string {
	var out []string
	for _, id := range edgeIDs {
		e, ok := g.Edges[id]
		if !ok {
			out = append(out, id)
			continue
		}
		supported := false
		for _, auxID := range e.SupportGraphs() {
			aux, ok := g.AuxGraphs[auxID]
			if !ok {
				continue
			}
			supported = true
			out = append(out, aux.Edges...)
		}
		if !supported {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
