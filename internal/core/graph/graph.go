// Package graph holds the query-scoped knowledge-graph store shared by the
// assembly pipeline: nodes, edges and auxiliary graphs keyed by id, with
// adjacency kept on the nodes.
//
// A Graph is owned by a single query and is not safe for concurrent use.
package graph

import (
	"slices"

	"github.com/agenthands/creative/internal/core/model"
)

type Graph struct {
	Nodes     map[string]*model.KGNode
	Edges     map[string]*model.KGEdge
	AuxGraphs map[string]*model.AuxiliaryGraph
}

func New() *Graph {
	return &Graph{
		Nodes:     make(map[string]*model.KGNode),
		Edges:     make(map[string]*model.KGEdge),
		AuxGraphs: make(map[string]*model.AuxiliaryGraph),
	}
}

// FromMessage builds a store over the message's knowledge graph and auxiliary
// graphs. The maps are shared, not copied: mutating the store mutates msg.
func FromMessage(msg *model.Message) *Graph {
	if msg.KnowledgeGraph == nil {
		msg.KnowledgeGraph = &model.KnowledgeGraph{}
	}
	if msg.KnowledgeGraph.Nodes == nil {
		msg.KnowledgeGraph.Nodes = make(map[string]*model.KGNode)
	}
	if msg.KnowledgeGraph.Edges == nil {
		msg.KnowledgeGraph.Edges = make(map[string]*model.KGEdge)
	}
	if msg.AuxiliaryGraphs == nil {
		msg.AuxiliaryGraphs = make(map[string]*model.AuxiliaryGraph)
	}
	g := &Graph{
		Nodes:     msg.KnowledgeGraph.Nodes,
		Edges:     msg.KnowledgeGraph.Edges,
		AuxGraphs: msg.AuxiliaryGraphs,
	}
	for id, n := range g.Nodes {
		hydrateNode(id, n)
	}
	for id, e := range g.Edges {
		e.ID = id
	}
	g.Reindex()
	return g
}

// hydrateNode fills the working fields of a node decoded from TRAPI JSON.
func hydrateNode(id string, n *model.KGNode) {
	n.ID = id
	if n.PrimaryCurie == "" {
		n.PrimaryCurie = id
	}
	if !slices.Contains(n.Curies, id) {
		n.Curies = append(n.Curies, id)
	}
	for _, attr := range n.Attributes {
		if attr.AttributeTypeID != model.AttrXref {
			continue
		}
		for _, curie := range model.StringValues(attr.Value) {
			if !slices.Contains(n.Curies, curie) {
				n.Curies = append(n.Curies, curie)
			}
		}
	}
	if n.Name != "" && !slices.Contains(n.Names, n.Name) {
		n.Names = append(n.Names, n.Name)
	}
	if n.Categories == nil {
		n.Categories = []string{}
	}
}

// Message renders the store as a TRAPI message. Maps are shared with the store.
func (g *Graph) Message(qg *model.QueryGraph, results []model.Result) model.Message {
	if results == nil {
		results = []model.Result{}
	}
	return model.Message{
		QueryGraph:      qg,
		KnowledgeGraph:  &model.KnowledgeGraph{Nodes: g.Nodes, Edges: g.Edges},
		AuxiliaryGraphs: g.AuxGraphs,
		Results:         results,
	}
}

// AddNode inserts n unless a node with the same id exists. Returns false when
// the node was already present; the existing node absorbs n's curies and names.
func (g *Graph) AddNode(n *model.KGNode) bool {
	if existing, ok := g.Nodes[n.ID]; ok {
		for _, c := range n.Curies {
			if !slices.Contains(existing.Curies, c) {
				existing.Curies = append(existing.Curies, c)
			}
		}
		for _, name := range n.Names {
			if !slices.Contains(existing.Names, name) {
				existing.Names = append(existing.Names, name)
			}
		}
		return false
	}
	if n.OutgoingEdges == nil {
		n.ResetAdjacency()
	}
	g.Nodes[n.ID] = n
	return true
}

// AddEdge inserts e unless an edge with the same id exists, attaching it to
// the adjacency of its endpoints. Returns false for an existing id.
func (g *Graph) AddEdge(e *model.KGEdge) bool {
	if _, ok := g.Edges[e.ID]; ok {
		return false
	}
	g.Edges[e.ID] = e
	g.attach(e)
	return true
}

// AddAuxGraph inserts an auxiliary graph unless the id is taken.
func (g *Graph) AddAuxGraph(id string, aux *model.AuxiliaryGraph) bool {
	if _, ok := g.AuxGraphs[id]; ok {
		return false
	}
	g.AuxGraphs[id] = aux
	return true
}

func (g *Graph) attach(e *model.KGEdge) {
	if n, ok := g.Nodes[e.Subject]; ok {
		n.AddOutgoingEdge(e.ID)
	}
	if n, ok := g.Nodes[e.Object]; ok {
		n.AddIncomingEdge(e.ID)
	}
}

// Reindex rebuilds every node's edge adjacency from the edge table.
func (g *Graph) Reindex() {
	for _, n := range g.Nodes {
		n.OutgoingEdges = make(map[string]struct{})
		n.IncomingEdges = make(map[string]struct{})
		if n.SourceQNodeIDs == nil {
			n.SourceQNodeIDs = make(map[string]struct{})
		}
		if n.TargetQNodeIDs == nil {
			n.TargetQNodeIDs = make(map[string]struct{})
		}
	}
	for _, e := range g.Edges {
		g.attach(e)
	}
}

// IndexBindings records, on each bound edge's endpoints, which query nodes the
// neighbouring node was bound through.
func (g *Graph) IndexBindings(qg *model.QueryGraph, results []model.Result) {
	for _, r := range results {
		for _, a := range r.Analyses {
			for qEdgeID, bindings := range a.EdgeBindings {
				qEdge, ok := qg.Edges[qEdgeID]
				if !ok {
					continue
				}
				for _, b := range bindings {
					e, ok := g.Edges[b.ID]
					if !ok {
						continue
					}
					if n, ok := g.Nodes[e.Subject]; ok {
						n.AddTargetQNodeID(qEdge.Object)
					}
					if n, ok := g.Nodes[e.Object]; ok {
						n.AddSourceQNodeID(qEdge.Subject)
					}
				}
			}
		}
	}
}

// SortedEdgeIDs returns edge ids in lexical order.
func (g *Graph) SortedEdgeIDs() []string {
	return sortedKeys(g.Edges)
}

// SortedNodeIDs returns node ids in lexical order.
func (g *Graph) SortedNodeIDs() []string {
	return sortedKeys(g.Nodes)
}
