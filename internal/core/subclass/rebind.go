package subclass

import (
	"errors"
	"fmt"
	"slices"

	"github.com/agenthands/creative/internal/core/graph"
	"github.com/agenthands/creative/internal/core/model"
)

// ErrDanglingBinding is returned when a result binds an edge, node or query
// edge that the store does not know.
var ErrDanglingBinding = errors.New("result binding references an unknown id")

// Rebinder rewrites results bound to expanded descendants so that they bind
// the queried ancestors instead.
type Rebinder struct {
	Graph *graph.Graph
	// QueryGraph is the query graph the results were bound against.
	QueryGraph *model.QueryGraph
	// OriginalQueryGraph holds the ids the caller asked for, before expansion.
	OriginalQueryGraph *model.QueryGraph
	Expansions         Expansions
	// Aggregator is credited on every edge the rebinder creates.
	Aggregator string
}

type rebinding struct {
	newNode        string
	subclassEdgeID string
}

// Rebind runs the rebinding over results and returns them rewritten. Running
// it again over its own output changes nothing.
func (r *Rebinder) Rebind(results []model.Result) ([]model.Result, error) {
	nodesToRebind := r.addSubclassEdges()
	if len(nodesToRebind) == 0 {
		return results, nil
	}
	edgesToRebind, created := r.addShortcutEdges(nodesToRebind)

	bound := make(map[string]struct{})
	for i := range results {
		if err := r.rebindResult(&results[i], nodesToRebind, edgesToRebind); err != nil {
			return nil, err
		}
		for _, id := range results[i].EdgeIDs() {
			bound[id] = struct{}{}
		}
	}

	for auxID, consumers := range created {
		used := slices.ContainsFunc(consumers, func(edgeID string) bool {
			_, ok := bound[edgeID]
			return ok
		})
		if !used {
			delete(r.Graph.AuxGraphs, auxID)
		}
	}
	return results, nil
}

// addSubclassEdges links every node that absorbed an expanded curie to the
// node of the queried ancestor, and returns node → query node → rebinding.
func (r *Rebinder) addSubclassEdges() map[string]map[string]rebinding {
	primaryByOriginal := make(map[string]string)
	expandedByPrimary := make(map[string][]string)
	originalIDs := r.originalIDs()

	for _, nodeID := range r.Graph.SortedNodeIDs() {
		node := r.Graph.Nodes[nodeID]
		for _, id := range originalIDs {
			if node.HasCurie(id) {
				primaryByOriginal[id] = nodeID
			}
		}
		for _, id := range sortedKeys(r.Expansions) {
			if node.HasCurie(id) {
				expandedByPrimary[nodeID] = append(expandedByPrimary[nodeID], id)
			}
		}
	}

	nodesToRebind := make(map[string]map[string]rebinding)
	for _, subject := range sortedKeys(expandedByPrimary) {
		for _, expanded := range expandedByPrimary[subject] {
			for _, original := range sortedKeys(r.Expansions[expanded]) {
				object, ok := primaryByOriginal[original]
				if !ok || subject == object {
					continue
				}
				origin := r.Expansions[expanded][original]
				edgeID := graph.SubclassEdgeID(subject, object)
				if _, exists := r.Graph.Edges[edgeID]; !exists {
					e := model.NewKGEdge(edgeID, model.KGEdgeInfo{Subject: subject, Object: object, Predicate: model.PredicateSubclassOf})
					e.AddAttribute(model.AttrKnowledgeLevel, model.KnowledgeAssertion)
					e.AddAttribute(model.AttrAgentType, model.ManualAgent)
					e.AddSources(
						model.RetrievalSource{ResourceID: KnowledgeSource(origin.Source), ResourceRole: model.RolePrimary},
						model.RetrievalSource{ResourceID: r.Aggregator, ResourceRole: model.RoleAggregator},
					)
					r.Graph.AddEdge(e)
				}
				if nodesToRebind[subject] == nil {
					nodesToRebind[subject] = make(map[string]rebinding)
				}
				for _, qNodeID := range origin.QNodes {
					nodesToRebind[subject][qNodeID] = rebinding{newNode: object, subclassEdgeID: edgeID}
				}
			}
		}
	}
	return nodesToRebind
}

func (r *Rebinder) originalIDs() []string {
	var ids []string
	if r.OriginalQueryGraph == nil {
		return ids
	}
	for _, n := range r.OriginalQueryGraph.Nodes {
		for _, id := range n.IDs {
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	slices.Sort(ids)
	return ids
}

// endpointSupport groups, for one edge endpoint, the subclass edges that
// justify each node it can be rebound to. The endpoint itself needs none.
func endpointSupport(node string, rebinds map[string]rebinding) map[string][]string {
	support := map[string][]string{node: nil}
	for _, qNodeID := range sortedKeys(rebinds) {
		rb := rebinds[qNodeID]
		if !slices.Contains(support[rb.newNode], rb.subclassEdgeID) {
			support[rb.newNode] = append(support[rb.newNode], rb.subclassEdgeID)
		}
	}
	return support
}

// addShortcutEdges creates a via_subclass edge for every way of re-expressing
// a retrieved edge on rebound endpoints. It returns edge → subject → object →
// shortcut id, and the support graphs it created with their consuming edges.
func (r *Rebinder) addShortcutEdges(nodesToRebind map[string]map[string]rebinding) (map[string]map[string]map[string]string, map[string][]string) {
	edgesToRebind := make(map[string]map[string]map[string]string)
	created := make(map[string][]string)

	for _, edgeID := range r.Graph.SortedEdgeIDs() {
		if graph.IsSubclassEdgeID(edgeID) || graph.IsViaSubclassEdgeID(edgeID) {
			continue
		}
		e := r.Graph.Edges[edgeID]
		if nodesToRebind[e.Subject] == nil && nodesToRebind[e.Object] == nil {
			continue
		}
		subjects := endpointSupport(e.Subject, nodesToRebind[e.Subject])
		objects := endpointSupport(e.Object, nodesToRebind[e.Object])

		for _, subject := range sortedKeys(subjects) {
			for _, object := range sortedKeys(objects) {
				if subject == e.Subject && object == e.Object {
					continue
				}
				support := append(slices.Clone(subjects[subject]), objects[object]...)
				support = append(support, edgeID)

				shortcutID := graph.ViaSubclassEdgeID(subject, e.Predicate, object)
				auxID, isNew := r.supportGraphFor(shortcutID, support)
				if isNew {
					r.Graph.AddAuxGraph(auxID, model.NewAuxiliaryGraph(support))
				}
				if _, tracked := created[auxID]; tracked || isNew {
					if !slices.Contains(created[auxID], shortcutID) {
						created[auxID] = append(created[auxID], shortcutID)
					}
				}

				shortcut := r.Graph.EnsureInferredEdge(shortcutID, subject, e.Predicate, object, r.Aggregator)
				shortcut.AddSupportGraph(auxID)

				if edgesToRebind[edgeID] == nil {
					edgesToRebind[edgeID] = make(map[string]map[string]string)
				}
				if edgesToRebind[edgeID][subject] == nil {
					edgesToRebind[edgeID][subject] = make(map[string]string)
				}
				edgesToRebind[edgeID][subject][object] = shortcutID
			}
		}
	}
	return edgesToRebind, created
}

// supportGraphFor returns the support graph of shortcutID listing exactly
// edges, or the first free suffixed id when there is none.
func (r *Rebinder) supportGraphFor(shortcutID string, edges []string) (string, bool) {
	for k := 0; ; k++ {
		id := graph.SubclassSupportGraphID(k, shortcutID)
		aux, ok := r.Graph.AuxGraphs[id]
		if !ok {
			return id, true
		}
		if slices.Equal(aux.Edges, edges) {
			return id, false
		}
	}
}

func (r *Rebinder) rebindResult(res *model.Result, nodesToRebind map[string]map[string]rebinding, edgesToRebind map[string]map[string]map[string]string) error {
	for a := range res.Analyses {
		analysis := &res.Analyses[a]
		for _, qEdgeID := range sortedKeys(analysis.EdgeBindings) {
			qEdge, ok := r.QueryGraph.Edges[qEdgeID]
			if !ok {
				return fmt.Errorf("%w: query edge %s", ErrDanglingBinding, qEdgeID)
			}
			var rewritten []model.EdgeBinding
			seen := make(map[string]struct{})
			for _, b := range analysis.EdgeBindings[qEdgeID] {
				e, ok := r.Graph.Edges[b.ID]
				if !ok {
					return fmt.Errorf("%w: edge %s", ErrDanglingBinding, b.ID)
				}
				subQ, objQ := qEdge.Subject, qEdge.Object
				if !bindsNode(res, subQ, e.Subject) && bindsNode(res, objQ, e.Subject) {
					subQ, objQ = objQ, subQ
				}
				subject, object := e.Subject, e.Object
				if rb, ok := nodesToRebind[e.Subject][subQ]; ok {
					subject = rb.newNode
				}
				if rb, ok := nodesToRebind[e.Object][objQ]; ok {
					object = rb.newNode
				}

				if shortcutID, ok := edgesToRebind[b.ID][subject][object]; ok {
					b = model.EdgeBinding{ID: shortcutID, Attributes: []model.Attribute{}}
				}
				if _, dup := seen[b.ID]; dup {
					continue
				}
				seen[b.ID] = struct{}{}
				rewritten = append(rewritten, b)
			}
			analysis.EdgeBindings[qEdgeID] = rewritten
		}
	}

	for _, qNodeID := range sortedKeys(res.NodeBindings) {
		var rewritten []model.NodeBinding
		seen := make(map[string]struct{})
		for _, b := range res.NodeBindings[qNodeID] {
			if _, ok := r.Graph.Nodes[b.ID]; !ok {
				return fmt.Errorf("%w: node %s", ErrDanglingBinding, b.ID)
			}
			if rb, ok := nodesToRebind[b.ID][qNodeID]; ok {
				b = model.NodeBinding{ID: rb.newNode, Attributes: []model.Attribute{}}
			}
			if _, dup := seen[b.ID]; dup {
				continue
			}
			seen[b.ID] = struct{}{}
			rewritten = append(rewritten, b)
		}
		res.NodeBindings[qNodeID] = rewritten
	}
	return nil
}

func bindsNode(res *model.Result, qNodeID, nodeID string) bool {
	return slices.ContainsFunc(res.NodeBindings[qNodeID], func(b model.NodeBinding) bool { return b.ID == nodeID })
}
