package graph

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/agenthands/creative/internal/core/model"
)

var ErrInvariantViolated = errors.New("pruned graph invariant violated")

// PruneStats reports what a prune kept and removed. Missing* list references
// that pointed at entries absent from the store; a non-empty list means an
// upstream component produced a dangling id.
type PruneStats struct {
	NodesKept        int
	NodesRemoved     int
	EdgesKept        int
	EdgesRemoved     int
	AuxGraphsKept    int
	AuxGraphsRemoved int
	MissingNodes     []string
	MissingEdges     []string
	MissingAuxGraphs []string
}

func (s PruneStats) Clean() bool {
	return len(s.MissingNodes) == 0 && len(s.MissingEdges) == 0 && len(s.MissingAuxGraphs) == 0
}

// Reachable marks every edge, auxiliary graph and node transitively reachable
// from the results' edge bindings. Auxiliary graphs may nest: an edge listed in
// a support graph may itself carry support graphs. Edge endpoints and node
// bindings absent from the store are reported in stats.MissingNodes.
func (g *Graph) Reachable(results []model.Result) (nodes, edges, auxGraphs map[string]struct{}, stats PruneStats) {
	nodes = make(map[string]struct{})
	edges = make(map[string]struct{})
	auxGraphs = make(map[string]struct{})

	var queue []string
	enqueue := func(edgeID string) {
		if _, seen := edges[edgeID]; seen {
			return
		}
		edges[edgeID] = struct{}{}
		queue = append(queue, edgeID)
	}

	for _, r := range results {
		for _, id := range r.EdgeIDs() {
			enqueue(id)
		}
	}

	for len(queue) > 0 {
		edgeID := queue[0]
		queue = queue[1:]

		e, ok := g.Edges[edgeID]
		if !ok {
			stats.MissingEdges = append(stats.MissingEdges, edgeID)
			continue
		}
		nodes[e.Subject] = struct{}{}
		nodes[e.Object] = struct{}{}

		for _, auxID := range e.SupportGraphs() {
			if _, seen := auxGraphs[auxID]; seen {
				continue
			}
			auxGraphs[auxID] = struct{}{}
			aux, ok := g.AuxGraphs[auxID]
			if !ok {
				stats.MissingAuxGraphs = append(stats.MissingAuxGraphs, auxID)
				continue
			}
			for _, supportEdgeID := range aux.Edges {
				enqueue(supportEdgeID)
			}
		}
	}

	missingNodes := make(map[string]struct{})
	for id := range nodes {
		if _, ok := g.Nodes[id]; !ok {
			missingNodes[id] = struct{}{}
		}
	}
	for _, r := range results {
		for _, bindings := range r.NodeBindings {
			for _, nb := range bindings {
				if _, ok := g.Nodes[nb.ID]; !ok {
					missingNodes[nb.ID] = struct{}{}
				}
			}
		}
	}
	for id := range missingNodes {
		stats.MissingNodes = append(stats.MissingNodes, id)
	}
	slices.Sort(stats.MissingNodes)
	slices.Sort(stats.MissingEdges)
	slices.Sort(stats.MissingAuxGraphs)
	return nodes, edges, auxGraphs, stats
}

// Prune removes every node, edge and auxiliary graph not reachable from the
// results, then rebuilds adjacency. It never fails; see PruneStats.Clean.
func (g *Graph) Prune(results []model.Result) PruneStats {
	nodes, edges, auxGraphs, stats := g.Reachable(results)

	for id := range g.Nodes {
		if _, ok := nodes[id]; ok {
			stats.NodesKept++
			continue
		}
		delete(g.Nodes, id)
		stats.NodesRemoved++
	}
	for id := range g.Edges {
		if _, ok := edges[id]; ok {
			stats.EdgesKept++
			continue
		}
		delete(g.Edges, id)
		stats.EdgesRemoved++
	}
	for id := range g.AuxGraphs {
		if _, ok := auxGraphs[id]; ok {
			stats.AuxGraphsKept++
			continue
		}
		delete(g.AuxGraphs, id)
		stats.AuxGraphsRemoved++
	}
	g.Reindex()
	return stats
}

// CheckInvariants verifies a pruned store against its results: every node is
// an endpoint of a remaining edge, every edge is reachable from a result, every
// auxiliary graph is referenced by a remaining edge, and nothing reachable is
// missing.
func (g *Graph) CheckInvariants(results []model.Result) error {
	nodes, edges, auxGraphs, stats := g.Reachable(results)
	var problems []string

	for _, id := range g.SortedNodeIDs() {
		if g.Nodes[id].Degree() == 0 {
			problems = append(problems, "node without edges: "+id)
		}
		if _, ok := nodes[id]; !ok {
			problems = append(problems, "unreachable node: "+id)
		}
	}
	for _, id := range g.SortedEdgeIDs() {
		if _, ok := edges[id]; !ok {
			problems = append(problems, "unreachable edge: "+id)
		}
	}
	referenced := make(map[string]struct{})
	for _, e := range g.Edges {
		for _, auxID := range e.SupportGraphs() {
			referenced[auxID] = struct{}{}
		}
	}
	for id := range g.AuxGraphs {
		if _, ok := referenced[id]; !ok {
			problems = append(problems, "unreferenced auxiliary graph: "+id)
		}
		if _, ok := auxGraphs[id]; !ok {
			problems = append(problems, "unreachable auxiliary graph: "+id)
		}
	}
	for _, id := range stats.MissingNodes {
		problems = append(problems, "missing node: "+id)
	}
	for _, id := range stats.MissingEdges {
		problems = append(problems, "missing edge: "+id)
	}
	for _, id := range stats.MissingAuxGraphs {
		problems = append(problems, "missing auxiliary graph: "+id)
	}

	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return fmt.Errorf("%w: %s", ErrInvariantViolated, strings.Join(problems, "; "))
}
