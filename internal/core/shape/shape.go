// Package shape classifies query graphs into the execution modes the
// assembly pipeline supports.
package shape

import "github.com/agenthands/creative/internal/core/model"

type Shape int

const (
	Standard Shape = iota
	Inferred
	Pathfinder
)

func (s Shape) String() string {
	switch s {
	case Inferred:
		return "inferred"
	case Pathfinder:
		return "pathfinder"
	default:
		return "standard"
	}
}

// IsPathfinder reports a 3-node, 3-edge query with exactly two pinned nodes
// and every edge inferred.
func IsPathfinder(qg *model.QueryGraph) bool {
	if qg == nil || len(qg.Nodes) != 3 || len(qg.Edges) != 3 {
		return false
	}
	inferred := 0
	for _, e := range qg.Edges {
		if e.Inferred() {
			inferred++
		}
	}
	pinned := 0
	for _, n := range qg.Nodes {
		if n.Pinned() {
			pinned++
		}
	}
	return inferred == 3 && pinned == 2
}

// IsInferred reports whether any edge is inferred.
func IsInferred(qg *model.QueryGraph) bool {
	if qg == nil {
		return false
	}
	for _, e := range qg.Edges {
		if e.Inferred() {
			return true
		}
	}
	return false
}

func IsOneHop(qg *model.QueryGraph) bool {
	return qg != nil && len(qg.Edges) == 1
}

// Classify picks the execution mode. Anything that is neither a well-formed
// pathfinder query nor a single inferred edge is Standard.
func Classify(qg *model.QueryGraph) Shape {
	switch {
	case IsPathfinder(qg):
		return Pathfinder
	case IsInferred(qg) && IsOneHop(qg):
		return Inferred
	default:
		return Standard
	}
}
