// Package pathfinder turns a three-node "what connects X to Y" query into
// mechanistic templates and folds the executed templates back into results
// shaped like the original query.
package pathfinder

import (
	"errors"
	"fmt"
	"slices"

	"github.com/agenthands/creative/internal/core/model"
)

var (
	ErrInvalidPathfinder = errors.New("invalid pathfinder query graph")

	ErrUnpinnedNode      = fmt.Errorf("%w: expected exactly one node without ids", ErrInvalidPathfinder)
	ErrNoMainEdge        = fmt.Errorf("%w: no single edge connects the two pinned nodes", ErrInvalidPathfinder)
	ErrIntermediateEdges = fmt.Errorf("%w: expected exactly two edges between the unpinned node and the pinned nodes", ErrInvalidPathfinder)
	ErrNullElement       = fmt.Errorf("%w: null node or edge", ErrInvalidPathfinder)
)

// Roles names the parts of a pathfinder query graph.
type Roles struct {
	UnpinnedNodeID string
	MainEdgeID     string
	// IntermediateEdges holds the edge on the subject side first.
	IntermediateEdges [2]string
	// SubjectNodeID and ObjectNodeID are the pinned endpoints of the first and
	// second intermediate edge: the ends of the subject → unpinned → object path.
	SubjectNodeID string
	ObjectNodeID  string
}

// Extract identifies the unpinned node, the main edge and the two intermediate
// edges. The orientation of the main edge does not matter.
func Extract(qg *model.QueryGraph) (*Roles, error) {
	if qg == nil {
		return nil, ErrUnpinnedNode
	}
	var unpinned, pinned []string
	for id, n := range qg.Nodes {
		if n == nil {
			return nil, fmt.Errorf("%w: node %s", ErrNullElement, id)
		}
		if n.Pinned() {
			pinned = append(pinned, id)
		} else {
			unpinned = append(unpinned, id)
		}
	}
	if len(unpinned) != 1 || len(pinned) != 2 {
		return nil, ErrUnpinnedNode
	}
	roles := &Roles{UnpinnedNodeID: unpinned[0]}

	var mains, intermediates []string
	for id, e := range qg.Edges {
		if e == nil {
			return nil, fmt.Errorf("%w: edge %s", ErrNullElement, id)
		}
		switch {
		case connects(e, pinned[0], pinned[1]):
			mains = append(mains, id)
		case e.Touches(roles.UnpinnedNodeID):
			intermediates = append(intermediates, id)
		}
	}
	if len(mains) != 1 {
		return nil, ErrNoMainEdge
	}
	roles.MainEdgeID = mains[0]

	if len(intermediates) != 2 {
		return nil, ErrIntermediateEdges
	}
	for _, id := range intermediates {
		if pinnedEnd(qg.Edges[id], roles.UnpinnedNodeID) == "" {
			return nil, ErrIntermediateEdges
		}
	}
	slices.Sort(intermediates)
	first, second := qg.Edges[intermediates[0]], qg.Edges[intermediates[1]]
	if first.Subject == roles.UnpinnedNodeID && second.Object == roles.UnpinnedNodeID {
		intermediates[0], intermediates[1] = intermediates[1], intermediates[0]
	}
	roles.IntermediateEdges = [2]string{intermediates[0], intermediates[1]}
	roles.SubjectNodeID = pinnedEnd(qg.Edges[intermediates[0]], roles.UnpinnedNodeID)
	roles.ObjectNodeID = pinnedEnd(qg.Edges[intermediates[1]], roles.UnpinnedNodeID)
	if roles.SubjectNodeID == roles.ObjectNodeID {
		return nil, ErrIntermediateEdges
	}
	return roles, nil
}

func connects(e *model.QEdge, a, b string) bool {
	return (e.Subject == a && e.Object == b) || (e.Subject == b && e.Object == a)
}

// pinnedEnd returns the endpoint of e that is not unpinned, or "" when the
// edge is a self-loop or does not touch the unpinned node.
func pinnedEnd(e *model.QEdge, unpinned string) string {
	switch {
	case e.Subject == unpinned && e.Object != unpinned:
		return e.Object
	case e.Object == unpinned && e.Subject != unpinned:
		return e.Subject
	default:
		return ""
	}
}
