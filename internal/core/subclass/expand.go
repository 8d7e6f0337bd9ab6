// Package subclass expands pinned query nodes to their ontology descendants
// and, once results are assembled, rebinds them back onto the queried
// ancestors through explicit subclass_of edges.
package subclass

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/agenthands/creative/internal/core/model"
)

// DescendantLookup returns, for each curie, its ontology descendants mapped to
// the ontology they were found in (e.g. "MONDO").
type DescendantLookup interface {
	Descendants(ctx context.Context, curies []string) (map[string]map[string]string, error)
}

// Origin records where an expanded descendant came from.
type Origin struct {
	Source string
	QNodes []string
}

// Expansions maps descendant → queried ancestor → origin.
type Expansions map[string]map[string]*Origin

func (x Expansions) add(descendant, ancestor, source, qNodeID string) {
	if x[descendant] == nil {
		x[descendant] = make(map[string]*Origin)
	}
	o, ok := x[descendant][ancestor]
	if !ok {
		o = &Origin{Source: source}
		x[descendant][ancestor] = o
	}
	if !slices.Contains(o.QNodes, qNodeID) {
		o.QNodes = append(o.QNodes, qNodeID)
	}
}

// Expand replaces the ids of every pinned node with the ids plus their
// descendants, marking expanded nodes as sets. qg is modified in place.
func Expand(ctx context.Context, qg *model.QueryGraph, lookup DescendantLookup) (Expansions, []model.LogEntry, error) {
	expansions := make(Expansions)
	var logs []model.LogEntry

	nodeIDs := make([]string, 0, len(qg.Nodes))
	for id := range qg.Nodes {
		nodeIDs = append(nodeIDs, id)
	}
	slices.Sort(nodeIDs)

	for _, nodeID := range nodeIDs {
		node := qg.Nodes[nodeID]
		if !node.Pinned() {
			continue
		}
		descendants, err := lookup.Descendants(ctx, node.IDs)
		if err != nil {
			return nil, logs, fmt.Errorf("look up descendants of %s: %w", nodeID, err)
		}

		expanded := slices.Clone(node.IDs)
		curies := make([]string, 0, len(descendants))
		for curie := range descendants {
			curies = append(curies, curie)
		}
		slices.Sort(curies)
		for _, curie := range curies {
			for _, d := range sortedKeys(descendants[curie]) {
				if !slices.Contains(expanded, d) {
					expanded = append(expanded, d)
				}
			}
		}

		msg := fmt.Sprintf("Expanded ids for node %s: (%d ids -> %d ids)", nodeID, len(node.IDs), len(expanded))
		slog.Debug(msg)
		logs = append(logs, model.Info("%s", msg))

		found := len(expanded) > len(node.IDs)
		if found {
			for _, curie := range curies {
				for _, d := range sortedKeys(descendants[curie]) {
					if slices.Contains(node.IDs, d) {
						continue
					}
					expansions.add(d, curie, descendants[curie][d], nodeID)
				}
			}
		}
		node.IDs = expanded

		if found && !node.IsSet {
			node.IsSet = true
			msg = fmt.Sprintf("Added is_set:true to node %s", nodeID)
			slog.Debug(msg)
			logs = append(logs, model.Info("%s", msg))
		}
	}
	return expansions, logs, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// StaticLookup answers descendant lookups from a fixed map of
// curie → descendant → ontology.
type StaticLookup map[string]map[string]string

func (s StaticLookup) Descendants(_ context.Context, curies []string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	for _, c := range curies {
		if d, ok := s[c]; ok {
			out[c] = d
		}
	}
	return out, nil
}
