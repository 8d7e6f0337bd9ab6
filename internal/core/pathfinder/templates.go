package pathfinder

import (
	"strings"

	"github.com/agenthands/creative/internal/core/graph"
	"github.com/agenthands/creative/internal/core/model"
)

// Template node keys.
const (
	NodeSubject  = "creativeQuerySubject"
	NodeObject   = "creativeQueryObject"
	NodeUnpinned = "un"
	NodeCell     = "nb"
	NodeGene     = "nc"
)

// Template is a small query graph realising one mechanistic path from the
// subject to the object through the unpinned node.
type Template struct {
	Nodes map[string]*model.QNode `json:"nodes"`
	Edges map[string]*model.QEdge `json:"edges"`
	Log   string                  `json:"log"`

	// Hops lists, in path order, the edge keys between the subject and the
	// unpinned node and between the unpinned node and the object.
	Hops [2][]string `json:"-"`
}

func (t Template) QueryGraph() *model.QueryGraph {
	return (&model.QueryGraph{Nodes: t.Nodes, Edges: t.Edges}).Clone()
}

type pathStep struct {
	edgeKey string
	node    string
}

// GenerateTemplates returns the three canonical templates, in order:
//
//	A: subject → un → object
//	B: subject → un → Cell → object
//	C: subject → Gene → un → object
//
// The unpinned node defaults to biolink:Gene when un carries no category.
func GenerateTemplates(sub, un, obj *model.QNode) []Template {
	unCategories := []string{CategoryGene}
	if un != nil && len(un.Categories) > 0 {
		unCategories = append([]string(nil), un.Categories...)
	}
	nodes := map[string]*model.QNode{
		NodeSubject:  templateNode(sub),
		NodeObject:   templateNode(obj),
		NodeUnpinned: {Categories: unCategories},
		NodeCell:     {Categories: []string{CategoryCell}},
		NodeGene:     {Categories: []string{CategoryGene}},
	}

	return []Template{
		buildTemplate(nodes, [][]pathStep{
			{{"sub_un", NodeUnpinned}},
			{{"un_obj", NodeObject}},
		}),
		buildTemplate(nodes, [][]pathStep{
			{{"sub_un", NodeUnpinned}},
			{{"un_b", NodeCell}, {"b_obj", NodeObject}},
		}),
		buildTemplate(nodes, [][]pathStep{
			{{"sub_c", NodeGene}, {"c_un", NodeUnpinned}},
			{{"un_obj", NodeObject}},
		}),
	}
}

func templateNode(q *model.QNode) *model.QNode {
	n := &model.QNode{}
	if q == nil {
		return n
	}
	if len(q.Categories) > 0 {
		n.Categories = append([]string(nil), q.Categories...)
	}
	if len(q.IDs) > 0 {
		n.IDs = append([]string(nil), q.IDs...)
	}
	return n
}

// buildTemplate walks the path from the subject, one hop per element of hops.
func buildTemplate(pool map[string]*model.QNode, hops [][]pathStep) Template {
	t := Template{
		Nodes: map[string]*model.QNode{NodeSubject: pool[NodeSubject].Clone()},
		Edges: map[string]*model.QEdge{},
	}
	var log strings.Builder
	log.WriteString("(subject)")

	prev := NodeSubject
	for i, hop := range hops {
		for _, step := range hop {
			t.Nodes[step.node] = pool[step.node].Clone()
			edge := &model.QEdge{
				Subject:    prev,
				Object:     step.node,
				Predicates: LookupPredicates(pool[prev].Categories, pool[step.node].Categories),
			}
			t.Edges[step.edgeKey] = edge
			t.Hops[i] = append(t.Hops[i], step.edgeKey)

			log.WriteString(" " + arrow(edge.Predicates) + " ")
			if step.node == NodeObject {
				log.WriteString("(object)")
			} else {
				log.WriteString("(" + graph.StripPrefix(pool[step.node].Categories[0]) + ")")
			}
			prev = step.node
		}
	}
	t.Log = log.String()
	return t
}

func arrow(predicates []string) string {
	if len(predicates) == 0 {
		return "-->"
	}
	stripped := make([]string, len(predicates))
	for i, p := range predicates {
		stripped[i] = graph.StripPrefix(p)
	}
	return "-(" + strings.Join(stripped, ",") + ")->"
}
