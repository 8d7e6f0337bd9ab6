package model

// KnowledgeTypeInferred marks a query edge whose answer must be derived rather
// than directly retrieved.
const KnowledgeTypeInferred = "inferred"

type Constraint struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
	Not      bool   `json:"not,omitempty"`
}

type QualifierConstraint struct {
	QualifierSet []Qualifier `json:"qualifier_set"`
}

type QNode struct {
	IDs         []string     `json:"ids,omitempty"`
	Categories  []string     `json:"categories,omitempty"`
	IsSet       bool         `json:"is_set,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty"`
}

// Pinned reports whether the caller supplied identifiers for the node.
func (n *QNode) Pinned() bool {
	return n != nil && len(n.IDs) > 0
}

func (n *QNode) Clone() *QNode {
	if n == nil {
		return nil
	}
	c := *n
	c.IDs = cloneStrings(n.IDs)
	c.Categories = cloneStrings(n.Categories)
	c.Constraints = append([]Constraint(nil), n.Constraints...)
	return &c
}

type QEdge struct {
	Subject              string                `json:"subject"`
	Object               string                `json:"object"`
	Predicates           []string              `json:"predicates,omitempty"`
	KnowledgeType        string                `json:"knowledge_type,omitempty"`
	AttributeConstraints []Constraint          `json:"attribute_constraints,omitempty"`
	QualifierConstraints []QualifierConstraint `json:"qualifier_constraints,omitempty"`
}

func (e *QEdge) Inferred() bool {
	return e != nil && e.KnowledgeType == KnowledgeTypeInferred
}

// Touches reports whether qNodeID is one of the edge's endpoints.
func (e *QEdge) Touches(qNodeID string) bool {
	return e.Subject == qNodeID || e.Object == qNodeID
}

func (e *QEdge) Clone() *QEdge {
	if e == nil {
		return nil
	}
	c := *e
	c.Predicates = cloneStrings(e.Predicates)
	c.AttributeConstraints = append([]Constraint(nil), e.AttributeConstraints...)
	c.QualifierConstraints = append([]QualifierConstraint(nil), e.QualifierConstraints...)
	return &c
}

type QueryGraph struct {
	Nodes map[string]*QNode `json:"nodes"`
	Edges map[string]*QEdge `json:"edges"`
}

func (qg *QueryGraph) Clone() *QueryGraph {
	if qg == nil {
		return nil
	}
	c := &QueryGraph{
		Nodes: make(map[string]*QNode, len(qg.Nodes)),
		Edges: make(map[string]*QEdge, len(qg.Edges)),
	}
	for id, n := range qg.Nodes {
		c.Nodes[id] = n.Clone()
	}
	for id, e := range qg.Edges {
		c.Edges[id] = e.Clone()
	}
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
