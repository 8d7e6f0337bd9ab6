package model

type NodeBinding struct {
	ID         string      `json:"id"`
	QueryID    string      `json:"query_id,omitempty"`
	Attributes []Attribute `json:"attributes"`
}

type EdgeBinding struct {
	ID         string      `json:"id"`
	Attributes []Attribute `json:"attributes"`
}

type Analysis struct {
	ResourceID    string                   `json:"resource_id,omitempty"`
	EdgeBindings  map[string][]EdgeBinding `json:"edge_bindings"`
	Score         *float64                 `json:"score,omitempty"`
	SupportGraphs []string                 `json:"support_graphs,omitempty"`
}

type Result struct {
	NodeBindings map[string][]NodeBinding `json:"node_bindings"`
	Analyses     []Analysis               `json:"analyses"`
}

// BoundNodeIDs returns the node ids bound to qNodeID in the result.
func (r *Result) BoundNodeIDs(qNodeID string) []string {
	ids := make([]string, 0, len(r.NodeBindings[qNodeID]))
	for _, b := range r.NodeBindings[qNodeID] {
		ids = append(ids, b.ID)
	}
	return ids
}

// EdgeIDs returns every edge id bound in any analysis of the result.
func (r *Result) EdgeIDs() []string {
	var ids []string
	for _, a := range r.Analyses {
		for _, bindings := range a.EdgeBindings {
			for _, b := range bindings {
				ids = append(ids, b.ID)
			}
		}
	}
	return ids
}

// ResolvedEntity is what the id-resolution service returns for one curie.
type ResolvedEntity struct {
	PrimaryID     string   `json:"primaryID"`
	EquivalentIDs []string `json:"equivalentIDs"`
	LabelAliases  []string `json:"labelAliases"`
	PrimaryTypes  []string `json:"primaryTypes"`
	Label         string   `json:"label"`
}
