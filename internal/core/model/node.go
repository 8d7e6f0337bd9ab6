package model

// KGNode is a knowledge-graph node keyed by its resolved primary curie.
//
// Name, Categories and Attributes are serialised into the TRAPI knowledge
// graph. The remaining fields are working state of the query-scoped graph
// store: equivalent identifiers gathered by id resolution and the adjacency
// sets maintained as edges are attached.
type KGNode struct {
	Name       string      `json:"name,omitempty"`
	Categories []string    `json:"categories"`
	Attributes []Attribute `json:"attributes,omitempty"`

	ID            string   `json:"-"`
	PrimaryCurie  string   `json:"-"`
	QNodeID       string   `json:"-"`
	OriginalCurie string   `json:"-"`
	Curies        []string `json:"-"`
	Names         []string `json:"-"`

	OutgoingEdges  map[string]struct{} `json:"-"`
	IncomingEdges  map[string]struct{} `json:"-"`
	SourceQNodeIDs map[string]struct{} `json:"-"`
	TargetQNodeIDs map[string]struct{} `json:"-"`
}

type KGNodeInfo struct {
	PrimaryCurie  string
	QNodeID       string
	OriginalCurie string
	Curies        []string
	Names         []string
	SemanticType  []string
	Label         string
}

func NewKGNode(id string, info KGNodeInfo) *KGNode {
	n := &KGNode{
		ID:            id,
		Name:          info.Label,
		Categories:    cloneStrings(info.SemanticType),
		PrimaryCurie:  info.PrimaryCurie,
		QNodeID:       info.QNodeID,
		OriginalCurie: info.OriginalCurie,
		Curies:        cloneStrings(info.Curies),
		Names:         cloneStrings(info.Names),
	}
	if n.PrimaryCurie == "" {
		n.PrimaryCurie = id
	}
	n.ResetAdjacency()
	return n
}

// HasCurie reports whether curie is the node's id or one of its equivalents.
func (n *KGNode) HasCurie(curie string) bool {
	if n.ID == curie || n.PrimaryCurie == curie {
		return true
	}
	for _, c := range n.Curies {
		if c == curie {
			return true
		}
	}
	return false
}

func (n *KGNode) ResetAdjacency() {
	n.OutgoingEdges = make(map[string]struct{})
	n.IncomingEdges = make(map[string]struct{})
	n.SourceQNodeIDs = make(map[string]struct{})
	n.TargetQNodeIDs = make(map[string]struct{})
}

func (n *KGNode) AddOutgoingEdge(edgeID string) { addTo(&n.OutgoingEdges, edgeID) }
func (n *KGNode) AddIncomingEdge(edgeID string) { addTo(&n.IncomingEdges, edgeID) }
func (n *KGNode) AddSourceQNodeID(id string)    { addTo(&n.SourceQNodeIDs, id) }
func (n *KGNode) AddTargetQNodeID(id string)    { addTo(&n.TargetQNodeIDs, id) }

// Degree is the number of distinct edges incident to the node.
func (n *KGNode) Degree() int {
	d := len(n.OutgoingEdges)
	for id := range n.IncomingEdges {
		if _, ok := n.OutgoingEdges[id]; !ok {
			d++
		}
	}
	return d
}

func addTo(set *map[string]struct{}, v string) {
	if *set == nil {
		*set = make(map[string]struct{})
	}
	(*set)[v] = struct{}{}
}
