package model

import "slices"

// Well-known attribute type ids and values.
const (
	AttrSupportGraphs  = "biolink:support_graphs"
	AttrKnowledgeLevel = "biolink:knowledge_level"
	AttrAgentType      = "biolink:agent_type"
	AttrXref           = "biolink:xref"

	KnowledgeAssertion = "knowledge_assertion"
	LogicalEntailment  = "logical_entailment"
	ManualAgent        = "manual_agent"
	AutomatedAgent     = "automated_agent"

	RolePrimary    = "primary_knowledge_source"
	RoleAggregator = "aggregator_knowledge_source"

	PredicateSubclassOf = "biolink:subclass_of"
	PredicateRelatedTo  = "biolink:related_to"
)

type Attribute struct {
	AttributeTypeID string      `json:"attribute_type_id"`
	Value           any         `json:"value"`
	ValueTypeID     string      `json:"value_type_id,omitempty"`
	Attributes      []Attribute `json:"attributes,omitempty"`
}

type RetrievalSource struct {
	ResourceID          string   `json:"resource_id"`
	ResourceRole        string   `json:"resource_role"`
	UpstreamResourceIDs []string `json:"upstream_resource_ids,omitempty"`
	SourceRecordURLs    []string `json:"source_record_urls,omitempty"`
}

type Qualifier struct {
	QualifierTypeID string `json:"qualifier_type_id"`
	QualifierValue  string `json:"qualifier_value"`
}

// KGEdge is a knowledge-graph edge keyed by a composed id. Directly retrieved
// edges and synthetic ones (derived shortcuts, subclass edges) share this shape.
type KGEdge struct {
	ID         string            `json:"-"`
	Subject    string            `json:"subject"`
	Object     string            `json:"object"`
	Predicate  string            `json:"predicate"`
	Attributes []Attribute       `json:"attributes,omitempty"`
	Sources    []RetrievalSource `json:"sources"`
	Qualifiers []Qualifier       `json:"qualifiers,omitempty"`
}

type KGEdgeInfo struct {
	Subject   string
	Object    string
	Predicate string
}

func NewKGEdge(id string, info KGEdgeInfo) *KGEdge {
	return &KGEdge{
		ID:        id,
		Subject:   info.Subject,
		Object:    info.Object,
		Predicate: info.Predicate,
		Sources:   []RetrievalSource{},
	}
}

func (e *KGEdge) AddAttribute(typeID string, value any) {
	e.Attributes = append(e.Attributes, Attribute{AttributeTypeID: typeID, Value: value})
}

func (e *KGEdge) AddSources(sources ...RetrievalSource) {
	e.Sources = append(e.Sources, sources...)
}

// SupportGraphs returns the auxiliary-graph ids referenced by every
// support_graphs attribute on the edge, in attribute order, deduplicated.
func (e *KGEdge) SupportGraphs() []string {
	var ids []string
	for _, attr := range e.Attributes {
		if attr.AttributeTypeID != AttrSupportGraphs {
			continue
		}
		for _, id := range StringValues(attr.Value) {
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// EnsureSupportGraphs makes sure the edge carries a support_graphs attribute,
// creating an empty one if needed, and returns the index of the last one.
func (e *KGEdge) EnsureSupportGraphs() int {
	for i := len(e.Attributes) - 1; i >= 0; i-- {
		if e.Attributes[i].AttributeTypeID == AttrSupportGraphs {
			e.Attributes[i].Value = StringValues(e.Attributes[i].Value)
			return i
		}
	}
	e.Attributes = append(e.Attributes, Attribute{AttributeTypeID: AttrSupportGraphs, Value: []string{}})
	return len(e.Attributes) - 1
}

// AddSupportGraph appends auxiliary-graph ids to the edge's last
// support_graphs attribute, so SupportGraphs lists them after every id
// already referenced. Ids already referenced are not added twice.
func (e *KGEdge) AddSupportGraph(auxGraphIDs ...string) {
	existing := e.SupportGraphs()
	i := e.EnsureSupportGraphs()
	values := e.Attributes[i].Value.([]string)
	for _, id := range auxGraphIDs {
		if slices.Contains(existing, id) {
			continue
		}
		values = append(values, id)
		existing = append(existing, id)
	}
	e.Attributes[i].Value = values
}

// StringValues normalises an attribute value that holds one or many strings.
// Decoded JSON arrives as []any, synthetic values as []string.
func StringValues(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case string:
		return []string{val}
	case []string:
		return append([]string{}, val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

type AuxiliaryGraph struct {
	Edges      []string    `json:"edges"`
	Attributes []Attribute `json:"attributes"`
}

func NewAuxiliaryGraph(edges []string) *AuxiliaryGraph {
	return &AuxiliaryGraph{Edges: cloneStrings(edges), Attributes: []Attribute{}}
}

type KnowledgeGraph struct {
	Nodes map[string]*KGNode `json:"nodes"`
	Edges map[string]*KGEdge `json:"edges"`
}
