package pathfinder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/creative/internal/core/model"
)

const (
	drugToGene    = `["biolink:affects","biolink:interacts_with","biolink:occurs_together_in_literature_with"]`
	geneToDisease = `["biolink:gene_associated_with_condition","biolink:biomarker_for","biolink:affects","biolink:contributes_to"]`
)

var wantTemplates = []string{
	`{
		"nodes": {
			"creativeQuerySubject": {"categories": ["biolink:Drug"], "ids": ["subject"]},
			"creativeQueryObject": {"categories": ["biolink:Disease"], "ids": ["object"]},
			"un": {"categories": ["biolink:Gene"]}
		},
		"edges": {
			"sub_un": {"subject": "creativeQuerySubject", "object": "un", "predicates": ` + drugToGene + `},
			"un_obj": {"subject": "un", "object": "creativeQueryObject", "predicates": ` + geneToDisease + `}
		},
		"log": "(subject) -(affects,interacts_with,occurs_together_in_literature_with)-> (Gene) -(gene_associated_with_condition,biomarker_for,affects,contributes_to)-> (object)"
	}`,
	`{
		"nodes": {
			"creativeQuerySubject": {"categories": ["biolink:Drug"], "ids": ["subject"]},
			"creativeQueryObject": {"categories": ["biolink:Disease"], "ids": ["object"]},
			"un": {"categories": ["biolink:Gene"]},
			"nb": {"categories": ["biolink:Cell"]}
		},
		"edges": {
			"sub_un": {"subject": "creativeQuerySubject", "object": "un", "predicates": ` + drugToGene + `},
			"un_b": {"subject": "un", "object": "nb", "predicates": ["biolink:affects","biolink:produced_by","biolink:located_in","biolink:part_of","biolink:interacts_with"]},
			"b_obj": {"subject": "nb", "object": "creativeQueryObject", "predicates": ["biolink:location_of","biolink:affected_by","biolink:interacts_with"]}
		},
		"log": "(subject) -(affects,interacts_with,occurs_together_in_literature_with)-> (Gene) -(affects,produced_by,located_in,part_of,interacts_with)-> (Cell) -(location_of,affected_by,interacts_with)-> (object)"
	}`,
	`{
		"nodes": {
			"creativeQuerySubject": {"categories": ["biolink:Drug"], "ids": ["subject"]},
			"creativeQueryObject": {"categories": ["biolink:Disease"], "ids": ["object"]},
			"un": {"categories": ["biolink:Gene"]},
			"nc": {"categories": ["biolink:Gene"]}
		},
		"edges": {
			"sub_c": {"subject": "creativeQuerySubject", "object": "nc", "predicates": ` + drugToGene + `},
			"c_un": {"subject": "nc", "object": "un", "predicates": ["biolink:regulates","biolink:regulated_by","biolink:affects","biolink:affected_by","biolink:interacts_with","biolink:occurs_together_in_literature_with"]},
			"un_obj": {"subject": "un", "object": "creativeQueryObject", "predicates": ` + geneToDisease + `}
		},
		"log": "(subject) -(affects,interacts_with,occurs_together_in_literature_with)-> (Gene) -(regulates,regulated_by,affects,affected_by,interacts_with,occurs_together_in_literature_with)-> (Gene) -(gene_associated_with_condition,biomarker_for,affects,contributes_to)-> (object)"
	}`,
}

func TestGenerateTemplates(t *testing.T) {
	sub := &model.QNode{Categories: []string{"biolink:Drug"}, IDs: []string{"subject"}}
	obj := &model.QNode{Categories: []string{"biolink:Disease"}, IDs: []string{"object"}}

	withCategory := GenerateTemplates(sub, &model.QNode{Categories: []string{"biolink:Gene"}}, obj)
	withoutCategory := GenerateTemplates(sub, &model.QNode{}, obj)
	require.Len(t, withCategory, 3)
	require.Len(t, withoutCategory, 3)

	for i, want := range wantTemplates {
		got, err := json.Marshal(withCategory[i])
		require.NoError(t, err)
		assert.JSONEq(t, want, string(got), "template %d", i)
		assert.Equal(t, withCategory[i], withoutCategory[i], "template %d", i)
	}
}

func TestGenerateTemplates_Hops(t *testing.T) {
	sub := &model.QNode{Categories: []string{"biolink:Drug"}, IDs: []string{"subject"}}
	obj := &model.QNode{Categories: []string{"biolink:Disease"}, IDs: []string{"object"}}
	templates := GenerateTemplates(sub, nil, obj)

	assert.Equal(t, [2][]string{{"sub_un"}, {"un_obj"}}, templates[0].Hops)
	assert.Equal(t, [2][]string{{"sub_un"}, {"un_b", "b_obj"}}, templates[1].Hops)
	assert.Equal(t, [2][]string{{"sub_c", "c_un"}, {"un_obj"}}, templates[2].Hops)
}

func TestGenerateTemplates_NoPredicates(t *testing.T) {
	sub := &model.QNode{Categories: []string{"biolink:Drug"}, IDs: []string{"subject"}}
	un := &model.QNode{Categories: []string{"biolink:Dummy"}}
	obj := &model.QNode{Categories: []string{"biolink:Drug"}, IDs: []string{"object"}}

	templates := GenerateTemplates(sub, un, obj)
	for _, key := range []string{"sub_un", "un_obj"} {
		raw, err := json.Marshal(templates[0].Edges[key])
		require.NoError(t, err)
		var fields map[string]any
		require.NoError(t, json.Unmarshal(raw, &fields))
		assert.NotContains(t, fields, "predicates", key)
	}
	assert.Equal(t, "(subject) --> (Dummy) --> (object)", templates[0].Log)
}

func TestGenerateTemplates_QueryGraphIsCopy(t *testing.T) {
	sub := &model.QNode{Categories: []string{"biolink:Drug"}, IDs: []string{"subject"}}
	obj := &model.QNode{Categories: []string{"biolink:Disease"}, IDs: []string{"object"}}
	tmpl := GenerateTemplates(sub, nil, obj)[0]

	qg := tmpl.QueryGraph()
	qg.Nodes[NodeSubject].IDs[0] = "changed"
	assert.Equal(t, "subject", tmpl.Nodes[NodeSubject].IDs[0])
}

func TestLookupPredicates_Aliases(t *testing.T) {
	direct := LookupPredicates([]string{CategoryDrug}, []string{CategoryGene})
	require.NotEmpty(t, direct)
	assert.Equal(t, direct, LookupPredicates([]string{"biolink:SmallMolecule"}, []string{"biolink:Protein"}))
	assert.Nil(t, LookupPredicates([]string{"biolink:Dummy"}, []string{CategoryGene}))
}
