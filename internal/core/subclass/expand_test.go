package subclass

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/creative/internal/core/model"
)

func TestExpand(t *testing.T) {
	qg := &model.QueryGraph{
		Nodes: map[string]*model.QNode{
			"n0": {IDs: []string{"MONDO:0005148"}, Categories: []string{"biolink:Disease"}},
			"n1": {Categories: []string{"biolink:Gene"}},
			"n2": {IDs: []string{"NCBIGene:3630"}},
		},
	}
	lookup := &mockLookup{descendants: map[string]map[string]string{
		"MONDO:0005148": {
			"MONDO:0005148": "MONDO",
			"MONDO:0014488": "MONDO",
			"MONDO:0007455": "MONDO",
		},
	}}

	expansions, logs, err := Expand(context.Background(), qg, lookup)
	require.NoError(t, err)

	assert.Equal(t, []string{"MONDO:0005148", "MONDO:0007455", "MONDO:0014488"}, qg.Nodes["n0"].IDs)
	assert.True(t, qg.Nodes["n0"].IsSet)
	assert.Equal(t, []string{"NCBIGene:3630"}, qg.Nodes["n2"].IDs)
	assert.False(t, qg.Nodes["n2"].IsSet)
	assert.Len(t, lookup.calls, 2)

	assert.Equal(t, Expansions{
		"MONDO:0007455": {"MONDO:0005148": {Source: "MONDO", QNodes: []string{"n0"}}},
		"MONDO:0014488": {"MONDO:0005148": {Source: "MONDO", QNodes: []string{"n0"}}},
	}, expansions)

	messages := make([]string, 0, len(logs))
	for _, l := range logs {
		assert.Equal(t, model.LevelInfo, l.Level)
		messages = append(messages, l.Message)
	}
	assert.Equal(t, []string{
		"Expanded ids for node n0: (1 ids -> 3 ids)",
		"Added is_set:true to node n0",
		"Expanded ids for node n2: (1 ids -> 1 ids)",
	}, messages)
}

func TestExpand_KeepsExistingSet(t *testing.T) {
	qg := &model.QueryGraph{Nodes: map[string]*model.QNode{
		"n0": {IDs: []string{"MONDO:0005148"}, IsSet: true},
	}}
	lookup := &mockLookup{descendants: map[string]map[string]string{
		"MONDO:0005148": {"MONDO:0014488": "MONDO"},
	}}

	_, logs, err := Expand(context.Background(), qg, lookup)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Expanded ids for node n0: (1 ids -> 2 ids)", logs[0].Message)
}

func TestExpand_LookupError(t *testing.T) {
	qg := &model.QueryGraph{Nodes: map[string]*model.QNode{
		"n0": {IDs: []string{"MONDO:0005148"}},
	}}
	boom := errors.New("ontology service unavailable")

	_, _, err := Expand(context.Background(), qg, &mockLookup{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"MONDO:0005148"}, qg.Nodes["n0"].IDs)
}

func TestKnowledgeSource(t *testing.T) {
	assert.Equal(t, "infores:mondo", KnowledgeSource("MONDO"))
	assert.Equal(t, "infores:hpo", KnowledgeSource("HP"))
	assert.Equal(t, "infores:disease-ontology", KnowledgeSource("DOID"))
	assert.Equal(t, NotProvided, KnowledgeSource("EFO"))
}
