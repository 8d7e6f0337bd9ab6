package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/creative/internal/core/model"
	"github.com/agenthands/creative/internal/core/pathfinder"
)

const pathfinderQuery = `{"message": {"query_graph": {
	"nodes": {
		"n0": {"ids": ["CHEBI:45783"], "categories": ["biolink:ChemicalEntity"]},
		"un": {"categories": ["biolink:Gene"]},
		"n2": {"ids": ["MONDO:0005011"], "categories": ["biolink:Disease"]}
	},
	"edges": {
		"e0": {"subject": "n0", "object": "un", "knowledge_type": "inferred"},
		"e1": {"subject": "un", "object": "n2", "knowledge_type": "inferred"},
		"e2": {"subject": "n0", "object": "n2", "knowledge_type": "inferred"}
	}
}}}`

const templateAResponse = `{"message": {
	"knowledge_graph": {
		"nodes": {"CHEBI:45783": {}, "NCBIGene:5468": {}, "MONDO:0005011": {}},
		"edges": {
			"drug-gene": {"subject": "CHEBI:45783", "object": "NCBIGene:5468", "predicate": "biolink:affects"},
			"gene-disease": {"subject": "NCBIGene:5468", "object": "MONDO:0005011", "predicate": "biolink:related_to"}
		}
	},
	"results": [{
		"node_bindings": {
			"creativeQuerySubject": [{"id": "CHEBI:45783"}],
			"un": [{"id": "NCBIGene:5468"}],
			"creativeQueryObject": [{"id": "MONDO:0005011"}]
		},
		"analyses": [{"edge_bindings": {"sub_un": [{"id": "drug-gene"}], "un_obj": [{"id": "gene-disease"}]}}]
	}]
}}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		configPath, responsePath, resolvedPath, descendantsPath = "", "", "", ""
		templateResponses = nil
		indent = true
	})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	out, err := run(t, "classify", writeFile(t, "query.json", pathfinderQuery))
	require.NoError(t, err)
	assert.Equal(t, "pathfinder\n", out)
}

func TestTemplatesCommand(t *testing.T) {
	out, err := run(t, "templates", writeFile(t, "query.json", pathfinderQuery))
	require.NoError(t, err)

	var templates []pathfinder.Template
	require.NoError(t, json.Unmarshal([]byte(out), &templates))
	assert.Len(t, templates, 3)
}

func TestTemplatesCommand_RejectsStandardQueries(t *testing.T) {
	query := `{"message": {"query_graph": {"nodes": {"n0": {"ids": ["MONDO:0005011"]}, "n1": {}}, "edges": {"e0": {"subject": "n1", "object": "n0"}}}}}`
	_, err := run(t, "templates", writeFile(t, "query.json", query))
	assert.ErrorIs(t, err, errNotPathfinder)
}

func TestQueryCommand_Pathfinder(t *testing.T) {
	query := writeFile(t, "query.json", pathfinderQuery)
	a := writeFile(t, "a.json", templateAResponse)

	out, err := run(t, "query", query, "--template-response", a, "--indent=false")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))

	var resp model.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Message.Results, 1)
	assert.Equal(t, []string{"NCBIGene:5468"}, resp.Message.Results[0].BoundNodeIDs("un"))
	assert.Contains(t, resp.Message.AuxiliaryGraphs, "pathfinder-CHEBI:45783-NCBIGene:5468-MONDO:0005011")
}

func TestQueryCommand_MissingFile(t *testing.T) {
	_, err := run(t, "query", filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorContains(t, err, "failed to open")
}

func TestPruneCommand(t *testing.T) {
	resp := `{"message": {
		"knowledge_graph": {
			"nodes": {"a": {}, "b": {}, "c": {}},
			"edges": {"ab": {"subject": "a", "object": "b"}, "bc": {"subject": "b", "object": "c"}}
		},
		"results": [{"node_bindings": {"n0": [{"id": "a"}]}, "analyses": [{"edge_bindings": {"e0": [{"id": "ab"}]}}]}]
	}}`
	out, err := run(t, "prune", writeFile(t, "resp.json", resp))
	require.NoError(t, err)

	var pruned model.Response
	require.NoError(t, json.Unmarshal([]byte(out), &pruned))
	assert.Len(t, pruned.Message.KnowledgeGraph.Nodes, 2)
	assert.Len(t, pruned.Message.KnowledgeGraph.Edges, 1)
}
