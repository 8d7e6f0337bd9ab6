package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/creative/internal/core/model"
)

func queryLog(msg, api string, hits int) model.LogEntry {
	l := model.Info("%s", msg)
	l.Data = &model.LogData{Type: model.LogTypeQuery, Hits: hits, APIName: api}
	return l
}

func cacheLog(msg string, apis ...string) model.LogEntry {
	l := model.Info("%s", msg)
	l.Data = &model.LogData{Type: model.LogTypeCacheHit, APINames: apis}
	return l
}

func summaryResponse() *model.Response {
	return &model.Response{Message: model.Message{
		KnowledgeGraph: &model.KnowledgeGraph{
			Nodes: map[string]*model.KGNode{"a": {}, "b": {}, "c": {}},
			Edges: map[string]*model.KGEdge{"ab": {}, "bc": {}},
		},
		Results: []model.Result{{}},
	}}
}

func TestExecutionSummary(t *testing.T) {
	logs := []model.LogEntry{
		queryLog("call to MyGene", "MyGene.info API", 4),
		queryLog("call to MyChem", "MyChem.info API", 0),
		queryLog("call to SEMMED", "SEMMED API", 2),
		queryLog("second call to MyGene", "MyGene.info API", 1),
		model.Info("unrelated"),
	}

	got := ExecutionSummary(summaryResponse(), logs, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "Execution Summary: (3) nodes / (2) edges / (1) results; (3/4) queries returned results from(2) unique API", got[0].Message)
	assert.Equal(t, "APIs: MyGene.info API, SEMMED API ", got[1].Message)
	assert.Equal(t, model.LevelInfo, got[0].Level)
}

func TestExecutionSummary_CachedAndSingleSource(t *testing.T) {
	logs := []model.LogEntry{
		queryLog("call", "MyGene.info API", 3),
		cacheLog("cache hit", "MyGene.info API"),
	}

	got := ExecutionSummary(summaryResponse(), logs, nil)
	assert.Equal(t, "Execution Summary: (3) nodes / (2) edges / (1) results; (1/1) queries (1 cached qEdges) returned results from(1) unique APIs", got[0].Message)
	assert.Equal(t, "APIs: MyGene.info API ", got[1].Message)
}

func TestExecutionSummary_ResultTemplates(t *testing.T) {
	logs := []model.LogEntry{
		queryLog("[Template-1] call", "MyGene.info API", 3),
		queryLog("[Template-2] call", "SEMMED API", 5),
		queryLog("[Template-3] call", "RTX KG2 API", 1),
		cacheLog("[Template-2] cache hit", "Text Mining API"),
		cacheLog("[Template-3] cache hit", "CTD API"),
	}

	c := Count(summaryResponse(), logs, []int{0, 2})
	assert.Equal(t, 2, c.ResultQueries)
	assert.Equal(t, 3, c.Queries)
	assert.Equal(t, 2, c.CachedQEdges)
	assert.Equal(t, []string{"MyGene.info API", "RTX KG2 API", "CTD API"}, c.Sources)
}

func TestExecutionSummary_EmptyGraph(t *testing.T) {
	got := ExecutionSummary(&model.Response{}, nil, nil)
	assert.Equal(t, "Execution Summary: (0) nodes / (0) edges / (0) results; (0/0) queries returned results from(0) unique API", got[0].Message)
	assert.Equal(t, "APIs:  ", got[1].Message)
}
