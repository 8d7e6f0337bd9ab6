package pathfinder

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/creative/internal/core/model"
)

type executorFunc func(ctx context.Context, qg *model.QueryGraph) (*model.Response, error)

func (f executorFunc) Execute(ctx context.Context, qg *model.QueryGraph) (*model.Response, error) {
	return f(ctx, qg)
}

func drugDiseaseTemplates() []Template {
	return GenerateTemplates(
		&model.QNode{Categories: []string{CategoryDrug}, IDs: []string{"CHEBI:45783"}},
		&model.QNode{Categories: []string{CategoryGene}},
		&model.QNode{Categories: []string{CategoryDisease}, IDs: []string{"MONDO:0005011"}},
	)
}

func TestRunTemplates(t *testing.T) {
	var calls atomic.Int32
	exec := executorFunc(func(_ context.Context, qg *model.QueryGraph) (*model.Response, error) {
		calls.Add(1)
		if _, ok := qg.Nodes[NodeCell]; ok {
			return nil, errors.New("upstream timeout")
		}
		return &model.Response{
			Message: model.Message{Results: []model.Result{{}}},
			Logs:    []model.LogEntry{model.Info("Querying 3 APIs")},
		}, nil
	})

	responses, logs, err := RunTemplates(context.Background(), exec, drugDiseaseTemplates(), 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())

	require.Len(t, responses, 2)
	indices := []int{responses[0].Index, responses[1].Index}
	assert.ElementsMatch(t, []int{0, 2}, indices)

	var warnings, forwarded int
	for _, l := range logs {
		if l.Level == model.LevelWarning {
			warnings++
			assert.True(t, strings.HasPrefix(l.Message, "[Template-2] "), l.Message)
		}
		if strings.HasSuffix(l.Message, "Querying 3 APIs") {
			forwarded++
			assert.Regexp(t, `^\[Template-[13]\] `, l.Message)
		}
	}
	assert.Equal(t, 1, warnings)
	assert.Equal(t, 2, forwarded)
}

func TestRunTemplates_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := executorFunc(func(ctx context.Context, _ *model.QueryGraph) (*model.Response, error) {
		return &model.Response{}, ctx.Err()
	})
	_, _, err := RunTemplates(ctx, exec, drugDiseaseTemplates(), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunTemplates_CancelledDuringExecute(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exec := executorFunc(func(ctx context.Context, _ *model.QueryGraph) (*model.Response, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	})
	_, logs, err := RunTemplates(ctx, exec, drugDiseaseTemplates()[:1], 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	for _, l := range logs {
		assert.NotContains(t, l.Message, "Failed to execute template")
	}
}

func TestTemplateTag(t *testing.T) {
	assert.Equal(t, "[Template-1]", TemplateTag(0))
	assert.Equal(t, "[Template-3]", TemplateTag(2))
}
