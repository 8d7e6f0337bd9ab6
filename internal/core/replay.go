package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agenthands/creative/internal/core/model"
	"github.com/agenthands/creative/internal/core/pathfinder"
)

// StaticResolver resolves curies from a fixed map.
type StaticResolver map[string]model.ResolvedEntity

func (s StaticResolver) Resolve(_ context.Context, curies []string) (map[string]model.ResolvedEntity, error) {
	out := make(map[string]model.ResolvedEntity)
	for _, c := range curies {
		if e, ok := s[c]; ok {
			out[c] = e
		}
	}
	return out, nil
}

// Replay is an executor that answers with responses recorded ahead of time,
// matched by query graph. Query graphs without a recording get Fallback, or an
// empty response when Fallback is nil.
type Replay struct {
	Fallback  *model.Response
	responses map[string]*model.Response
}

func NewReplay(fallback *model.Response) *Replay {
	return &Replay{Fallback: fallback, responses: make(map[string]*model.Response)}
}

// NewTemplateReplay records responses[i] as the answer to templates[i].
// Nil responses are treated as templates that returned nothing.
func NewTemplateReplay(templates []pathfinder.Template, responses []*model.Response) (*Replay, error) {
	if len(responses) > len(templates) {
		return nil, fmt.Errorf("got %d template responses for %d templates", len(responses), len(templates))
	}
	r := NewReplay(nil)
	for i, resp := range responses {
		if resp == nil {
			continue
		}
		if err := r.Add(templates[i].QueryGraph(), resp); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Replay) Add(qg *model.QueryGraph, resp *model.Response) error {
	key, err := replayKey(qg)
	if err != nil {
		return err
	}
	r.responses[key] = resp
	return nil
}

func (r *Replay) Execute(_ context.Context, qg *model.QueryGraph) (*model.Response, error) {
	key, err := replayKey(qg)
	if err != nil {
		return nil, err
	}
	if resp, ok := r.responses[key]; ok {
		return resp, nil
	}
	if r.Fallback != nil {
		return r.Fallback, nil
	}
	return &model.Response{Message: model.Message{Results: []model.Result{}}}, nil
}

// replayKey relies on encoding/json writing map keys in sorted order.
func replayKey(qg *model.QueryGraph) (string, error) {
	b, err := json.Marshal(qg)
	if err != nil {
		return "", fmt.Errorf("encode query graph: %w", err)
	}
	return string(b), nil
}
