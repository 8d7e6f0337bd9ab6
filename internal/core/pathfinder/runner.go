package pathfinder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/creative/internal/core/model"
)

// Executor runs a query graph against the federated sources.
type Executor interface {
	Execute(ctx context.Context, qg *model.QueryGraph) (*model.Response, error)
}

// TemplateResponse pairs an executed template with its index in the list
// returned by GenerateTemplates.
type TemplateResponse struct {
	Index    int
	Response *model.Response
}

// TemplateTag prefixes log messages that belong to the template at index.
func TemplateTag(index int) string {
	return fmt.Sprintf("[Template-%d]", index+1)
}

// RunTemplates executes the templates concurrently, at most limit at a time,
// and returns the responses in completion order. A failing template is
// logged and skipped; only cancellation of ctx aborts the run, including a
// cancellation that surfaces as an Execute error.
func RunTemplates(ctx context.Context, exec Executor, templates []Template, limit int) ([]TemplateResponse, []model.LogEntry, error) {
	var (
		mu        sync.Mutex
		responses []TemplateResponse
		logs      []model.LogEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, tmpl := range templates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tag := TemplateTag(i)
			resp, err := exec.Execute(gctx, tmpl.QueryGraph())
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			logs = append(logs, model.Info("%s Querying: %s", tag, tmpl.Log))
			if err != nil {
				slog.Warn("template execution failed", "template", i+1, "error", err)
				logs = append(logs, model.Warning("%s Failed to execute template: %v", tag, err))
				return nil
			}
			if resp == nil {
				return nil
			}
			for _, entry := range resp.Logs {
				entry.Message = tag + " " + entry.Message
				logs = append(logs, entry)
			}
			logs = append(logs, model.Info("%s Template returned %d results.", tag, len(resp.Message.Results)))
			responses = append(responses, TemplateResponse{Index: i, Response: resp})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return responses, logs, fmt.Errorf("run templates: %w", err)
	}
	return responses, logs, nil
}
