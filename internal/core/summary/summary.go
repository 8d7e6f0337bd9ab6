package summary

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agenthands/creative/internal/core/model"
	"github.com/agenthands/creative/internal/core/pathfinder"
)

// Counts holds what the execution summary reports.
type Counts struct {
	Nodes         int
	Edges         int
	Results       int
	ResultQueries int
	Queries       int
	CachedQEdges  int
	Sources       []string
}

// Count tallies resp and the query logs. When resultTemplates is non-nil only
// logs tagged with one of those template indices count towards the queries
// that returned results and towards the sources.
func Count(resp *model.Response, logs []model.LogEntry, resultTemplates []int) Counts {
	var c Counts
	if kg := resp.Message.KnowledgeGraph; kg != nil {
		c.Nodes = len(kg.Nodes)
		c.Edges = len(kg.Edges)
	}
	c.Results = len(resp.Message.Results)

	fromTemplate := func(msg string) bool {
		if resultTemplates == nil {
			return true
		}
		return slices.ContainsFunc(resultTemplates, func(i int) bool {
			return strings.Contains(msg, pathfinder.TemplateTag(i))
		})
	}

	for _, l := range logs {
		if l.Data == nil {
			continue
		}
		switch l.Data.Type {
		case model.LogTypeQuery:
			c.Queries++
			if l.Data.Hits > 0 && fromTemplate(l.Message) {
				c.ResultQueries++
				c.Sources = appendUnique(c.Sources, l.Data.APIName)
			}
		case model.LogTypeCacheHit:
			c.CachedQEdges++
			if fromTemplate(l.Message) {
				c.Sources = appendUnique(c.Sources, l.Data.APINames...)
			}
		}
	}
	return c
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}

// Logs renders the two execution summary log lines.
func (c Counts) Logs() []model.LogEntry {
	cached := ""
	if c.CachedQEdges > 0 {
		cached = fmt.Sprintf(" (%d cached qEdges)", c.CachedQEdges)
	}
	// The plural is only added for exactly one source; clients match this text.
	plural := ""
	if len(c.Sources) == 1 {
		plural = "s"
	}
	return []model.LogEntry{
		model.Info("Execution Summary: (%d) nodes / (%d) edges / (%d) results; (%d/%d) queries%s returned results from(%d) unique API%s",
			c.Nodes, c.Edges, c.Results, c.ResultQueries, c.Queries, cached, len(c.Sources), plural),
		model.Info("APIs: %s ", strings.Join(c.Sources, ", ")),
	}
}

// ExecutionSummary returns the summary log lines for resp.
func ExecutionSummary(resp *model.Response, logs []model.LogEntry, resultTemplates []int) []model.LogEntry {
	return Count(resp, logs, resultTemplates).Logs()
}
