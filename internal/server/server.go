// Package server exposes the assembly pipeline over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/agenthands/creative/internal/config"
	"github.com/agenthands/creative/internal/core"
	"github.com/agenthands/creative/internal/core/graph"
	"github.com/agenthands/creative/internal/core/model"
	"github.com/agenthands/creative/internal/core/pathfinder"
	"github.com/agenthands/creative/internal/core/shape"
	"github.com/agenthands/creative/internal/core/subclass"
	"github.com/agenthands/creative/internal/telemetry"
)

type Server struct {
	Config   *config.Config
	Metrics  *telemetry.Metrics
	Gatherer prometheus.Gatherer
	// Exporter, when set, receives every assembled response.
	Exporter core.Exporter
}

// NewServer registers the pipeline metrics with reg.
func NewServer(cfg *config.Config, reg *prometheus.Registry, exporter core.Exporter) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Server{
		Config:   cfg,
		Metrics:  telemetry.NewMetrics(reg),
		Gatherer: reg,
		Exporter: exporter,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()
	r.Use(otelgin.Middleware(s.Config.Telemetry.ServiceName))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	v1.POST("/classify", s.Classify)
	v1.POST("/templates", s.Templates)
	v1.POST("/query", s.Query)
	v1.POST("/prune", s.Prune)

	return r
}

type QueryGraphRequest struct {
	Message struct {
		QueryGraph *model.QueryGraph `json:"query_graph" binding:"required"`
	} `json:"message"`
}

func (s *Server) Classify(c *gin.Context) {
	var req QueryGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	qg := req.Message.QueryGraph
	resp := gin.H{"shape": shape.Classify(qg).String()}
	if shape.IsPathfinder(qg) {
		if roles, err := pathfinder.Extract(qg); err == nil {
			resp["roles"] = roles
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) Templates(c *gin.Context) {
	var req QueryGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	templates, err := templatesFor(req.Message.QueryGraph)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func templatesFor(qg *model.QueryGraph) ([]pathfinder.Template, error) {
	roles, err := pathfinder.Extract(qg)
	if err != nil {
		return nil, err
	}
	return pathfinder.GenerateTemplates(qg.Nodes[roles.SubjectNodeID], qg.Nodes[roles.UnpinnedNodeID], qg.Nodes[roles.ObjectNodeID]), nil
}

// QueryRequest carries a query graph together with what the execution layer
// returned for it: one response for standard and inferred queries, or one
// response per generated template, in template order, for pathfinder queries.
// Resolved and Descendants stand in for the id-resolution and ontology
// services.
type QueryRequest struct {
	QueryGraphRequest
	Response          *model.Response       `json:"response,omitempty"`
	TemplateResponses []*model.Response     `json:"template_responses,omitempty"`
	Resolved          core.StaticResolver   `json:"resolved,omitempty"`
	Descendants       subclass.StaticLookup `json:"descendants,omitempty"`
}

func (s *Server) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	ctx := c.Request.Context()
	qg := req.Message.QueryGraph

	var exec pathfinder.Executor = core.NewReplay(req.Response)
	if shape.IsPathfinder(qg) {
		templates, err := templatesFor(qg)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		replay, err := core.NewTemplateReplay(templates, req.TemplateResponses)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		exec = replay
	}

	h := core.NewHandler(s.Config, req.Resolved, req.Descendants, exec)
	h.Metrics = s.Metrics
	h.Exporter = s.Exporter

	if err := h.SetQueryGraph(ctx, qg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Query(ctx); err != nil {
		slog.Error("query failed", "query", h.QueryID(), "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, subclass.ErrDanglingBinding) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, h.Response())
		return
	}
	c.JSON(http.StatusOK, h.Response())
}

type PruneRequest struct {
	Message model.Message `json:"message"`
}

// Prune reduces a message's knowledge graph and auxiliary graphs to what its
// results reach.
func (s *Server) Prune(c *gin.Context) {
	var req PruneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	msg := req.Message
	g := graph.FromMessage(&msg)
	stats := g.Prune(msg.Results)
	s.Metrics.ObservePrune(stats.NodesRemoved, stats.EdgesRemoved, stats.AuxGraphsRemoved)

	c.JSON(http.StatusOK, gin.H{
		"message": g.Message(msg.QueryGraph, msg.Results),
		"stats":   stats,
	})
}
