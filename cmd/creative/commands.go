package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/creative/internal/config"
	"github.com/agenthands/creative/internal/core"
	"github.com/agenthands/creative/internal/core/common"
	"github.com/agenthands/creative/internal/core/graph"
	"github.com/agenthands/creative/internal/core/model"
	"github.com/agenthands/creative/internal/core/pathfinder"
	"github.com/agenthands/creative/internal/core/shape"
	"github.com/agenthands/creative/internal/core/subclass"
)

var errNotPathfinder = errors.New("query graph is not a pathfinder query")

var (
	configPath        string
	indent            bool
	responsePath      string
	templateResponses []string
	resolvedPath      string
	descendantsPath   string

	rootCmd = &cobra.Command{
		Use:           "creative",
		Short:         "Assemble creative-mode TRAPI results from executed queries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	classifyCmd = &cobra.Command{
		Use:   "classify [query.json]",
		Short: "Print the shape of a query graph",
		Args:  cobra.ExactArgs(1),
		RunE:  runClassify,
	}

	templatesCmd = &cobra.Command{
		Use:   "templates [query.json]",
		Short: "Print the templates generated for a pathfinder query",
		Args:  cobra.ExactArgs(1),
		RunE:  runTemplates,
	}

	queryCmd = &cobra.Command{
		Use:   "query [query.json]",
		Short: "Assemble a response from recorded execution results",
		Long: `Runs the assembly pipeline for a query graph. The execution layer is
replayed from files: --response for standard and inferred queries, or one
--template-response per generated template, in template order, for
pathfinder queries.`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	pruneCmd = &cobra.Command{
		Use:   "prune [response.json]",
		Short: "Prune a response to what its results reach",
		Args:  cobra.ExactArgs(1),
		RunE:  runPrune,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&indent, "indent", true, "indent JSON output")

	queryCmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	queryCmd.Flags().StringVar(&responsePath, "response", "", "recorded response of a standard or inferred query")
	queryCmd.Flags().StringArrayVar(&templateResponses, "template-response", nil, "recorded response of a pathfinder template, repeatable")
	queryCmd.Flags().StringVar(&resolvedPath, "resolved", "", "JSON map of curie to resolved entity")
	queryCmd.Flags().StringVar(&descendantsPath, "descendants", "", "JSON map of curie to descendant to ontology")

	rootCmd.AddCommand(classifyCmd, templatesCmd, queryCmd, pruneCmd)
}

type queryFile struct {
	Message model.Message `json:"message"`
}

func loadQueryGraph(path string) (*model.QueryGraph, error) {
	q, err := common.LoadJSON[queryFile](path)
	if err != nil {
		return nil, err
	}
	if q.Message.QueryGraph == nil {
		return nil, fmt.Errorf("%s: message has no query_graph", path)
	}
	return q.Message.QueryGraph, nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	qg, err := loadQueryGraph(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), shape.Classify(qg))
	return nil
}

func generateTemplates(qg *model.QueryGraph) ([]pathfinder.Template, error) {
	if !shape.IsPathfinder(qg) {
		return nil, errNotPathfinder
	}
	roles, err := pathfinder.Extract(qg)
	if err != nil {
		return nil, err
	}
	return pathfinder.GenerateTemplates(qg.Nodes[roles.SubjectNodeID], qg.Nodes[roles.UnpinnedNodeID], qg.Nodes[roles.ObjectNodeID]), nil
}

func runTemplates(cmd *cobra.Command, args []string) error {
	qg, err := loadQueryGraph(args[0])
	if err != nil {
		return err
	}
	templates, err := generateTemplates(qg)
	if err != nil {
		return err
	}
	return common.WriteJSON(cmd.OutOrStdout(), templates, indent)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	qg, err := loadQueryGraph(args[0])
	if err != nil {
		return err
	}

	cfg := config.Default()
	if configPath != "" {
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	exec, err := replayFor(qg)
	if err != nil {
		return err
	}
	resolver := core.StaticResolver{}
	if resolvedPath != "" {
		if resolver, err = common.LoadJSON[core.StaticResolver](resolvedPath); err != nil {
			return err
		}
	}
	lookup := subclass.StaticLookup{}
	if descendantsPath != "" {
		if lookup, err = common.LoadJSON[subclass.StaticLookup](descendantsPath); err != nil {
			return err
		}
	}

	h := core.NewHandler(cfg, resolver, lookup, exec)
	if err := h.SetQueryGraph(ctx, qg); err != nil {
		return err
	}
	queryErr := h.Query(ctx)
	if err := common.WriteJSON(cmd.OutOrStdout(), h.Response(), indent); err != nil {
		return err
	}
	return queryErr
}

func replayFor(qg *model.QueryGraph) (*core.Replay, error) {
	if !shape.IsPathfinder(qg) {
		if responsePath == "" {
			return core.NewReplay(nil), nil
		}
		resp, err := common.LoadJSON[*model.Response](responsePath)
		if err != nil {
			return nil, err
		}
		return core.NewReplay(resp), nil
	}

	templates, err := generateTemplates(qg)
	if err != nil {
		return nil, err
	}
	responses := make([]*model.Response, 0, len(templateResponses))
	for _, path := range templateResponses {
		resp, err := common.LoadJSON[*model.Response](path)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return core.NewTemplateReplay(templates, responses)
}

func runPrune(cmd *cobra.Command, args []string) error {
	resp, err := common.LoadJSON[*model.Response](args[0])
	if err != nil {
		return err
	}
	g := graph.FromMessage(&resp.Message)
	stats := g.Prune(resp.Message.Results)
	fmt.Fprintf(cmd.ErrOrStderr(), "removed %d nodes, %d edges, %d auxiliary graphs\n",
		stats.NodesRemoved, stats.EdgesRemoved, stats.AuxGraphsRemoved)
	resp.Message = g.Message(resp.Message.QueryGraph, resp.Message.Results)
	return common.WriteJSON(cmd.OutOrStdout(), resp, indent)
}
