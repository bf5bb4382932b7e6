package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/scopeforge/impactscope/internal/impact"
	"github.com/scopeforge/impactscope/internal/output"
	"github.com/scopeforge/impactscope/internal/symbol"
)

func (s *Server) registerAnalyzeSolutionTool() error {
	tool := mcp.NewTool("ix_analyze_solution",
		mcp.WithDescription("Load the solution, build the call graph, and return assembly/test count summary."),
	)
	s.mcpServer.AddTool(tool, s.handleAnalyzeSolution)
	return nil
}

func (s *Server) handleAnalyzeSolution(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()
	summary, err := s.engine.AnalyzeSolution(ctx)
	if err != nil {
		return toolResultError(err), nil
	}
	result := output.AnalyzeSolutionResult{
		SolutionPath: s.engine.SolutionPath,
		Projects:     summary.Projects,
		MethodCount:  summary.MethodCount,
		TestCount:    summary.TestCount,
		Warnings:     summary.Warnings,
	}
	text, err := output.NewTextFormatter().Format(result)
	if err != nil {
		return toolResultError(err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) registerFindTestsTool() error {
	tool := mcp.NewTool("ix_find_tests",
		mcp.WithDescription("Find the tests that reach a given method, ranked by confidence."),
		mcp.WithString("method_id",
			mcp.Required(),
			mcp.Description("Canonical method id, e.g. Billing.Invoice.Total()"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleFindTests)
	return nil
}

func (s *Server) handleFindTests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()
	args := req.GetArguments()
	methodIDStr, ok := args["method_id"].(string)
	if !ok || methodIDStr == "" {
		return mcp.NewToolResultError("method_id parameter is required"), nil
	}

	target, err := symbol.ParseKey(methodIDStr)
	if err != nil {
		return toolResultError(err), nil
	}

	result, err := s.engine.FindTestsForMethod(ctx, target)
	if err != nil {
		return toolResultError(err), nil
	}

	text, err := output.NewTextFormatter().Format(output.FromCoverageResult(result))
	if err != nil {
		return toolResultError(err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) registerCoverageMapTool() error {
	tool := mcp.NewTool("ix_coverage_map",
		mcp.WithDescription("Build the bulk reverse coverage map for every production method reachable from at least one test."),
	)
	s.mcpServer.AddTool(tool, s.handleCoverageMap)
	return nil
}

func (s *Server) handleCoverageMap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()
	m, err := s.engine.BuildCoverageMap(ctx)
	if err != nil {
		return toolResultError(err), nil
	}
	text, err := output.NewTextFormatter().Format(output.FromCoverageMap(m))
	if err != nil {
		return toolResultError(err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) registerAnalyzeDiffTool() error {
	tool := mcp.NewTool("ix_analyze_diff",
		mcp.WithDescription("Given a list of changed method ids, return the impacted test set ranked by confidence."),
		mcp.WithArray("changed_method_ids",
			mcp.Required(),
			mcp.Description("Canonical method ids that changed"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleAnalyzeDiff)
	return nil
}

func (s *Server) handleAnalyzeDiff(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()
	args := req.GetArguments()
	raw, ok := args["changed_method_ids"].([]interface{})
	if !ok || len(raw) == 0 {
		return mcp.NewToolResultError("changed_method_ids parameter is required"), nil
	}

	changed := make([]symbol.ID, 0, len(raw))
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue
		}
		id, err := symbol.ParseKey(str)
		if err != nil {
			return toolResultError(fmt.Errorf("changed_method_ids: %w", err)), nil
		}
		changed = append(changed, id)
	}

	selections, err := s.engine.AnalyzeDiffIDs(ctx, changed)
	if err != nil {
		return toolResultError(err), nil
	}

	result := output.FromImpactAnalysis(len(changed), selections)
	text, err := output.NewTextFormatter().Format(result)
	if err != nil {
		return toolResultError(err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) registerSelectTestsTool() error {
	tool := mcp.NewTool("ix_select_tests",
		mcp.WithDescription("Select a test execution plan at a confidence level (Fast|Medium|High|Full) from a prior impact analysis."),
		mcp.WithArray("changed_method_ids",
			mcp.Required(),
			mcp.Description("Canonical method ids that changed"),
		),
		mcp.WithString("confidence_level",
			mcp.Description("Fast, Medium, High, or Full (default: Medium)"),
		),
		mcp.WithNumber("max_count",
			mcp.Description("Maximum number of tests to select (0 = unbounded)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleSelectTests)
	return nil
}

func (s *Server) handleSelectTests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()
	args := req.GetArguments()
	raw, ok := args["changed_method_ids"].([]interface{})
	if !ok || len(raw) == 0 {
		return mcp.NewToolResultError("changed_method_ids parameter is required"), nil
	}

	changed := make([]symbol.ID, 0, len(raw))
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue
		}
		id, err := symbol.ParseKey(str)
		if err != nil {
			return toolResultError(fmt.Errorf("changed_method_ids: %w", err)), nil
		}
		changed = append(changed, id)
	}

	level := impact.ConfidenceLevel("Medium")
	if lv, ok := args["confidence_level"].(string); ok && lv != "" {
		level = impact.ConfidenceLevel(lv)
	}
	maxCount := 0
	if mc, ok := args["max_count"].(float64); ok {
		maxCount = int(mc)
	}

	impacted, err := s.engine.AnalyzeDiffIDs(ctx, changed)
	if err != nil {
		return toolResultError(err), nil
	}
	selected := impact.SelectTests(impacted, level, impact.Constraints{MaxCount: maxCount})

	text, err := output.NewTextFormatter().Format(output.FromTestSelectionResult(level, selected))
	if err != nil {
		return toolResultError(err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) registerTraceTool() error {
	tool := mcp.NewTool("ix_trace",
		mcp.WithDescription("Forward-trace every method reachable from a given root method."),
		mcp.WithString("method_id",
			mcp.Required(),
			mcp.Description("Canonical root method id"),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Maximum BFS depth (default: 10)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleTrace)
	return nil
}

func (s *Server) handleTrace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()
	args := req.GetArguments()
	methodIDStr, ok := args["method_id"].(string)
	if !ok || methodIDStr == "" {
		return mcp.NewToolResultError("method_id parameter is required"), nil
	}
	root, err := symbol.ParseKey(methodIDStr)
	if err != nil {
		return toolResultError(err), nil
	}
	maxDepth := 0
	if d, ok := args["max_depth"].(float64); ok {
		maxDepth = int(d)
	}

	result, err := s.engine.TraceExecution(ctx, root, maxDepth)
	if err != nil {
		return toolResultError(err), nil
	}

	reached := make([]string, 0, len(result.Graph.Info))
	for key := range result.Graph.Info {
		if key != root.Key() {
			reached = append(reached, key)
		}
	}

	wire := output.TraceExecutionResult{
		RootMethodID:   root.Key(),
		ReachedMethods: reached,
		MaxDepthHit:    result.Status == "partial",
	}
	text, err := output.NewTextFormatter().Format(wire)
	if err != nil {
		return toolResultError(err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) registerCacheStatusTool() error {
	tool := mcp.NewTool("ix_cache_status",
		mcp.WithDescription("Report Cache Layer statistics and the last recorded analysis run."),
	)
	s.mcpServer.AddTool(tool, s.handleCacheStatus)
	return nil
}

func (s *Server) handleCacheStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()
	stats, hasRun, run := s.engine.CacheStatus()

	var tiers []output.CacheStats
	for name, st := range stats {
		tiers = append(tiers, output.CacheStats{
			Tier:          name,
			EntryCount:    int(st.TotalEntries),
			TotalBytes:    st.TotalCompressed,
			HitCount:      st.HitCount,
			MissCount:     st.MissCount,
			EvictionCount: st.EvictionCount,
		})
	}

	wire := output.CacheStatus{Tiers: tiers}
	if hasRun {
		wire.LastRunID = run.RunID
		wire.LastRunTime = run.FinishedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	text, err := output.NewTextFormatter().Format(wire)
	if err != nil {
		return toolResultError(err), nil
	}
	return mcp.NewToolResultText(text), nil
}
