package output

import (
	"github.com/scopeforge/impactscope/internal/callgraph"
	"github.com/scopeforge/impactscope/internal/coverage"
	"github.com/scopeforge/impactscope/internal/impact"
)

// FromCoverageInfo converts an internal/coverage.Info to its wire shape.
func FromCoverageInfo(info coverage.Info) TestCoverageInfo {
	path := make([]string, len(info.CallPath))
	for i, id := range info.CallPath {
		path[i] = id.Key()
	}
	return TestCoverageInfo{
		TestID:           info.Test.Key(),
		TestSimpleName:   info.Test.MethodName,
		TestDeclaringType: info.Test.TypeName,
		TestFramework:    string(info.Framework),
		TestCategory:     string(info.Category),
		CoveredMethodID:  info.Target.Key(),
		CallPath:         path,
		CallDepth:        info.Depth,
		IsDirectCall:     info.IsDirect,
		Confidence:       info.Confidence,
		Reasons:          info.Reasons,
	}
}

// FromCoverageResult converts a coverage.Result to its wire envelope.
func FromCoverageResult(r coverage.Result) CoverageMapResult {
	entries := make([]TestCoverageInfo, len(r.Infos))
	for i, info := range r.Infos {
		entries[i] = FromCoverageInfo(info)
	}
	return CoverageMapResult{Entries: entries, Status: r.Status, Warnings: r.Warnings}
}

// FromCoverageMap flattens a coverage.Map's per-target entries.
func FromCoverageMap(m coverage.Map) CoverageMapResult {
	var entries []TestCoverageInfo
	for _, infos := range m.Entries {
		for _, info := range infos {
			entries = append(entries, FromCoverageInfo(info))
		}
	}
	return CoverageMapResult{Entries: entries, Status: "complete"}
}

// FromGraph summarizes a callgraph.Graph, including the full adjacency
// only when includeEdges is set.
func FromGraph(g *callgraph.Graph, mode string, includeEdges bool) CallGraphSummary {
	edgeCount := 0
	for _, callees := range g.Forward {
		edgeCount += len(callees)
	}
	summary := CallGraphSummary{NodeCount: len(g.Info), EdgeCount: edgeCount, Mode: mode}
	if includeEdges {
		summary.Edges = make(map[string][]string, len(g.Forward))
		for k, v := range g.Forward {
			summary.Edges[k] = append([]string(nil), v...)
		}
	}
	return summary
}

// FromTestSelection converts an impact.TestSelection to its wire shape.
func FromTestSelection(sel impact.TestSelection) TestSelectionEntry {
	return TestSelectionEntry{
		TestID:     sel.Test.Key(),
		Confidence: sel.Confidence,
		Bucket:     string(sel.Bucket),
		Reasons:    sel.Reasons,
	}
}

// FromTestSelections converts a slice of impact.TestSelection.
func FromTestSelections(sels []impact.TestSelection) []TestSelectionEntry {
	out := make([]TestSelectionEntry, len(sels))
	for i, sel := range sels {
		out[i] = FromTestSelection(sel)
	}
	return out
}

// FromImpactAnalysis builds analyze-diff's wire result.
func FromImpactAnalysis(affectedCount int, impacted []impact.TestSelection) ImpactAnalysisResult {
	return ImpactAnalysisResult{
		AffectedMethodCount: affectedCount,
		ImpactedTests:       FromTestSelections(impacted),
	}
}

// FromTestSelectionResult builds select-tests's wire result.
func FromTestSelectionResult(level impact.ConfidenceLevel, selected []impact.TestSelection) TestSelectionResult {
	return TestSelectionResult{
		ConfidenceLevel: string(level),
		SelectedTests:   FromTestSelections(selected),
		TotalCount:      len(selected),
	}
}
