// Schema defines the wire representation of impactscope's external
// interfaces (spec §6): one struct per operation result, tagged for
// both YAML and JSON so a single Formatter serves either rendering.
package output

// TestCoverageInfo is the wire shape of internal/coverage.Info, the
// result element of find-tests-for-method / build-coverage-map.
type TestCoverageInfo struct {
	TestID              string   `yaml:"test_id" json:"test_id"`
	TestSimpleName       string   `yaml:"test_simple_name" json:"test_simple_name"`
	TestDeclaringType    string   `yaml:"test_declaring_type" json:"test_declaring_type"`
	TestFramework        string   `yaml:"test_framework" json:"test_framework"`
	TestCategory         string   `yaml:"test_category" json:"test_category"`
	CoveredMethodID      string   `yaml:"covered_method_id" json:"covered_method_id"`
	CallPath             []string `yaml:"call_path" json:"call_path"`
	CallDepth            int      `yaml:"call_depth" json:"call_depth"`
	IsDirectCall         bool     `yaml:"is_direct_call" json:"is_direct_call"`
	Confidence           float64  `yaml:"confidence" json:"confidence"`
	Reasons              []string `yaml:"reasons" json:"reasons"`
}

// CoverageMapResult wraps build-coverage-map's bulk result with the
// spec §7 status/warnings envelope.
type CoverageMapResult struct {
	Entries  []TestCoverageInfo `yaml:"entries" json:"entries"`
	Status   string             `yaml:"status" json:"status"`
	Warnings []string           `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}

// CallGraphSummary is build-call-graph's wire result: node/edge counts
// and, when requested, the full adjacency (kept separate so a caller
// asking only "how big is this graph" doesn't pay for serializing
// every edge).
type CallGraphSummary struct {
	NodeCount int                 `yaml:"node_count" json:"node_count"`
	EdgeCount int                 `yaml:"edge_count" json:"edge_count"`
	Mode      string              `yaml:"mode" json:"mode"` // "full" | "incremental"
	Edges     map[string][]string `yaml:"edges,omitempty" json:"edges,omitempty"`
}

// TestSelectionEntry is the wire shape of internal/impact.TestSelection.
type TestSelectionEntry struct {
	TestID     string   `yaml:"test_id" json:"test_id"`
	Confidence float64  `yaml:"confidence" json:"confidence"`
	Bucket     string   `yaml:"bucket" json:"bucket"`
	Reasons    []string `yaml:"reasons" json:"reasons"`
}

// ImpactAnalysisResult is analyze-diff's wire result.
type ImpactAnalysisResult struct {
	AffectedMethodCount int                  `yaml:"affected_method_count" json:"affected_method_count"`
	ImpactedTests       []TestSelectionEntry `yaml:"impacted_tests" json:"impacted_tests"`
}

// TestSelectionResult is select-tests's wire result: the execution
// plan plus the level it was computed at, so a caller can tell a Fast
// plan from a Full one without re-deriving thresholds.
type TestSelectionResult struct {
	ConfidenceLevel string               `yaml:"confidence_level" json:"confidence_level"`
	SelectedTests   []TestSelectionEntry `yaml:"selected_tests" json:"selected_tests"`
	TotalCount      int                  `yaml:"total_count" json:"total_count"`
}

// TraceExecutionResult is trace-execution's wire result: the forward
// reachability set from a given method, the supplemented operation
// SPEC_FULL.md adds alongside the reverse coverage queries.
type TraceExecutionResult struct {
	RootMethodID  string   `yaml:"root_method_id" json:"root_method_id"`
	ReachedMethods []string `yaml:"reached_methods" json:"reached_methods"`
	MaxDepthHit   bool     `yaml:"max_depth_hit" json:"max_depth_hit"`
}

// CacheStats is cache:stats's wire result.
type CacheStats struct {
	Tier          string  `yaml:"tier" json:"tier"`
	EntryCount    int     `yaml:"entry_count" json:"entry_count"`
	TotalBytes    int64   `yaml:"total_bytes" json:"total_bytes"`
	HitCount      int64   `yaml:"hit_count" json:"hit_count"`
	MissCount     int64   `yaml:"miss_count" json:"miss_count"`
	EvictionCount int64   `yaml:"eviction_count" json:"eviction_count"`
}

// CacheStatus is cache:status's wire result: a per-tier stats listing
// plus the durable store's last recorded run, so `cache status`
// answers both "what's cached" and "when did we last analyze".
type CacheStatus struct {
	Tiers       []CacheStats `yaml:"tiers" json:"tiers"`
	LastRunID   string       `yaml:"last_run_id,omitempty" json:"last_run_id,omitempty"`
	LastRunTime string       `yaml:"last_run_time,omitempty" json:"last_run_time,omitempty"`
}

// AnalyzeSolutionResult is analyze-solution's wire result: the
// assemblies-and-test-count summary spec §6 names.
type AnalyzeSolutionResult struct {
	SolutionPath string   `yaml:"solution_path" json:"solution_path"`
	Projects     []string `yaml:"projects" json:"projects"`
	MethodCount  int      `yaml:"method_count" json:"method_count"`
	TestCount    int      `yaml:"test_count" json:"test_count"`
	Warnings     []string `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}
