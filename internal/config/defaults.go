package config

// DefaultConfig returns impactscope's built-in defaults, used both as
// the base a loaded file is merged over and as the whole configuration
// when no `.ix/config.yaml` exists.
func DefaultConfig() *Config {
	return &Config{
		Projects: ProjectsConfig{
			Include:          []string{"**/*.csproj"},
			Exclude:          nil,
			ExcludeTypes:     nil,
			TestProjectsOnly: false,
		},
		Analysis: AnalysisConfig{
			MaxParallelism:    0, // 0 means "use GOMAXPROCS", mirrors runtime.NumCPU() default
			TimeoutSeconds:    300,
			MaxDepth:          0, // validated only; the engine does not read it and builds use callgraph.DefaultMaxDepth
			InclusiveDispatch: false,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Cache: CacheConfig{
			Dir: "",
		},
	}
}

// Merge overlays loaded on top of base, field by field: a zero value in
// loaded means "not set in the file", so base's value survives. Slices
// are overridden wholesale when loaded specifies any entries at all,
// never concatenated.
func Merge(loaded, base *Config) *Config {
	out := *base

	if loaded.Projects.Include != nil {
		out.Projects.Include = loaded.Projects.Include
	}
	if loaded.Projects.Exclude != nil {
		out.Projects.Exclude = loaded.Projects.Exclude
	}
	if loaded.Projects.ExcludeTypes != nil {
		out.Projects.ExcludeTypes = loaded.Projects.ExcludeTypes
	}
	out.Projects.TestProjectsOnly = loaded.Projects.TestProjectsOnly || base.Projects.TestProjectsOnly

	if loaded.Analysis.MaxParallelism != 0 {
		out.Analysis.MaxParallelism = loaded.Analysis.MaxParallelism
	}
	if loaded.Analysis.TimeoutSeconds != 0 {
		out.Analysis.TimeoutSeconds = loaded.Analysis.TimeoutSeconds
	}
	if loaded.Analysis.MaxDepth != 0 {
		out.Analysis.MaxDepth = loaded.Analysis.MaxDepth
	}
	out.Analysis.InclusiveDispatch = loaded.Analysis.InclusiveDispatch || base.Analysis.InclusiveDispatch

	if loaded.Output.Format != "" {
		out.Output.Format = loaded.Output.Format
	}
	if loaded.Cache.Dir != "" {
		out.Cache.Dir = loaded.Cache.Dir
	}

	return &out
}
