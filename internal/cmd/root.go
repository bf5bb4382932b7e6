// Package cmd contains the ix CLI commands: thin handlers that parse
// flags, open an internal/engine.Engine, delegate to it, and render
// the result through internal/output. Grounded on
// `hargabyte-cortex/internal/cmd/root.go`'s cobra root/global-flags
// structure; the command bodies themselves are new, since the
// out-of-scope collaborators spec §1 names (CLI arg parsing, report
// formatting) are this package's job, not the engine's. Diff text is
// not parsed here either: change sets are read from a JSON file.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scopeforge/impactscope/internal/config"
	"github.com/scopeforge/impactscope/internal/output"
)

// Version is the current ix release.
var Version = "0.1.0"

var (
	configPath   string
	outputFormat string
	cacheDirFlag string
)

var rootCmd = &cobra.Command{
	Use:     "ix",
	Short:   "Test-impact analysis for multi-project solutions",
	Version: Version,
	Long: `ix selects, for a given set of source changes, the automated tests
most likely to exercise the changed code, ranked by confidence. It also
answers the inverse query (which tests cover a given method) and
performs diff-driven impact analysis.

ix builds a solution-wide call graph by resolving method symbols across
project boundaries, then reverse-traverses it from production methods
to the tests that reach them. A per-solution cache directory holds
warmed call-graph entries and the analysis history; cached entries are
not invalidated when source files change.

Examples:
  ix analyze MySolution.sln
  ix tests MySolution.sln "Billing.Invoice.Total()"
  ix coverage MySolution.sln
  ix diff MySolution.sln changes.json
  ix select MySolution.sln changes.json --level Medium
  ix trace MySolution.sln "Billing.Invoice.Total()"
  ix cache status MySolution.sln`,
}

// Execute runs the root command; called once from cmd/ix/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to .ix/config.yaml (default: discovered by walking up from cwd)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "output format: text (default) | json")
	rootCmd.PersistentFlags().StringVar(&cacheDirFlag, "cache-dir", "", "override the per-solution cache root")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(testsCmd)
	rootCmd.AddCommand(coverageCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpCmd)
}

// loadConfig resolves the effective config: an explicit --config path,
// else discovery by walking up from the working directory, with
// --format/--cache-dir flags overriding whatever was loaded.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		wd, werr := os.Getwd()
		if werr != nil {
			return nil, werr
		}
		cfg, err = config.Load(wd)
	}
	if err != nil {
		return nil, err
	}
	if outputFormat != "" {
		f, ferr := output.ParseFormat(outputFormat)
		if ferr != nil {
			return nil, ferr
		}
		cfg.Output.Format = string(f)
	}
	if cacheDirFlag != "" {
		cfg.Cache.Dir = cacheDirFlag
	}
	return cfg, nil
}

func formatterFor(cfg *config.Config) output.Formatter {
	f, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		f = output.DefaultFormat
	}
	return output.For(f)
}

func render(cfg *config.Config, result interface{}) error {
	return formatterFor(cfg).FormatToWriter(os.Stdout, result)
}

// baseContext returns a context canceled on SIGINT/SIGTERM, so a long
// call-graph build honors spec §5's "every public operation accepts a
// cancellation handle" even from the CLI's single top-level call.
func baseContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
