package impact

import (
	"context"
	"sort"

	"github.com/scopeforge/impactscope/internal/callgraph"
	"github.com/scopeforge/impactscope/internal/coverage"
	"github.com/scopeforge/impactscope/internal/symbol"
)

// Constraints are spec §4.8 step 6's optional selection constraints:
// applied in order (a) category filter, (b) sort by confidence,
// (c) greedy inclusion until the first constraint would be violated.
type Constraints struct {
	MaxCount            int
	MaxTotalDurationSecs float64
	IncludeCategories    []coverage.Category // empty = include all
	ExcludeCategories    []coverage.Category
	EstimatedDuration    func(symbol.ID) float64 // seconds; nil = 0 for every test
}

// TestSelection is one entry of the test execution plan: a test method
// with the maximum confidence among its paths to any changed method
// (spec §4.8 step 4), plus the bucket that confidence falls in.
type TestSelection struct {
	Test       symbol.ID
	Confidence float64
	Bucket     Bucket
	Reasons    []string
	Paths      []coverage.Info // every path contributing to this test's selection, for explanation
}

// AnalyzeDiff computes the impacted test set for a ChangeSet: for
// every changed method, reverse-BFS to reachable tests (spec §4.8
// steps 2-3), then per test keep the maximum-confidence path across
// all changed methods it reaches (step 4).
func AnalyzeDiff(ctx context.Context, g *callgraph.Graph, changed []symbol.ID, limits coverage.Limits) []TestSelection {
	byTest := make(map[string]*TestSelection)

	for _, target := range changed {
		result := coverage.FindTestsForMethod(ctx, g, target, limits)
		for _, info := range result.Infos {
			key := info.Test.Key()
			sel, ok := byTest[key]
			if !ok {
				sel = &TestSelection{Test: info.Test}
				byTest[key] = sel
			}
			sel.Paths = append(sel.Paths, info)
			if info.Confidence > sel.Confidence {
				sel.Confidence = info.Confidence
				sel.Reasons = info.Reasons
			}
		}
	}

	out := make([]TestSelection, 0, len(byTest))
	for _, sel := range byTest {
		sel.Bucket = BucketFor(sel.Confidence)
		out = append(out, *sel)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Test.Key() < out[j].Test.Key()
	})
	return out
}

// SelectTests filters a ranked impacted-test list down to a confidence
// level and, if present, additional Constraints (spec §6's
// select-tests operation, spec §4.8 step 6). The result at a stricter
// level (Fast) is always a subset of a looser level (Medium, High,
// Full) for the same impacted-test input, since thresholds only
// relax and the greedy cap only removes entries, never reorders them
// in a way that would let a lower level admit a test a higher level
// excludes (spec §8 property 9).
func SelectTests(impacted []TestSelection, level ConfidenceLevel, c Constraints) []TestSelection {
	threshold := ThresholdFor(level)

	filtered := make([]TestSelection, 0, len(impacted))
	for _, sel := range impacted {
		if sel.Confidence < threshold {
			continue
		}
		if !categoryAllowed(sel, c) {
			continue
		}
		filtered = append(filtered, sel)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Confidence != filtered[j].Confidence {
			return filtered[i].Confidence > filtered[j].Confidence
		}
		return filtered[i].Test.Key() < filtered[j].Test.Key()
	})

	if c.MaxCount <= 0 && c.MaxTotalDurationSecs <= 0 {
		return filtered
	}

	var out []TestSelection
	var totalDuration float64
	for _, sel := range filtered {
		if c.MaxCount > 0 && len(out) >= c.MaxCount {
			break
		}
		dur := 0.0
		if c.EstimatedDuration != nil {
			dur = c.EstimatedDuration(sel.Test)
		}
		if c.MaxTotalDurationSecs > 0 && totalDuration+dur > c.MaxTotalDurationSecs {
			break
		}
		totalDuration += dur
		out = append(out, sel)
	}
	return out
}

func categoryAllowed(sel TestSelection, c Constraints) bool {
	cat := categoryOf(sel)
	if len(c.IncludeCategories) > 0 {
		found := false
		for _, inc := range c.IncludeCategories {
			if inc == cat {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, exc := range c.ExcludeCategories {
		if exc == cat {
			return false
		}
	}
	return true
}

// categoryOf returns the category recorded on any contributing path;
// every path for a given test shares the same test method and
// therefore the same category classification.
func categoryOf(sel TestSelection) coverage.Category {
	if len(sel.Paths) == 0 {
		return coverage.CategoryUnknown
	}
	return sel.Paths[0].Category
}
