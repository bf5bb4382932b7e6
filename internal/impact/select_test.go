package impact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopeforge/impactscope/internal/callgraph"
	"github.com/scopeforge/impactscope/internal/coverage"
	"github.com/scopeforge/impactscope/internal/symbol"
)

func buildFanOutGraph(t *testing.T, n int) (*callgraph.Graph, symbol.ID) {
	t.Helper()
	g := callgraph.New()
	target := symbol.New("Svc", "DoWork", nil, 0)
	g.AddNode(symbol.Info{ID: target, SimpleName: "DoWork", ContainingType: "Svc"})
	for i := 0; i < n; i++ {
		test := symbol.New("SvcTests", testName(i), nil, 0)
		g.AddNode(symbol.Info{ID: test, SimpleName: testName(i), ContainingType: "SvcTests", IsTest: true})
		g.AddEdge(test, target)
	}
	return g, target
}

func testName(i int) string {
	names := []string{"DoWorkTest", "OtherTest1", "OtherTest2", "OtherTest3", "OtherTest4"}
	return names[i%len(names)]
}

func TestSelectTests_Monotonicity(t *testing.T) {
	g, target := buildFanOutGraph(t, 5)
	impacted := AnalyzeDiff(context.Background(), g, []symbol.ID{target}, coverage.DefaultLimits)
	require.NotEmpty(t, impacted)

	fast := SelectTests(impacted, Fast, Constraints{})
	medium := SelectTests(impacted, Medium, Constraints{})
	high := SelectTests(impacted, High, Constraints{})
	full := SelectTests(impacted, Full, Constraints{})

	assertSubset(t, fast, medium)
	assertSubset(t, medium, high)
	assertSubset(t, high, full)
}

func assertSubset(t *testing.T, smaller, larger []TestSelection) {
	t.Helper()
	larger_set := make(map[string]bool, len(larger))
	for _, s := range larger {
		larger_set[s.Test.Key()] = true
	}
	for _, s := range smaller {
		assert.True(t, larger_set[s.Test.Key()], "expected %s in larger set", s.Test.Key())
	}
	assert.LessOrEqual(t, len(smaller), len(larger))
}

func TestSelectTests_MaxCount(t *testing.T) {
	g, target := buildFanOutGraph(t, 5)
	impacted := AnalyzeDiff(context.Background(), g, []symbol.ID{target}, coverage.DefaultLimits)

	capped := SelectTests(impacted, Full, Constraints{MaxCount: 2})
	assert.Len(t, capped, 2)
}

func TestBucketFor(t *testing.T) {
	assert.Equal(t, BucketHigh, BucketFor(0.9))
	assert.Equal(t, BucketMedium, BucketFor(0.5))
	assert.Equal(t, BucketLow, BucketFor(0.1))
}
