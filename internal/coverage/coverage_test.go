package coverage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopeforge/impactscope/internal/callgraph"
	"github.com/scopeforge/impactscope/internal/symbol"
)

func mkID(typeName, method string) symbol.ID {
	return symbol.New(typeName, method, nil, 0)
}

func TestFindTestsForMethod_DirectCall(t *testing.T) {
	g := callgraph.New()
	test := mkID("CalcTests", "Add_TwoPositives_ReturnsSum")
	target := mkID("Calc", "Add")

	g.AddNode(symbol.Info{ID: test, SimpleName: "Add_TwoPositives_ReturnsSum", ContainingType: "CalcTests", IsTest: true})
	g.AddNode(symbol.Info{ID: target, SimpleName: "Add", ContainingType: "Calc"})
	g.AddEdge(test, target)

	result := FindTestsForMethod(context.Background(), g, target, DefaultLimits)
	require.Equal(t, "complete", result.Status)
	require.Len(t, result.Infos, 1)

	info := result.Infos[0]
	assert.Equal(t, 1, info.Depth)
	assert.True(t, info.IsDirect)
	assert.InDelta(t, 1.0, info.Confidence, 1e-9)
	assert.Contains(t, info.Reasons, ReasonDirectCall)
	assert.Contains(t, info.Reasons, ReasonMethodNameSim)
	assert.Contains(t, info.Reasons, ReasonTypeNameSim)
	assert.Equal(t, []symbol.ID{test, target}, info.CallPath)
}

func TestFindTestsForMethod_Transitive(t *testing.T) {
	g := callgraph.New()
	test := mkID("SvcTests", "CreateUser_Valid_Succeeds")
	create := mkID("UserService", "CreateUser")
	validate := mkID("UserService", "Validate")

	g.AddNode(symbol.Info{ID: test, SimpleName: "CreateUser_Valid_Succeeds", ContainingType: "SvcTests", IsTest: true})
	g.AddNode(symbol.Info{ID: create, SimpleName: "CreateUser", ContainingType: "UserService"})
	g.AddNode(symbol.Info{ID: validate, SimpleName: "Validate", ContainingType: "UserService"})
	g.AddEdge(test, create)
	g.AddEdge(create, validate)

	result := FindTestsForMethod(context.Background(), g, validate, DefaultLimits)
	require.Len(t, result.Infos, 1)

	info := result.Infos[0]
	assert.Equal(t, 2, info.Depth)
	assert.False(t, info.IsDirect)
	assert.Len(t, info.CallPath, 3)
	assert.Less(t, info.Confidence, 1.0)
}

func TestFindTestsForMethod_NoCoverage(t *testing.T) {
	g := callgraph.New()
	target := mkID("Helper", "Unused")
	g.AddNode(symbol.Info{ID: target, SimpleName: "Unused", ContainingType: "Helper"})

	result := FindTestsForMethod(context.Background(), g, target, DefaultLimits)
	assert.Equal(t, "complete", result.Status)
	assert.Empty(t, result.Infos)
}

func TestFindTestsForMethod_UnknownTarget(t *testing.T) {
	g := callgraph.New()
	result := FindTestsForMethod(context.Background(), g, mkID("X", "Y"), DefaultLimits)
	assert.Equal(t, "complete", result.Status)
	assert.NotEmpty(t, result.Warnings)
}

func TestConfidence_DirectCallEnsuresCeiling(t *testing.T) {
	testInfo := symbol.Info{SimpleName: "AddTest", ContainingType: "CalcTestsVeryLong", IsTest: true}
	targetInfo := symbol.Info{SimpleName: "Add", ContainingType: "Calc"}

	direct, _ := Confidence(testInfo, targetInfo, 1)
	indirect, _ := Confidence(testInfo, targetInfo, 4)
	assert.GreaterOrEqual(t, direct, indirect)
	assert.LessOrEqual(t, direct, 1.0)
	assert.GreaterOrEqual(t, indirect, 0.0)
}

func TestBuildMap_CoversReachableOnly(t *testing.T) {
	g := callgraph.New()
	test := mkID("T", "Test1")
	reached := mkID("P", "Reached")
	unreached := mkID("P", "Unreached")

	g.AddNode(symbol.Info{ID: test, SimpleName: "Test1", ContainingType: "T", IsTest: true})
	g.AddNode(symbol.Info{ID: reached, SimpleName: "Reached", ContainingType: "P"})
	g.AddNode(symbol.Info{ID: unreached, SimpleName: "Unreached", ContainingType: "P"})
	g.AddEdge(test, reached)

	m := BuildMap(context.Background(), g, DefaultLimits)
	assert.Contains(t, m.Entries, reached.Key())
	assert.NotContains(t, m.Entries, unreached.Key())
}
