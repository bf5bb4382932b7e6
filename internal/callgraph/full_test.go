package callgraph_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/scopeforge/impactscope/internal/callgraph"
	"github.com/scopeforge/impactscope/internal/symbol"
	"github.com/scopeforge/impactscope/internal/workspace"
)

// writeTestSolution builds a minimal two-project solution on disk:
// Billing (production code) referenced by Billing.Tests (a test
// project), mirroring spec §8 scenario 1's Calc/CalcTests example.
func writeTestSolution(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	billingDir := filepath.Join(root, "Billing")
	testsDir := filepath.Join(root, "Billing.Tests")
	mustMkdir(t, billingDir)
	mustMkdir(t, testsDir)

	mustWrite(t, filepath.Join(billingDir, "Billing.csproj"), `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
  </PropertyGroup>
</Project>
`)
	mustWrite(t, filepath.Join(billingDir, "Invoice.cs"), `namespace Billing
{
    public class Invoice
    {
        public int Add(int a, int b)
        {
            return Validate(a + b);
        }

        private int Validate(int total)
        {
            return total;
        }
    }
}
`)

	mustWrite(t, filepath.Join(testsDir, "Billing.Tests.csproj"), `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
  </PropertyGroup>
  <ItemGroup>
    <ProjectReference Include="..\Billing\Billing.csproj" />
  </ItemGroup>
</Project>
`)
	mustWrite(t, filepath.Join(testsDir, "InvoiceTests.cs"), `using Billing;

namespace Billing.Tests
{
    public class InvoiceTests
    {
        [Fact]
        public void Add_TwoPositives_ReturnsSum()
        {
            var invoice = new Invoice();
            invoice.Add(2, 3);
        }
    }
}
`)

	slnPath := filepath.Join(root, "Billing.sln")
	mustWrite(t, slnPath, `Microsoft Visual Studio Solution File, Format Version 12.00
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Billing", "Billing\Billing.csproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Billing.Tests", "Billing.Tests\Billing.Tests.csproj", "{22222222-2222-2222-2222-222222222222}"
EndProject
`)
	return slnPath
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestBuildFull_DirectCallAndTransitiveCall(t *testing.T) {
	sln := writeTestSolution(t)

	manager := workspace.NewManager()
	if err := manager.Initialize(sln); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	result, err := callgraph.BuildFull(context.Background(), manager, callgraph.BuildOptions{})
	if err != nil {
		t.Fatalf("BuildFull: %v", err)
	}
	if result.Status != "complete" {
		t.Fatalf("expected complete status, got %s (warnings: %v)", result.Status, result.Warnings)
	}

	g := result.Graph
	if !g.VerifyTranspose() {
		t.Fatal("reverse graph is not the transpose of forward")
	}

	var testKey, addKey, validateKey string
	for key, info := range g.Info {
		switch {
		case info.SimpleName == "Add_TwoPositives_ReturnsSum":
			testKey = key
		case info.SimpleName == "Add" && info.ContainingType == "Billing.Invoice":
			addKey = key
		case info.SimpleName == "Validate":
			validateKey = key
		}
	}
	if testKey == "" || addKey == "" || validateKey == "" {
		t.Fatalf("expected to find test, Add, and Validate declarations; got %d nodes", len(g.Info))
	}

	if !contains(g.Forward[testKey], addKey) {
		t.Errorf("expected direct edge from test to Add, forward[%s]=%v", testKey, g.Forward[testKey])
	}
	if !contains(g.Forward[addKey], validateKey) {
		t.Errorf("expected edge from Add to Validate, forward[%s]=%v", addKey, g.Forward[addKey])
	}
	if !g.Info[testKey].IsTest {
		t.Error("expected the [Fact] method to be classified as a test")
	}
}

func TestBuildIncremental_MatchesFullOnReachableSlice(t *testing.T) {
	sln := writeTestSolution(t)

	manager := workspace.NewManager()
	if err := manager.Initialize(sln); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	full, err := callgraph.BuildFull(context.Background(), manager, callgraph.BuildOptions{})
	if err != nil {
		t.Fatalf("BuildFull: %v", err)
	}

	var testID string
	for key, info := range full.Graph.Info {
		if info.SimpleName == "Add_TwoPositives_ReturnsSum" {
			testID = key
			break
		}
	}
	if testID == "" {
		t.Fatal("test method not found in full graph")
	}
	seedInfo := full.Graph.Info[testID]

	inc, err := callgraph.BuildIncremental(context.Background(), manager, callgraph.IncrementalOptions{
		Seeds:     []symbol.ID{seedInfo.ID},
		MaxDepth:  callgraph.DefaultMaxDepth,
		Direction: callgraph.Forward,
	})
	if err != nil {
		t.Fatalf("BuildIncremental: %v", err)
	}

	// Every node the incremental build reaches must also be reachable
	// (and connected the same way) in the full graph (spec §8 property 8).
	for _, key := range inc.Graph.Nodes() {
		if _, ok := full.Graph.Info[key]; !ok {
			t.Errorf("incremental node %s absent from full graph", key)
		}
	}
	for caller, callees := range inc.Graph.Forward {
		for _, callee := range callees {
			if !contains(full.Graph.Forward[caller], callee) {
				t.Errorf("incremental edge %s -> %s missing from full graph", caller, callee)
			}
		}
	}
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
