package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scopeforge/impactscope/internal/config"
)

const slnFixture = `Microsoft Visual Studio Solution File, Format Version 12.00
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Billing", "Billing.csproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
`

const csprojFixture = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
  </PropertyGroup>
</Project>
`

const sourceFixture = `namespace Billing {
  public class Invoice {
    public int Total() { return Compute(); }
    private int Compute() { return 42; }
  }
}
`

const testSourceFixture = `namespace Billing.Tests {
  public class InvoiceTests {
    [Fact]
    public void Total_ReturnsSum() {
      new Billing.Invoice().Total();
    }
  }
}
`

func writeFixtureSolution(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Billing.sln"), []byte(slnFixture), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Billing.csproj"), []byte(csprojFixture), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Invoice.cs"), []byte(sourceFixture), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "InvoiceTests.cs"), []byte(testSourceFixture), 0644))
	return filepath.Join(dir, "Billing.sln")
}

func TestEngine_AnalyzeSolution(t *testing.T) {
	slnPath := writeFixtureSolution(t)
	cfg := config.DefaultConfig()
	cfg.Cache.Dir = filepath.Join(filepath.Dir(slnPath), ".ix-cache")

	e, err := Open(context.Background(), slnPath, cfg)
	require.NoError(t, err)
	defer e.Close()

	summary, err := e.AnalyzeSolution(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Projects, 1)
	require.GreaterOrEqual(t, summary.MethodCount, 1)
}

func TestEngine_CacheLifecycle(t *testing.T) {
	slnPath := writeFixtureSolution(t)
	cfg := config.DefaultConfig()
	cfg.Cache.Dir = filepath.Join(filepath.Dir(slnPath), ".ix-cache")

	e, err := Open(context.Background(), slnPath, cfg)
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.CacheInit())
	stats := e.CacheStats()
	require.Contains(t, stats, "call-graph")

	require.NoError(t, e.CacheClear())
}
