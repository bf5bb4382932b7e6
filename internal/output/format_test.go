package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopeforge/impactscope/internal/coverage"
	"github.com/scopeforge/impactscope/internal/symbol"
)

func sampleInfo() coverage.Info {
	target := symbol.New("Billing.Invoice", "Total", nil, 0)
	test := symbol.New("Billing.Tests.InvoiceTests", "Total_ReturnsSum", nil, 0)
	return coverage.Info{
		Test:       test,
		Target:     target,
		CallPath:   []symbol.ID{test, target},
		Depth:      1,
		IsDirect:   true,
		Confidence: 1.0,
		Category:   coverage.CategoryUnit,
		Framework:  coverage.FrameworkXUnit,
		Reasons:    []string{coverage.ReasonDirectCall},
	}
}

func TestFromCoverageInfo(t *testing.T) {
	dto := FromCoverageInfo(sampleInfo())
	assert.Equal(t, "Billing.Invoice.Total()", dto.CoveredMethodID)
	assert.True(t, dto.IsDirectCall)
	assert.Equal(t, 1.0, dto.Confidence)
	assert.Equal(t, []string{"Billing.Tests.InvoiceTests.Total_ReturnsSum()", "Billing.Invoice.Total()"}, dto.CallPath)
}

func TestTextFormatter_RoundTripsYAML(t *testing.T) {
	result := FromCoverageResult(coverage.Result{Infos: []coverage.Info{sampleInfo()}, Status: "complete"})
	out, err := NewTextFormatter().Format(result)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "status: complete"))
	assert.True(t, strings.Contains(out, "covered_method_id"))
}

func TestJSONFormatter_ProducesValidJSON(t *testing.T) {
	result := FromCoverageResult(coverage.Result{Infos: []coverage.Info{sampleInfo()}, Status: "complete"})
	out, err := NewJSONFormatter().Format(result)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "\"status\": \"complete\""))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestFor_SelectsFormatter(t *testing.T) {
	_, ok := For(FormatJSON).(*JSONFormatter)
	assert.True(t, ok)
	_, ok = For(FormatText).(*TextFormatter)
	assert.True(t, ok)
}
