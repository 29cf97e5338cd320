package compliance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportPass(t *testing.T) {
	out := Report(nil)
	assert.Equal(t, "# SOW Compliance Report\n\n✅ **Status: PASS**\n\nNo compliance issues found.\n", out)
}

func TestReportGroupsBySeverity(t *testing.T) {
	out := Report([]Finding{
		{Category: CategoryStructure, Severity: SeverityLow, Description: "Missing section: Pricing", Suggestion: "Add a '## Pricing' section"},
		{
			Category:    CategoryProhibitedTerm,
			Severity:    SeverityHigh,
			Description: "Found prohibited term: 'guarantee'",
			Location:    "Line 2",
			Context:     "...We\nguarantee it...",
			Suggestion:  "Remove or replace: guarantee",
		},
		{Category: CategorySLA, Severity: SeverityMedium, Description: "Missing response time SLA", Location: "SLA Section"},
	})

	assert.Contains(t, out, "⚠️  **Status: ISSUES FOUND (3 total)**")
	assert.Contains(t, out, "## 🔴 High Severity (1)")
	assert.Contains(t, out, "## 🟡 Medium Severity (1)")
	assert.Contains(t, out, "## 🟢 Low Severity (1)")
	assert.Contains(t, out, "  - **Context**: `...We guarantee it...`\n")
	assert.Contains(t, out, "  - **Location**: Line 2\n")

	high := strings.Index(out, "High Severity")
	medium := strings.Index(out, "Medium Severity")
	low := strings.Index(out, "Low Severity")
	assert.Less(t, high, medium)
	assert.Less(t, medium, low)
}

func TestReportOmitsEmptyGroups(t *testing.T) {
	out := Report([]Finding{{Severity: SeverityHigh, Description: "Missing required clause: Liability"}})
	assert.NotContains(t, out, "Medium Severity")
	assert.NotContains(t, out, "Low Severity")
	assert.NotContains(t, out, "**Location**")
}
