package compliance

import (
	"fmt"
	"strings"
)

// Report renders findings as a markdown compliance report grouped by
// severity.
func Report(findings []Finding) string {
	var buf strings.Builder
	buf.WriteString("# SOW Compliance Report\n\n")

	if len(findings) == 0 {
		buf.WriteString("✅ **Status: PASS**\n\nNo compliance issues found.\n")
		return buf.String()
	}

	fmt.Fprintf(&buf, "⚠️  **Status: ISSUES FOUND (%d total)**\n\n", len(findings))

	groups := []struct {
		severity Severity
		title    string
	}{
		{SeverityHigh, "🔴 High Severity"},
		{SeverityMedium, "🟡 Medium Severity"},
		{SeverityLow, "🟢 Low Severity"},
	}

	for _, g := range groups {
		var group []Finding
		for _, f := range findings {
			if f.Severity == g.severity {
				group = append(group, f)
			}
		}
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(&buf, "## %s (%d)\n\n", g.title, len(group))
		for _, f := range group {
			fmt.Fprintf(&buf, "- **Issue**: %s\n", f.Description)
			if f.Location != "" {
				fmt.Fprintf(&buf, "  - **Location**: %s\n", f.Location)
			}
			if f.Context != "" {
				fmt.Fprintf(&buf, "  - **Context**: `%s`\n", strings.ReplaceAll(f.Context, "\n", " "))
			}
			if f.Suggestion != "" {
				fmt.Fprintf(&buf, "  - **Suggestion**: %s\n", f.Suggestion)
			}
			buf.WriteString("\n")
		}
	}

	return buf.String()
}
