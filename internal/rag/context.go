package rag

import (
	"fmt"
	"strings"
)

// GroupBySection buckets results by section label, keeping their order
// inside each bucket. Results without a section go under "Unknown".
func GroupBySection(results []SearchResult) map[string][]SearchResult {
	grouped := make(map[string][]SearchResult)
	for _, r := range results {
		section := r.Section()
		if section == "" {
			section = "Unknown"
		}
		grouped[section] = append(grouped[section], r)
	}
	return grouped
}

// FormatContext renders retrieved chunks as a numbered reference block for a
// downstream generation step. Output stops before maxChars is exceeded;
// maxChars <= 0 means no limit.
func FormatContext(results []SearchResult, maxChars int) string {
	var buf strings.Builder

	for i, r := range results {
		var entry strings.Builder
		fmt.Fprintf(&entry, "%d. [Section: %s] [Source: %s] (distance: %.3f)\n", i+1, r.Section(), r.Source(), r.Score)
		entry.WriteString("<<<\n")
		entry.WriteString(r.Content)
		entry.WriteString("\n>>>\n\n")

		if maxChars > 0 && buf.Len()+entry.Len() > maxChars {
			break
		}
		buf.WriteString(entry.String())
	}

	return buf.String()
}
