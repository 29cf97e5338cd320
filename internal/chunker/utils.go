package chunker

import (
	"strings"
	"unicode/utf8"
)

// SplitByParagraphs splits text on blank lines, trimming each paragraph and
// dropping empty ones.
func SplitByParagraphs(text string) []string {
	paragraphs := strings.Split(text, "\n\n")
	var result []string
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Len reports the size of text the way chunk bounds are measured.
func Len(text string) int {
	return utf8.RuneCountInString(text)
}

// sectionName turns a heading line into its label: "## Scope " -> "Scope".
func sectionName(heading string) string {
	return strings.TrimSpace(strings.Trim(heading, "# "))
}
