package compliance

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// span is a byte range [start, end) in the searched text.
type span struct {
	start, end int
}

// containsFold reports whether substr occurs in s under Unicode simple case
// folding. The empty string is always contained.
func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	for i := 0; i < len(s); {
		if _, ok := hasPrefixFold(s[i:], substr); ok {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return false
}

// indexAllFold returns every non-overlapping case-insensitive occurrence of
// substr in s, scanning left to right.
func indexAllFold(s, substr string) []span {
	if substr == "" {
		return nil
	}

	var out []span
	for i := 0; i < len(s); {
		if n, ok := hasPrefixFold(s[i:], substr); ok {
			out = append(out, span{start: i, end: i + n})
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return out
}

// hasPrefixFold reports whether s starts with prefix ignoring case and
// returns how many bytes of s the match consumed.
func hasPrefixFold(s, prefix string) (int, bool) {
	i := 0
	for _, pr := range prefix {
		if i >= len(s) {
			return 0, false
		}
		sr, size := utf8.DecodeRuneInString(s[i:])
		if !equalFoldRune(sr, pr) {
			return 0, false
		}
		i += size
	}
	return i, true
}

func equalFoldRune(a, b rune) bool {
	if a == b {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}

// lineAt is the 1-based line number of byte offset pos.
func lineAt(s string, pos int) int {
	return strings.Count(s[:pos], "\n") + 1
}

// contextWindow returns up to n characters either side of [start, end),
// wrapped in ellipses.
func contextWindow(s string, start, end, n int) string {
	from := start
	for i := 0; i < n && from > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(s[:from])
		from -= size
	}
	to := end
	for i := 0; i < n && to < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[to:])
		to += size
	}
	return "..." + s[from:to] + "..."
}
