package compliance

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type SectionResult struct {
	Status          Status   `json:"status,omitempty"`
	FoundSections   []string `json:"found_sections"`
	MissingSections []string `json:"missing_sections"`
	Completeness    float64  `json:"completeness"`
	Error           string   `json:"error,omitempty"`
}

// Headings returns the text of every markdown heading in document order.
func Headings(content string) []string {
	source := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var headings []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			headings = append(headings, strings.TrimSpace(extractText(heading, source)))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return headings
}

// extractText concatenates the text segments below node, including those
// nested in emphasis or links.
func extractText(node ast.Node, source []byte) string {
	var buf strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			buf.Write(c.Segment.Value(source))
		case *ast.String:
			buf.Write(c.Value)
		default:
			buf.WriteString(extractText(child, source))
		}
	}
	return buf.String()
}

// CheckSections reports which expected sections have a heading mentioning
// them (case-insensitive). A missing section only warns.
func CheckSections(content string, expected []string) SectionResult {
	res := SectionResult{
		FoundSections:   []string{},
		MissingSections: []string{},
		Completeness:    1,
		Status:          StatusPass,
	}
	if len(expected) == 0 {
		return res
	}

	headings := Headings(content)
	for _, section := range expected {
		found := false
		for _, h := range headings {
			if containsFold(h, section) {
				found = true
				break
			}
		}
		if found {
			res.FoundSections = append(res.FoundSections, section)
		} else {
			res.MissingSections = append(res.MissingSections, section)
		}
	}

	res.Completeness = float64(len(res.FoundSections)) / float64(len(expected))
	if len(res.MissingSections) > 0 {
		res.Status = StatusWarning
	}
	return res
}

// CheckStructure runs CheckSections with the rule set's required sections.
func (c *Checker) CheckStructure(content string) SectionResult {
	rules, err := c.rules.Load()
	if err != nil {
		return SectionResult{Error: errorMessage(err)}
	}
	return CheckSections(content, rules.RequiredSections)
}
