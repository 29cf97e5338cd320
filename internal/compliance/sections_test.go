package compliance

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const structuredSOW = `# Statement of Work

## Project Scope
Build the fraud detection pipeline.

## **Key** Deliverables
- Scoring service

Timeline
--------
Q3 delivery.
`

func TestHeadings(t *testing.T) {
	assert.Equal(t,
		[]string{"Statement of Work", "Project Scope", "Key Deliverables", "Timeline"},
		Headings(structuredSOW),
	)
	assert.Empty(t, Headings("no headings here\n\njust text"))
}

func TestCheckSections(t *testing.T) {
	res := CheckSections(structuredSOW, []string{"scope", "Deliverables", "Pricing", "Support"})

	assert.Equal(t, StatusWarning, res.Status)
	assert.Equal(t, []string{"scope", "Deliverables"}, res.FoundSections)
	assert.Equal(t, []string{"Pricing", "Support"}, res.MissingSections)
	assert.InDelta(t, 0.5, res.Completeness, 1e-9)
}

func TestCheckSectionsIgnoresBodyText(t *testing.T) {
	res := CheckSections("# Overview\nPricing is fixed.", []string{"Pricing"})
	assert.Equal(t, []string{"Pricing"}, res.MissingSections)
	assert.Zero(t, res.Completeness)
}

func TestCheckSectionsNothingExpected(t *testing.T) {
	res := CheckSections("anything", nil)
	assert.Equal(t, StatusPass, res.Status)
	assert.Equal(t, 1.0, res.Completeness)
	assert.Empty(t, res.FoundSections)
}

func TestCheckStructure(t *testing.T) {
	res := testChecker().CheckStructure(structuredSOW)
	assert.Equal(t, StatusPass, res.Status)
	assert.Equal(t, []string{"Scope", "Deliverables"}, res.FoundSections)

	missing := NewChecker(FileSource{Path: filepath.Join(t.TempDir(), "rules.yaml")}).CheckStructure(structuredSOW)
	assert.Equal(t, "Compliance rules file not found", missing.Error)
}
