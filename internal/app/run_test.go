package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runShell(t *testing.T, a *App, input string) {
	t.Helper()
	a.in = strings.NewReader(input)
	require.NoError(t, a.Run(context.Background()))
}

func TestRunReviewsFilesAndSearchesText(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, corpus)
	writeFiles(t, dir, map[string]string{
		"compliance_rules/compliance_rules.json": testRules,
		"drafts/acme.md":                         draftSOW,
	})

	reports := t.TempDir()
	a, out := newTestApp(t, testConfig(dir), WithReportDir(reports))
	_, err := a.IndexCorpus(context.Background())
	require.NoError(t, err)

	input := strings.Join([]string{
		":tier high",
		":product Payments",
		filepath.Join(dir, "drafts", "acme.md"),
		"",
		":product",
		":client acme",
		"service levels uptime",
		":requirements",
		":status",
		":bogus",
		":quit",
		"never read",
	}, "\n")
	runShell(t, a, input)

	got := out.String()
	assert.Contains(t, got, `client tier: "HIGH"`)
	assert.Contains(t, got, "📊 Compliance score: 80/100 (WARNING), 1 findings")
	assert.Contains(t, got, "💾 Report saved to: "+reports)
	assert.Contains(t, got, "🔍 Found 2 relevant chunks in 2 sections:")
	assert.Contains(t, got, "   - Service Levels (1)")
	assert.Contains(t, got, "[Source: SOW-2023-001-acme-payments.md]")
	assert.Contains(t, got, "SLA: uptime 99.99%, max response time 15 minutes")
	assert.Contains(t, got, "collection test_sows:")
	assert.Contains(t, got, "unknown command :bogus")
	assert.NotContains(t, got, "never read")

	matches, err := filepath.Glob(filepath.Join(reports, "acme_compliance_*.md"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Empty(t, a.outputPath)
}

func TestRunStopsAtEOF(t *testing.T) {
	a, out := newTestApp(t, testConfig(t.TempDir()))
	runShell(t, a, "no results expected\n")

	assert.Contains(t, out.String(), "🔍 Found 0 relevant chunks in 0 sections:")
}

func TestRunStopsWhenContextDone(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t.TempDir()))
	a.in = strings.NewReader("query\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, a.Run(ctx))
}

func TestRunUnsupportedFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"contract.docx": "x"})
	a, out := newTestApp(t, testConfig(dir))

	runShell(t, a, filepath.Join(dir, "contract.docx")+"\n")
	assert.Contains(t, out.String(), "❌ Unsupported format: .docx")
}
