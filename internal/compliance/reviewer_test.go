package compliance

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const compliantSOW = `# Statement of Work

## Scope
Fraud detection rollout with Data Privacy controls and a Liability cap.
Regulatory Reporting is delivered monthly. Termination requires 30 days notice.

## Deliverables
Uptime of 99.99% with a response time of 15 minutes.
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func testReviewer(opts ...ReviewerOption) *Reviewer {
	opts = append([]ReviewerOption{WithReviewLogger(quietLogger())}, opts...)
	return NewReviewer(testChecker().rules, opts...)
}

func TestReviewCompliantSOW(t *testing.T) {
	rv := testReviewer().Review(context.Background(), Request{
		SOWText:    compliantSOW,
		Product:    "Fraud Detection",
		ClientTier: "HIGH",
	})

	assert.Equal(t, 100, rv.Score)
	assert.Equal(t, StatusPass, rv.Status)
	assert.Empty(t, rv.Findings)
	assert.False(t, rv.Incomplete)
	assert.Equal(t, []string{CheckNameClauses, CheckNameTerms, CheckNameSLA, CheckNameSections}, rv.Checks)

	_, err := uuid.Parse(rv.ID)
	assert.NoError(t, err)
}

func TestReviewCollectsFindings(t *testing.T) {
	text := "# Proposal\nWe guarantee unlimited capacity.\nData Privacy applies."
	rv := testReviewer().Review(context.Background(), Request{
		SOWText:    text,
		Product:    "Payments",
		ClientTier: "MEDIUM",
	})

	byCategory := map[string]int{}
	for _, f := range rv.Findings {
		byCategory[f.Category]++
	}

	// Liability, Business Continuity and Termination are missing
	assert.Equal(t, 3, byCategory[CategoryMandatoryClause])
	assert.Equal(t, 2, byCategory[CategoryProhibitedTerm])
	assert.Equal(t, 2, byCategory[CategorySLA])
	assert.Equal(t, 2, byCategory[CategoryStructure])

	assert.Equal(t, Summary{High: 6, Medium: 1, Low: 2}, rv.Summary)
	assert.Equal(t, 0, rv.Score)
	assert.Equal(t, StatusFail, rv.Status)

	require.NotNil(t, rv.Terms)
	assert.Equal(t, "Line 2", rv.Terms.Findings[0].Location)
	assert.Contains(t, rv.Findings, Finding{
		Category:    CategoryMandatoryClause,
		Severity:    SeverityHigh,
		Description: "Missing required clause: Liability",
		Suggestion:  "Add clause: Liability",
	})
	assert.Contains(t, rv.Findings, Finding{
		Category:    CategoryStructure,
		Severity:    SeverityLow,
		Description: "Missing section: Scope",
		Suggestion:  "Add a '## Scope' section",
	})
}

func TestReviewWithoutTierSkipsTierChecks(t *testing.T) {
	rv := testReviewer().Review(context.Background(), Request{SOWText: compliantSOW, Product: "Fraud Detection"})

	assert.Equal(t, []string{CheckNameTerms, CheckNameSections}, rv.Checks)
	assert.Nil(t, rv.Clauses)
	assert.Nil(t, rv.SLA)
	assert.False(t, rv.Incomplete, "checks that do not apply are not skipped")
}

func TestReviewUnknownTierIsIncomplete(t *testing.T) {
	rv := testReviewer().Review(context.Background(), Request{
		SOWText:    compliantSOW,
		Product:    "Fraud Detection",
		ClientTier: "PLATINUM",
	})

	assert.True(t, rv.Incomplete)
	assert.Equal(t, []SkippedCheck{{
		Check:  CheckNameSLA,
		Reason: "No SLA requirements found for tier 'PLATINUM'",
	}}, rv.Skipped)
	assert.Equal(t, StatusPass, rv.Status)
}

func TestReviewMissingRulesFile(t *testing.T) {
	var logs bytes.Buffer
	r := NewReviewer(
		FileSource{Path: t.TempDir() + "/compliance_rules.json"},
		WithReviewLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)

	rv := r.Review(context.Background(), Request{
		SOWText:    "We guarantee everything.",
		Product:    "Payments",
		ClientTier: "HIGH",
	})

	assert.True(t, rv.Incomplete)
	assert.Empty(t, rv.Checks)
	assert.Empty(t, rv.Findings)
	assert.Len(t, rv.Skipped, 4)
	for _, s := range rv.Skipped {
		assert.Equal(t, "Compliance rules file not found", s.Reason)
	}
	assert.Equal(t, 100, rv.Score)
	assert.Contains(t, logs.String(), "compliance check skipped")
}

func TestReviewUsesClock(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rv := testReviewer(WithClock(func() time.Time { return at })).Review(context.Background(), Request{SOWText: "x"})

	assert.Equal(t, at, rv.CreatedAt)
}
