package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Check names used in Review.Checks and Review.Skipped.
const (
	CheckNameClauses  = "mandatory_clauses"
	CheckNameTerms    = "prohibited_terms"
	CheckNameSLA      = "sla_requirements"
	CheckNameSections = "required_sections"
)

// Request describes the document under review. Clause checks need
// ClientTier; SLA checks need both Product and ClientTier.
type Request struct {
	SOWText    string `json:"sow_text"`
	Product    string `json:"product,omitempty"`
	ClientTier string `json:"client_tier,omitempty"`
}

// SkippedCheck is a check that could not run, usually because its rules
// could not be loaded.
type SkippedCheck struct {
	Check  string `json:"check"`
	Reason string `json:"reason"`
}

// Review is the outcome of one compliance run. Skipped checks contribute no
// findings, so a review with Incomplete set scores only the checks that ran.
type Review struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Verdict
	Findings   []Finding      `json:"issues"`
	Checks     []string       `json:"checks"`
	Skipped    []SkippedCheck `json:"skipped,omitempty"`
	Incomplete bool           `json:"incomplete"`

	Clauses  *ClauseResult  `json:"mandatory_clauses,omitempty"`
	Terms    *TermResult    `json:"prohibited_terms,omitempty"`
	SLA      *SLAResult     `json:"sla,omitempty"`
	Sections *SectionResult `json:"sections,omitempty"`
}

// Reviewer runs every applicable check and aggregates the findings.
type Reviewer struct {
	checker *Checker
	log     *slog.Logger
	now     func() time.Time
}

// ReviewerOption configures a Reviewer.
type ReviewerOption func(*Reviewer)

func WithReviewLogger(log *slog.Logger) ReviewerOption {
	return func(r *Reviewer) { r.log = log }
}

// WithClock overrides the time stamped on reviews.
func WithClock(now func() time.Time) ReviewerOption {
	return func(r *Reviewer) { r.now = now }
}

// NewReviewer logs to slog.Default unless WithReviewLogger is given.
func NewReviewer(rules RuleSource, opts ...ReviewerOption) *Reviewer {
	r := &Reviewer{
		checker: NewChecker(rules),
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reviewer) Checker() *Checker { return r.checker }

func (r *Reviewer) Review(ctx context.Context, req Request) Review {
	rv := Review{
		ID:        uuid.NewString(),
		CreatedAt: r.now(),
		Findings:  []Finding{},
	}

	skip := func(check, reason string) {
		rv.Skipped = append(rv.Skipped, SkippedCheck{Check: check, Reason: reason})
		r.log.WarnContext(ctx, "compliance check skipped", "review", rv.ID, "check", check, "reason", reason)
	}

	if req.ClientTier != "" {
		reqs := r.checker.Requirements(req.ClientTier)
		if reqs.Error != "" {
			skip(CheckNameClauses, reqs.Error)
		} else {
			res := CheckMandatoryClauses(req.SOWText, reqs.MandatoryClauses)
			rv.Clauses = &res
			rv.Checks = append(rv.Checks, CheckNameClauses)
			for _, missing := range res.MissingClauses {
				rv.Findings = append(rv.Findings, Finding{
					Category:    CategoryMandatoryClause,
					Severity:    SeverityHigh,
					Description: fmt.Sprintf("Missing required clause: %s", missing),
					Suggestion:  fmt.Sprintf("Add clause: %s", missing),
				})
			}
		}
	}

	terms := r.checker.CheckProhibitedTerms(req.SOWText)
	if terms.Error != "" {
		skip(CheckNameTerms, terms.Error)
	} else {
		rv.Terms = &terms
		rv.Checks = append(rv.Checks, CheckNameTerms)
		for _, f := range terms.Findings {
			rv.Findings = append(rv.Findings, Finding{
				Category:    CategoryProhibitedTerm,
				Severity:    SeverityHigh,
				Description: fmt.Sprintf("Found prohibited term: '%s'", f.Term),
				Location:    f.Location,
				Context:     f.Context,
				Suggestion:  fmt.Sprintf("Remove or replace: %s", f.Term),
			})
		}
	}

	if req.Product != "" && req.ClientTier != "" {
		sla := r.checker.CheckSLA(req.SOWText, req.Product, req.ClientTier)
		if sla.Error != "" {
			skip(CheckNameSLA, sla.Error)
		} else {
			rv.SLA = &sla
			rv.Checks = append(rv.Checks, CheckNameSLA)
			for _, f := range sla.Findings {
				rv.Findings = append(rv.Findings, Finding{
					Category:    CategorySLA,
					Severity:    f.Severity,
					Description: f.Issue,
					Location:    f.Location,
					Suggestion:  f.Suggestion,
				})
			}
		}
	}

	sections := r.checker.CheckStructure(req.SOWText)
	switch {
	case sections.Error != "":
		skip(CheckNameSections, sections.Error)
	case len(sections.FoundSections)+len(sections.MissingSections) > 0:
		rv.Sections = &sections
		rv.Checks = append(rv.Checks, CheckNameSections)
		for _, missing := range sections.MissingSections {
			rv.Findings = append(rv.Findings, Finding{
				Category:    CategoryStructure,
				Severity:    SeverityLow,
				Description: fmt.Sprintf("Missing section: %s", missing),
				Suggestion:  fmt.Sprintf("Add a '## %s' section", missing),
			})
		}
	}

	rv.Verdict = Aggregate(rv.Findings)
	rv.Incomplete = len(rv.Skipped) > 0

	r.log.InfoContext(ctx, "compliance review finished",
		"review", rv.ID,
		"score", rv.Score,
		"status", rv.Status,
		"findings", len(rv.Findings),
		"skipped", len(rv.Skipped),
	)
	return rv
}
