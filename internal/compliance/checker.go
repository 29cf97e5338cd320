package compliance

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// contextChars is how much surrounding text a prohibited-term finding quotes
// on each side of the match.
const contextChars = 50

// responseTimeMention is a topical check only: any "response ... time" phrase
// satisfies it, whatever duration is promised.
var responseTimeMention = regexp.MustCompile(`(?i)response.{0,20}time`)

// Checker runs the rule-driven checks. Rules are loaded from the source on
// every call.
type Checker struct {
	rules RuleSource
}

// NewChecker loads rules from the source on every check.
func NewChecker(rules RuleSource) *Checker {
	return &Checker{rules: rules}
}

// errorMessage is the Error value reported when rules cannot be loaded.
func errorMessage(err error) string {
	if errors.Is(err, ErrRulesNotFound) {
		return "Compliance rules file not found"
	}
	return err.Error()
}

// ClauseResult reports which mandatory clauses appear in the text.
type ClauseResult struct {
	Status         Status   `json:"status"`
	FoundClauses   []string `json:"found_clauses"`
	MissingClauses []string `json:"missing_clauses"`
	TotalRequired  int      `json:"total_required"`
	TotalFound     int      `json:"total_found"`
}

// CheckMandatoryClauses searches text for each clause as a case-insensitive
// literal. The status is FAIL when any clause is missing. Blank clauses are
// ignored.
func CheckMandatoryClauses(text string, clauses []Clause) ClauseResult {
	res := ClauseResult{
		FoundClauses:   []string{},
		MissingClauses: []string{},
	}

	for _, c := range clauses {
		if c.blank() {
			continue
		}
		res.TotalRequired++
		phrase := c.String()
		if containsFold(text, phrase) {
			res.FoundClauses = append(res.FoundClauses, phrase)
		} else {
			res.MissingClauses = append(res.MissingClauses, phrase)
		}
	}

	res.TotalFound = len(res.FoundClauses)
	res.Status = StatusPass
	if len(res.MissingClauses) > 0 {
		res.Status = StatusFail
	}
	return res
}

// TermFinding is one occurrence of a prohibited term.
type TermFinding struct {
	Term     string `json:"term"`
	Location string `json:"location"`
	Line     int    `json:"line"`
	Context  string `json:"context"`
}

type TermResult struct {
	Status               Status        `json:"status,omitempty"`
	ProhibitedTermsFound int           `json:"prohibited_terms_found"`
	Findings             []TermFinding `json:"findings"`
	Error                string        `json:"error,omitempty"`
}

// CheckProhibitedTerms lists every occurrence of every prohibited term. It
// warns but never fails; severity is decided by aggregation.
func (c *Checker) CheckProhibitedTerms(text string) TermResult {
	rules, err := c.rules.Load()
	if err != nil {
		return TermResult{Error: errorMessage(err)}
	}

	res := TermResult{Findings: []TermFinding{}}
	for _, term := range rules.ProhibitedTerms {
		for _, m := range indexAllFold(text, term) {
			line := lineAt(text, m.start)
			res.Findings = append(res.Findings, TermFinding{
				Term:     term,
				Location: fmt.Sprintf("Line %d", line),
				Line:     line,
				Context:  contextWindow(text, m.start, m.end, contextChars),
			})
		}
	}

	res.ProhibitedTermsFound = len(res.Findings)
	res.Status = StatusPass
	if res.ProhibitedTermsFound > 0 {
		res.Status = StatusWarning
	}
	return res
}

// SLAFinding is a missing SLA commitment.
type SLAFinding struct {
	Severity   Severity `json:"severity"`
	Issue      string   `json:"issue"`
	Location   string   `json:"location"`
	Suggestion string   `json:"suggestion"`
}

type SLAResult struct {
	Status       Status          `json:"status,omitempty"`
	ClientTier   string          `json:"client_tier,omitempty"`
	RequiredSLAs *SLARequirement `json:"required_slas,omitempty"`
	Findings     []SLAFinding    `json:"findings,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// CheckSLA verifies the tier's SLA commitments. The uptime value must appear
// verbatim (case-sensitive); the response time requirement is satisfied by
// any mention of a response time. product is accepted for per-product rules
// but does not change the outcome yet.
func (c *Checker) CheckSLA(text, product, tier string) SLAResult {
	rules, err := c.rules.Load()
	if err != nil {
		return SLAResult{Error: errorMessage(err)}
	}

	req, ok := rules.SLARequirementsByTier[tier]
	if !ok || req.IsZero() {
		return SLAResult{Error: fmt.Sprintf("No SLA requirements found for tier '%s'", tier)}
	}

	res := SLAResult{
		ClientTier:   tier,
		RequiredSLAs: &req,
		Findings:     []SLAFinding{},
	}

	if req.Uptime != "" && !strings.Contains(text, req.Uptime) {
		res.Findings = append(res.Findings, SLAFinding{
			Severity:   SeverityHigh,
			Issue:      fmt.Sprintf("Missing uptime SLA: '%s'", req.Uptime),
			Location:   "SLA Section",
			Suggestion: fmt.Sprintf("Add uptime commitment: '%s'", req.Uptime),
		})
	}

	if req.MaxResponseTime != "" && !responseTimeMention.MatchString(text) {
		res.Findings = append(res.Findings, SLAFinding{
			Severity:   SeverityMedium,
			Issue:      "Missing response time SLA",
			Location:   "SLA Section",
			Suggestion: fmt.Sprintf("Add response time commitment: '%s'", req.MaxResponseTime),
		})
	}

	res.Status = StatusPass
	if len(res.Findings) > 0 {
		res.Status = StatusWarning
	}
	return res
}

// Requirements is the rule subset that applies to one client tier.
type Requirements struct {
	ClientTier       string          `json:"client_tier"`
	SLARequirements  *SLARequirement `json:"sla_requirements,omitempty"`
	MandatoryClauses []Clause        `json:"mandatory_clauses"`
	ProhibitedTerms  []string        `json:"prohibited_terms"`
	RequiredSections []string        `json:"required_sections,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// Requirements looks up what tier must satisfy.
func (c *Checker) Requirements(tier string) Requirements {
	rules, err := c.rules.Load()
	if err != nil {
		return Requirements{ClientTier: tier, Error: errorMessage(err)}
	}

	res := Requirements{
		ClientTier:       tier,
		MandatoryClauses: rules.ClausesForTier(tier),
		ProhibitedTerms:  rules.ProhibitedTerms,
		RequiredSections: rules.RequiredSections,
	}
	if res.MandatoryClauses == nil {
		res.MandatoryClauses = []Clause{}
	}
	if req, ok := rules.SLARequirementsByTier[tier]; ok && !req.IsZero() {
		res.SLARequirements = &req
	}
	return res
}
