// Package compliance checks statement-of-work text against a rule set:
// mandatory clauses, prohibited terms, per-tier SLA commitments and required
// sections. Checkers never fail hard; problems loading rules are reported in
// each result's Error field.
package compliance

type Status string

const (
	StatusPass    Status = "PASS"
	StatusWarning Status = "WARNING"
	StatusFail    Status = "FAIL"
)

type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Finding categories produced by the Reviewer.
const (
	CategoryMandatoryClause = "Mandatory Clause"
	CategoryProhibitedTerm  = "Prohibited Term"
	CategorySLA             = "SLA"
	CategoryStructure       = "Structure"
)

// Finding is one compliance issue.
type Finding struct {
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Location    string   `json:"location,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty"`
	Context     string   `json:"context,omitempty"`
}
