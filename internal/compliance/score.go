package compliance

// Penalty points per finding severity.
const (
	penaltyHigh   = 20
	penaltyMedium = 10
	penaltyLow    = 5
)

// Score thresholds for the overall status.
const (
	passScore    = 90
	warningScore = 70
)

// Summary counts findings per severity.
type Summary struct {
	High   int `json:"HIGH"`
	Medium int `json:"MEDIUM"`
	Low    int `json:"LOW"`
}

func (s Summary) Total() int { return s.High + s.Medium + s.Low }

// Verdict is the aggregate outcome of a review.
type Verdict struct {
	Score   int     `json:"compliance_score"`
	Status  Status  `json:"status"`
	Summary Summary `json:"summary"`
}

// Aggregate scores findings linearly: 100 minus 20 per HIGH, 10 per MEDIUM
// and 5 per LOW, clamped to [0, 100]. Findings with another severity are
// not counted.
func Aggregate(findings []Finding) Verdict {
	var sum Summary
	for _, f := range findings {
		switch f.Severity {
		case SeverityHigh:
			sum.High++
		case SeverityMedium:
			sum.Medium++
		case SeverityLow:
			sum.Low++
		}
	}

	score := 100 - (sum.High*penaltyHigh + sum.Medium*penaltyMedium + sum.Low*penaltyLow)
	score = max(0, min(100, score))

	return Verdict{
		Score:   score,
		Status:  StatusForScore(score),
		Summary: sum,
	}
}

func StatusForScore(score int) Status {
	switch {
	case score >= passScore:
		return StatusPass
	case score >= warningScore:
		return StatusWarning
	default:
		return StatusFail
	}
}
