package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func findings(high, medium, low int) []Finding {
	var out []Finding
	for range high {
		out = append(out, Finding{Severity: SeverityHigh})
	}
	for range medium {
		out = append(out, Finding{Severity: SeverityMedium})
	}
	for range low {
		out = append(out, Finding{Severity: SeverityLow})
	}
	return out
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name              string
		high, medium, low int
		score             int
		status            Status
	}{
		{"clean", 0, 0, 0, 100, StatusPass},
		{"two low", 0, 0, 2, 90, StatusPass},
		{"one high", 1, 0, 0, 80, StatusWarning},
		{"high and medium", 1, 1, 0, 70, StatusWarning},
		{"two high one low", 2, 0, 1, 55, StatusFail},
		{"clamped", 6, 0, 0, 0, StatusFail},
		{"far below zero", 10, 10, 10, 0, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Aggregate(findings(tt.high, tt.medium, tt.low))
			assert.Equal(t, tt.score, v.Score)
			assert.Equal(t, tt.status, v.Status)
			assert.Equal(t, Summary{High: tt.high, Medium: tt.medium, Low: tt.low}, v.Summary)
		})
	}
}

func TestAggregateIgnoresUnknownSeverity(t *testing.T) {
	v := Aggregate([]Finding{{Severity: "CRITICAL"}, {Severity: SeverityLow}})
	assert.Equal(t, 95, v.Score)
	assert.Equal(t, 1, v.Summary.Total())
}

func TestAggregateIsMonotonic(t *testing.T) {
	base := findings(1, 1, 1)
	prev := Aggregate(base).Score

	for _, sev := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityHigh, SeverityHigh} {
		base = append(base, Finding{Severity: sev})
		score := Aggregate(base).Score
		assert.LessOrEqual(t, score, prev)
		prev = score
	}
	assert.Zero(t, prev)
}

func TestStatusForScore(t *testing.T) {
	assert.Equal(t, StatusPass, StatusForScore(100))
	assert.Equal(t, StatusPass, StatusForScore(90))
	assert.Equal(t, StatusWarning, StatusForScore(89))
	assert.Equal(t, StatusWarning, StatusForScore(70))
	assert.Equal(t, StatusFail, StatusForScore(69))
	assert.Equal(t, StatusFail, StatusForScore(0))
}
