package compliance

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrRulesNotFound = errors.New("compliance rules file not found")

// SLARequirement is what a client tier must be promised.
type SLARequirement struct {
	Uptime          string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	MaxResponseTime string `json:"max_response_time,omitempty" yaml:"max_response_time,omitempty"`
}

func (s SLARequirement) IsZero() bool {
	return s.Uptime == "" && s.MaxResponseTime == ""
}

// RuleSet is the static compliance configuration. It is never modified by
// the checkers.
type RuleSet struct {
	ProhibitedTerms       []string                  `json:"prohibited_terms" yaml:"prohibited_terms"`
	MandatoryClauses      []Clause                  `json:"mandatory_clauses" yaml:"mandatory_clauses"`
	SLARequirementsByTier map[string]SLARequirement `json:"sla_requirements_by_tier" yaml:"sla_requirements_by_tier"`
	RequiredSections      []string                  `json:"required_sections,omitempty" yaml:"required_sections,omitempty"`
}

// ClausesForTier returns the clauses required for tier: plain clauses and
// clauses whose required_for lists "ALL" or the tier itself.
func (rs *RuleSet) ClausesForTier(tier string) []Clause {
	var out []Clause
	for _, c := range rs.MandatoryClauses {
		if c.AppliesTo(tier) {
			out = append(out, c)
		}
	}
	return out
}

// RuleSource supplies a rule set. Implementations may reload on every call.
type RuleSource interface {
	Load() (*RuleSet, error)
}

// FileSource reads rules from a JSON or YAML file on every Load.
type FileSource struct {
	Path string
}

func (f FileSource) Load() (*RuleSet, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrRulesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read compliance rules: %w", err)
	}

	rs, err := ParseRules(data, filepath.Ext(f.Path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return rs, nil
}

// ParseRules decodes a rule set. ext selects the format: ".yaml"/".yml" for
// YAML, anything else for JSON.
func ParseRules(data []byte, ext string) (*RuleSet, error) {
	var rs RuleSet

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rs); err != nil {
			return nil, fmt.Errorf("failed to parse compliance rules: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &rs); err != nil {
			return nil, fmt.Errorf("failed to parse compliance rules: %w", err)
		}
	}
	rs.MandatoryClauses = slices.DeleteFunc(rs.MandatoryClauses, Clause.blank)
	return &rs, nil
}

// StaticSource serves a fixed rule set.
type StaticSource struct {
	Rules *RuleSet
}

func (s StaticSource) Load() (*RuleSet, error) {
	if s.Rules == nil {
		return nil, ErrRulesNotFound
	}
	return s.Rules, nil
}
