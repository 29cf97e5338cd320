package compliance

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// TierAll in required_for makes a clause mandatory for every tier.
const TierAll = "ALL"

// Clause is either a bare phrase or a descriptor with name, text and the
// tiers it applies to. Entries of any other shape keep their raw form so
// they can still be matched as text.
type Clause struct {
	Name        string
	Text        string
	RequiredFor []string

	plain bool
	raw   string
}

// PlainClause is a bare phrase that applies to every tier.
func PlainClause(s string) Clause {
	return Clause{plain: true, raw: s}
}

func PlainClauses(phrases ...string) []Clause {
	out := make([]Clause, len(phrases))
	for i, p := range phrases {
		out[i] = PlainClause(p)
	}
	return out
}

// String is the phrase searched for in the document: the bare phrase, else
// the name, else the text, else the raw entry.
func (c Clause) String() string {
	switch {
	case c.plain:
		return c.raw
	case c.Name != "":
		return c.Name
	case c.Text != "":
		return c.Text
	default:
		return c.raw
	}
}

// AppliesTo reports whether the clause is mandatory for tier. A descriptor
// without required_for applies to no tier.
func (c Clause) AppliesTo(tier string) bool {
	if c.plain {
		return true
	}
	return slices.Contains(c.RequiredFor, TierAll) || slices.Contains(c.RequiredFor, tier)
}

type clauseFields struct {
	Name        string   `json:"name" yaml:"name"`
	Text        string   `json:"text" yaml:"text"`
	RequiredFor tierList `json:"required_for" yaml:"required_for"`
}

// blank reports whether the clause has no phrase to search for. Such
// entries (null or "") would otherwise match every document.
func (c Clause) blank() bool {
	return strings.TrimSpace(c.String()) == ""
}

func (c *Clause) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Clause{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = PlainClause(s)
		return nil
	}

	var fields clauseFields
	if err := json.Unmarshal(data, &fields); err != nil {
		// numbers, lists and other shapes are matched by their literal form
		*c = Clause{raw: string(data)}
		return nil
	}

	*c = Clause{
		Name:        fields.Name,
		Text:        fields.Text,
		RequiredFor: fields.RequiredFor,
		raw:         compactJSON(data),
	}
	return nil
}

func (c *Clause) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.ShortTag() == "!!null" {
			*c = Clause{}
			return nil
		}
		*c = PlainClause(value.Value)
		return nil
	case yaml.MappingNode:
		var fields clauseFields
		if err := value.Decode(&fields); err != nil {
			return err
		}
		var generic map[string]any
		if err := value.Decode(&generic); err != nil {
			return err
		}
		raw, err := json.Marshal(generic)
		if err != nil {
			raw = []byte(fmt.Sprint(generic))
		}
		*c = Clause{
			Name:        fields.Name,
			Text:        fields.Text,
			RequiredFor: fields.RequiredFor,
			raw:         string(raw),
		}
		return nil
	default:
		var generic any
		if err := value.Decode(&generic); err != nil {
			return err
		}
		*c = Clause{raw: fmt.Sprint(generic)}
		return nil
	}
}

func (c Clause) MarshalJSON() ([]byte, error) {
	if c.plain {
		return json.Marshal(c.raw)
	}
	if c.Name == "" && c.Text == "" && c.RequiredFor == nil {
		return json.Marshal(c.raw)
	}
	return json.Marshal(struct {
		Name        string   `json:"name,omitempty"`
		Text        string   `json:"text,omitempty"`
		RequiredFor []string `json:"required_for,omitempty"`
	}{c.Name, c.Text, c.RequiredFor})
}

func compactJSON(data []byte) string {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// tierList accepts either a list of tiers or a single tier string.
type tierList []string

func (t *tierList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*t = tierList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*t = many
	return nil
}

func (t *tierList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*t = tierList{value.Value}
		return nil
	}
	var many []string
	if err := value.Decode(&many); err != nil {
		return err
	}
	*t = many
	return nil
}
