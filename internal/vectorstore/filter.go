package vectorstore

import (
	"fmt"
	"sort"
	"strings"
)

// Filter restricts a query by metadata. Implemented by Eq and And.
type Filter interface {
	conditions() []Eq
	String() string
}

// Eq matches records whose metadata value for Key equals Value.
type Eq struct {
	Key   string
	Value string
}

func (e Eq) conditions() []Eq { return []Eq{e} }

func (e Eq) String() string { return fmt.Sprintf("%s=%q", e.Key, e.Value) }

// And matches records satisfying every condition.
type And []Eq

func (a And) conditions() []Eq { return a }

func (a And) String() string {
	parts := make([]string, len(a))
	for i, e := range a {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

// BuildFilter turns equality constraints into a predicate: none yields nil,
// one yields Eq and several yield And ordered by key.
func BuildFilter(filters map[string]string) Filter {
	switch len(filters) {
	case 0:
		return nil
	case 1:
		for k, v := range filters {
			return Eq{Key: k, Value: v}
		}
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	and := make(And, 0, len(keys))
	for _, k := range keys {
		and = append(and, Eq{Key: k, Value: filters[k]})
	}
	return and
}

// Conditions flattens a filter into its equality conditions; nil has none.
func Conditions(f Filter) []Eq {
	if f == nil {
		return nil
	}
	return f.conditions()
}

// Matches reports whether metadata satisfies f.
func Matches(f Filter, metadata map[string]string) bool {
	for _, c := range Conditions(f) {
		if v, ok := metadata[c.Key]; !ok || v != c.Value {
			return false
		}
	}
	return true
}
