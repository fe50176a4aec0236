package scorer

import (
	_ "embed"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed orderings.yaml
var defaultOrderings []byte

// OrderingEntry is one position in a curated ordering: either a literal
// label or a pattern whose first capture group is numeric.
type OrderingEntry struct {
	Label      string
	Pattern    string
	Descending bool

	re *regexp.Regexp
}

// UnmarshalYAML accepts a plain scalar label or a {pattern, descending} map.
func (e *OrderingEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Label = node.Value
		return nil
	}
	var raw struct {
		Pattern    string `yaml:"pattern"`
		Descending bool   `yaml:"descending"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Pattern == "" {
		return eris.Errorf("scorer: ordering entry at line %d has neither label nor pattern", node.Line)
	}
	re, err := regexp.Compile(raw.Pattern)
	if err != nil {
		return eris.Wrapf(err, "scorer: ordering pattern %q", raw.Pattern)
	}
	if re.NumSubexp() < 1 {
		return eris.Errorf("scorer: ordering pattern %q needs a capture group", raw.Pattern)
	}
	e.Pattern, e.Descending, e.re = raw.Pattern, raw.Descending, re
	return nil
}

// Orderings maps a column name to its curated order of labels, best first.
type Orderings struct {
	Columns map[string][]OrderingEntry `yaml:"columns"`
}

// DefaultOrderings returns the orderings compiled into the binary.
func DefaultOrderings() (*Orderings, error) {
	return ParseOrderings(defaultOrderings)
}

// LoadOrderings reads orderings from a YAML file. An empty path yields the
// defaults.
func LoadOrderings(path string) (*Orderings, error) {
	if path == "" {
		return DefaultOrderings()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scorer: read orderings %s", path)
	}
	return ParseOrderings(data)
}

// ParseOrderings decodes an orderings document.
func ParseOrderings(data []byte) (*Orderings, error) {
	var o Orderings
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, eris.Wrap(err, "scorer: parse orderings")
	}
	for col, entries := range o.Columns {
		patterns := 0
		for _, e := range entries {
			if e.Pattern != "" {
				patterns++
			}
		}
		if patterns > 1 {
			return nil, eris.Errorf("scorer: ordering for %q has %d patterns, at most one allowed", col, patterns)
		}
	}
	if o.Columns == nil {
		o.Columns = make(map[string][]OrderingEntry)
	}
	return &o, nil
}

// Has reports whether the column has a curated ordering.
func (o *Orderings) Has(column string) bool {
	if o == nil {
		return false
	}
	_, ok := o.Columns[column]
	return ok
}

// Expand resolves the ordering for column against the observed labels.
// A pattern entry is replaced in place by the matching observed labels,
// sorted ascending by captured number (descending when configured).
func (o *Orderings) Expand(column string, observed []string) []string {
	entries := o.Columns[column]
	out := make([]string, 0, len(entries)+len(observed))
	for _, e := range entries {
		if e.re == nil {
			out = append(out, e.Label)
			continue
		}
		out = append(out, expandPattern(e, observed)...)
	}
	return out
}

// capture returns the number a label contributes to a pattern entry. A
// bare number, as numeric spreadsheet cells render, stands for the
// captured value itself.
func (e OrderingEntry) capture(label string) (float64, bool) {
	if sub := e.re.FindStringSubmatch(label); sub != nil {
		return ParseNumber(sub[1])
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(label), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func expandPattern(e OrderingEntry, observed []string) []string {
	type match struct {
		label string
		num   float64
	}
	var matches []match
	seen := make(map[string]struct{})
	for _, label := range observed {
		if _, dup := seen[label]; dup {
			continue
		}
		num, ok := e.capture(label)
		if !ok {
			continue
		}
		seen[label] = struct{}{}
		matches = append(matches, match{label: label, num: num})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if e.Descending {
			return matches[i].num > matches[j].num
		}
		return matches[i].num < matches[j].num
	})
	labels := make([]string, len(matches))
	for i, m := range matches {
		labels[i] = m.label
	}
	return labels
}
