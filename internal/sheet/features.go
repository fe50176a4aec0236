package sheet

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"

	"github.com/sells-group/autoscore/internal/model"
	"github.com/sells-group/autoscore/internal/scorer"
)

// Feature table headers.
const (
	HeaderID       = "id"
	HeaderFeature  = "feature"
	HeaderType     = "type"
	HeaderWeight   = "weight"
	HeaderColumn   = "adac column"
	HeaderReversed = "reversed"
	HeaderUnique   = "unique"
	HeaderRange    = "range"
	HeaderTypes    = "types"
)

// Columns of older feature tables that carry no scoring input.
const (
	headerValues = "adac values"
	headerPrefix = "prefix"
)

// modelColumns returns the positions of headers the feature table does not
// define. Each names a model and holds its manual scores.
func modelColumns(t *Table) []int {
	known := make(map[string]struct{})
	for _, h := range []string{
		HeaderID, HeaderFeature, HeaderType, HeaderWeight, HeaderColumn, HeaderReversed,
		HeaderUnique, HeaderRange, HeaderTypes, headerValues, headerPrefix,
	} {
		known[h] = struct{}{}
	}
	fold := cases.Fold()
	var out []int
	for i, h := range t.Header {
		key := fold.String(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, ok := known[key]; !ok {
			out = append(out, i)
		}
	}
	return out
}

// featureIndex locates feature table headers case-insensitively.
func featureIndex(t *Table) map[string]int {
	idx := make(map[string]int, len(t.Header))
	fold := cases.Fold()
	for i, h := range t.Header {
		key := fold.String(strings.TrimSpace(h))
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	return idx
}

// ToFeatureSpecs converts a feature table. The feature and type columns
// are required. An empty weight means 1, "y" in the reversed column flips
// the direction and rows without a feature name are ignored. Any other
// column names a model; its non-empty cells are manual scores.
func ToFeatureSpecs(t *Table) ([]model.FeatureSpec, error) {
	idx := featureIndex(t)
	for _, h := range []string{HeaderFeature, HeaderType} {
		if _, ok := idx[h]; !ok {
			return nil, eris.Errorf("sheet: feature table needs a %q column", h)
		}
	}
	cell := func(row []string, h string) string {
		i, ok := idx[h]
		if !ok {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	models := modelColumns(t)

	var specs []model.FeatureSpec
	for i, row := range t.Rows {
		line := i + 2
		name := cell(row, HeaderFeature)
		if name == "" {
			continue
		}

		typ, err := model.ParseFeatureType(cell(row, HeaderType))
		if err != nil {
			return nil, eris.Wrapf(err, "sheet: feature table line %d", line)
		}

		spec := model.FeatureSpec{
			ID:       len(specs) + 1,
			Feature:  name,
			Type:     typ,
			Weight:   model.DefaultWeight,
			Column:   cell(row, HeaderColumn),
			Reversed: isYes(cell(row, HeaderReversed)),
		}
		if s := cell(row, HeaderID); s != "" {
			id, err := strconv.Atoi(s)
			if err != nil {
				return nil, eris.Errorf("sheet: feature table line %d: invalid id %q", line, s)
			}
			spec.ID = id
		}
		if s := cell(row, HeaderWeight); s != "" {
			w, ok := scorer.ParseNumber(s)
			if !ok {
				return nil, eris.Errorf("sheet: feature table line %d: invalid weight %q", line, s)
			}
			spec.Weight = w
		}
		for _, col := range models {
			s := strings.TrimSpace(row[col])
			if s == "" {
				continue
			}
			score, ok := scorer.ParseNumber(s)
			if !ok {
				return nil, eris.Errorf("sheet: feature table line %d: invalid score %q for model %q", line, s, t.Header[col])
			}
			spec.Scores = append(spec.Scores, model.ModelScore{Model: strings.TrimSpace(t.Header[col]), Score: score})
		}
		specs = append(specs, spec)
	}

	if err := scorer.ValidateSpecs(specs); err != nil {
		return nil, err
	}
	return specs, nil
}

func isYes(s string) bool {
	switch strings.ToLower(s) {
	case "y", "yes", "j", "ja", "true", "1":
		return true
	}
	return false
}

// LoadFeatureSpecs reads and converts a feature table.
func LoadFeatureSpecs(ctx context.Context, path string, opts ReadOptions) ([]model.FeatureSpec, error) {
	t, err := ReadTable(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return ToFeatureSpecs(t)
}

// TemplateTable renders a generated feature table. The type column holds
// the suggestion; users edit it and the weight before scoring.
func TemplateTable(rows []scorer.TemplateRow) *Table {
	t := &Table{Header: []string{
		HeaderID, HeaderFeature, HeaderUnique, HeaderRange, HeaderTypes,
		HeaderType, HeaderWeight, HeaderColumn, HeaderReversed,
	}}
	for i, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			r.Feature,
			strconv.Itoa(r.Unique),
			r.Range,
			r.Types,
			string(r.Type),
			strconv.FormatFloat(r.Weight, 'f', -1, 64),
			"",
			"",
		})
	}
	return t
}
