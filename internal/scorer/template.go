package scorer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/autoscore/internal/model"
)

// TemplateRow is one row of a generated feature table.
type TemplateRow struct {
	Feature string
	Unique  int
	Range   string
	Types   string
	Weight  float64
	Type    model.FeatureType
}

// FeatureTemplate proposes a feature table for ds: one row per raw column
// (identity columns excluded) with the number of distinct values, a numeric
// summary where every value parses, and a suggested type. Columns listed in
// numeric are always treated as numbers. Every row starts at weight 1.
func FeatureTemplate(ds *model.Dataset, numeric []string) []TemplateRow {
	forced := make(map[string]struct{}, len(numeric))
	for _, c := range numeric {
		forced[c] = struct{}{}
	}

	types := make([]string, 0, 4)
	for _, t := range model.FeatureTypes() {
		types = append(types, string(t))
	}
	allowed := strings.Join(types, " | ")

	rows := make([]TemplateRow, 0, len(ds.Columns))
	for _, col := range ds.Columns {
		if col == model.ColumnID || col == model.ColumnName {
			continue
		}
		row := TemplateRow{Feature: col, Types: allowed, Weight: model.DefaultWeight, Type: model.Skip}

		seen := make(map[string]struct{})
		var (
			sum, lo, hi float64
			count       int
			allNumeric  = true
		)
		for _, r := range ds.Records {
			v := r.Raw[col]
			if v.IsMissing() {
				continue
			}
			seen[textOf(v)] = struct{}{}
			f, ok := NormalizeValue(v, false).Float()
			if !ok {
				allNumeric = false
				continue
			}
			if count == 0 || f < lo {
				lo = f
			}
			if count == 0 || f > hi {
				hi = f
			}
			sum += f
			count++
		}
		row.Unique = len(seen)

		_, isForced := forced[col]
		switch {
		case count > 0 && (allNumeric || isForced):
			row.Range = fmt.Sprintf("min: %.2f mean: %.2f max: %.2f", lo, sum/float64(count), hi)
			row.Type = model.MoreIsBetter
		case row.Unique > 1:
			row.Type = model.Category
		}
		rows = append(rows, row)
	}
	return rows
}

// ValidateSpecs checks a feature table before scoring: known types,
// non-negative weights and no two scored features bound to the same
// source column.
func ValidateSpecs(specs []model.FeatureSpec) error {
	sources := make(map[string]string, len(specs))
	for _, s := range specs {
		if strings.TrimSpace(s.Feature) == "" {
			return eris.Errorf("scorer: feature %d has no name", s.ID)
		}
		t, err := model.ParseFeatureType(string(s.Type))
		if err != nil {
			return eris.Wrapf(err, "scorer: feature %q", s.Feature)
		}
		if t != s.Type {
			return eris.Errorf("scorer: feature %q has non-canonical type %q, want %q", s.Feature, s.Type, t)
		}
		if s.Weight < 0 {
			return eris.Errorf("scorer: feature %q has negative weight %g", s.Feature, s.Weight)
		}
		if !s.Scored() {
			continue
		}
		if s.Manual() {
			if err := validateManual(s); err != nil {
				return err
			}
		}
		if prev, ok := sources[s.Source()]; ok {
			return eris.Errorf("scorer: features %q and %q both read column %q", prev, s.Feature, s.Source())
		}
		sources[s.Source()] = s.Feature
	}
	return nil
}

// CheckColumns returns an UnknownFeatureError for every scored feature
// whose source column is neither a raw column nor an already derived
// fixed column. Derived columns from preparation are passed in derived.
// Manual features read no column and always resolve.
func CheckColumns(ds *model.Dataset, specs []model.FeatureSpec, derived ...string) []error {
	extra := make(map[string]struct{}, len(derived))
	for _, d := range derived {
		extra[d] = struct{}{}
	}
	var errs []error
	for _, s := range specs {
		if !s.Scored() {
			continue
		}
		col := s.Source()
		if s.Manual() || ds.HasRaw(col) || ds.Has(model.Fixed(col)) {
			continue
		}
		if _, ok := extra[col]; ok {
			continue
		}
		errs = append(errs, &UnknownFeatureError{Feature: s.Feature, Tried: []string{col, model.Fixed(col).String()}})
	}
	return errs
}

func validateManual(s model.FeatureSpec) error {
	if s.Column != "" {
		return eris.Errorf("scorer: feature %q has both a column and model scores", s.Feature)
	}
	if s.Type == model.Category {
		return eris.Errorf("scorer: feature %q: model scores cannot be a category", s.Feature)
	}
	for _, ms := range s.Scores {
		if err := model.ValidateModelQuery(ms.Model); err != nil {
			return eris.Wrapf(err, "scorer: feature %q", s.Feature)
		}
	}
	return nil
}
