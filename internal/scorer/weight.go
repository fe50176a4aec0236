package scorer

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/autoscore/internal/model"
)

// ResolveScaled finds the scaled column a feature reads from. The source
// binding is tried before the bare feature name; for each candidate the
// weighted, scaled and fixed stages are probed, and only a scaled column
// is usable as input.
func ResolveScaled(ds *model.Dataset, spec model.FeatureSpec) (model.ColumnKey, error) {
	bases := []string{spec.Source()}
	if spec.Column != "" && spec.Column != spec.Feature {
		bases = append(bases, spec.Feature)
	}

	var tried []string
	for _, base := range bases {
		for _, key := range []model.ColumnKey{model.Weighted(base), model.Scaled(base), model.Fixed(base)} {
			tried = append(tried, key.String())
			if !ds.Has(key) {
				continue
			}
			if key.Stage == model.StageFixed {
				break
			}
			return model.Scaled(base), nil
		}
	}
	return model.ColumnKey{}, &UnknownFeatureError{Feature: spec.Feature, Tried: tried}
}

// ApplyWeights adds <column>|fixed|scaled|weighted = scaled * weight for
// every scored feature. The scaled column is left in place. A weighted
// column that already exists is kept as is.
func ApplyWeights(ds *model.Dataset, specs []model.FeatureSpec) error {
	for _, spec := range specs {
		if !spec.Scored() {
			continue
		}
		scaledKey, err := ResolveScaled(ds, spec)
		if err != nil {
			return err
		}
		weightedKey := model.Weighted(scaledKey.Base)
		if ds.Has(weightedKey) {
			continue
		}
		if spec.Weight < 0 {
			return eris.Errorf("scorer: feature %q has negative weight %g", spec.Feature, spec.Weight)
		}

		scaled := ds.Column(scaledKey)
		weighted := make([]model.Value, len(scaled))
		for i, v := range scaled {
			if f, ok := v.Float(); ok {
				weighted[i] = model.Number(f * spec.Weight)
			}
		}
		if err := ds.SetColumn(weightedKey, weighted); err != nil {
			return eris.Wrapf(err, "scorer: weight %q", spec.Feature)
		}
	}
	return nil
}
