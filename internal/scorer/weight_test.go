package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/autoscore/internal/model"
)

// scaledDataset returns a dataset with column already scaled MoreIsBetter.
func scaledDataset(t *testing.T, column string, values ...any) *model.Dataset {
	t.Helper()
	vals := make([][]any, len(values))
	for i, v := range values {
		vals[i] = []any{v}
	}
	ds := rows([]string{column}, vals...)
	cfg := testScoreConfig()
	_, err := NewNormalizer(cfg).NormalizeColumn(ds, column, false)
	require.NoError(t, err)
	_, err = NewScaler(cfg).ScaleColumn(ds, column, model.MoreIsBetter)
	require.NoError(t, err)
	return ds
}

func TestApplyWeights_Linear(t *testing.T) {
	ds := scaledDataset(t, "Leistung", 50, 150)
	specs := []model.FeatureSpec{{Feature: "Leistung", Type: model.MoreIsBetter, Weight: 10}}

	require.NoError(t, ApplyWeights(ds, specs))
	assert.Equal(t, []float64{0, 10}, floats(t, ds.Column(model.Weighted("Leistung"))))
	assert.True(t, ds.Has(model.Scaled("Leistung")), "scaled column stays")
}

func TestApplyWeights_UnitWeightIsIdentity(t *testing.T) {
	ds := scaledDataset(t, "Länge", 4100, 4350, nil, 4700)
	specs := []model.FeatureSpec{{Feature: "Länge", Type: model.MoreIsBetter, Weight: 1}}

	require.NoError(t, ApplyWeights(ds, specs))
	assert.Equal(t, ds.Column(model.Scaled("Länge")), ds.Column(model.Weighted("Länge")))
}

func TestApplyWeights_ColumnBinding(t *testing.T) {
	ds := scaledDataset(t, "Kofferraumvolumen normal", 300, 500)
	specs := []model.FeatureSpec{{Feature: "Kofferraum", Column: "Kofferraumvolumen normal", Type: model.MoreIsBetter, Weight: 2}}

	require.NoError(t, ApplyWeights(ds, specs))
	assert.Equal(t, []float64{0, 2}, floats(t, ds.Column(model.Weighted("Kofferraumvolumen normal"))))
}

func TestApplyWeights_SkipIgnored(t *testing.T) {
	ds := scaledDataset(t, "Länge", 1, 2)
	specs := []model.FeatureSpec{{Feature: "Farbe", Type: model.Skip, Weight: 3}}

	require.NoError(t, ApplyWeights(ds, specs))
	assert.Empty(t, ds.WeightedKeys())
}

func TestApplyWeights_UnknownFeature(t *testing.T) {
	ds := scaledDataset(t, "Länge", 1, 2)
	specs := []model.FeatureSpec{{Feature: "Breite", Column: "Breite mit Spiegeln", Type: model.MoreIsBetter, Weight: 1}}

	err := ApplyWeights(ds, specs)
	var unknown *UnknownFeatureError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Breite", unknown.Feature)
	assert.Equal(t, []string{
		"Breite mit Spiegeln|fixed|scaled|weighted",
		"Breite mit Spiegeln|fixed|scaled",
		"Breite mit Spiegeln|fixed",
		"Breite|fixed|scaled|weighted",
		"Breite|fixed|scaled",
		"Breite|fixed",
	}, unknown.Tried)
}

func TestApplyWeights_FixedOnlyIsUnknown(t *testing.T) {
	ds := rows([]string{"Länge"}, []any{1}, []any{2})
	_, err := NewNormalizer(testScoreConfig()).NormalizeColumn(ds, "Länge", false)
	require.NoError(t, err)

	err = ApplyWeights(ds, []model.FeatureSpec{{Feature: "Länge", Type: model.MoreIsBetter, Weight: 1}})
	var unknown *UnknownFeatureError
	assert.ErrorAs(t, err, &unknown)
}

func TestApplyWeights_NegativeWeight(t *testing.T) {
	ds := scaledDataset(t, "Länge", 1, 2)
	err := ApplyWeights(ds, []model.FeatureSpec{{Feature: "Länge", Type: model.MoreIsBetter, Weight: -1}})
	assert.Error(t, err)
	assert.False(t, ds.Has(model.Weighted("Länge")))
}

func TestApplyWeights_Idempotent(t *testing.T) {
	ds := scaledDataset(t, "Länge", 1, 2)
	specs := []model.FeatureSpec{{Feature: "Länge", Type: model.MoreIsBetter, Weight: 3}}

	require.NoError(t, ApplyWeights(ds, specs))
	require.NoError(t, ApplyWeights(ds, specs))
	assert.Len(t, ds.WeightedKeys(), 1)
}
