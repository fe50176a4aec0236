package scorer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/autoscore/internal/model"
)

func testMapper(t *testing.T) *CategoryMapper {
	t.Helper()
	o, err := DefaultOrderings()
	require.NoError(t, err)
	return NewCategoryMapper(o, testScoreConfig().PlaceholderTokens)
}

func TestBuildMapping_CostTiers(t *testing.T) {
	m, err := testMapper(t).BuildMapping("Navigation", []string{"Serie", "Paket", "100 Euro", "200 Euro", "nicht bekannt"})
	require.NoError(t, err)
	assert.False(t, m.Curated)

	want := map[string]float64{
		"Serie":         0,
		"100 Euro":      100,
		"200 Euro":      200,
		"Paket":         150,
		"nicht bekannt": 250,
	}
	assert.Equal(t, want, m.Ranks())
}

func TestBuildMapping_SentinelRanks(t *testing.T) {
	tests := []struct {
		name     string
		observed []string
	}{
		{"many costs", []string{"Serie", "50 Euro", "300 Euro", "990 Euro", "a.W.", "n.b."}},
		{"single cost", []string{"Serie", "450 Euro", "Keine"}},
		{"no costs", []string{"Serie", "Paket", "nicht lieferbar"}},
		{"curated", []string{"Serie", "150 Euro", "Paket", "nicht bekannt"}},
	}
	mapper := testMapper(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			column := "Einparkhilfe"
			if tt.name == "curated" {
				column = "Kopfairbag vorne"
			}
			m, err := mapper.BuildMapping(column, tt.observed)
			require.NoError(t, err)

			serie, ok := m.Rank("Serie")
			require.True(t, ok)
			assert.Equal(t, 0.0, serie)

			last := tt.observed[len(tt.observed)-1]
			worst, ok := m.Rank(last)
			require.True(t, ok)
			assert.Equal(t, m.Worst(), worst)
			for label, r := range m.Ranks() {
				if label != last && !mapper.placeholders.contains(label) {
					assert.Less(t, r, worst, label)
				}
			}
		})
	}
}

func TestCostTiers(t *testing.T) {
	tests := []struct {
		name       string
		costs      []float64
		withPaket  bool
		paket, top float64
	}{
		{"none", nil, true, 1, 2},
		{"one", []float64{450}, true, 450, 900},
		{"two with paket", []float64{100, 200}, true, 150, 250},
		{"two without paket", []float64{100, 200}, false, 150, 400},
		{"three", []float64{100, 200, 600}, true, 300, 1000},
		{"three without paket", []float64{100, 200, 600}, false, 300, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := make(map[float64]struct{})
			for _, c := range tt.costs {
				set[c] = struct{}{}
			}
			paket, worst := costTiers(set, tt.withPaket)
			assert.InDelta(t, tt.paket, paket, 1e-9)
			assert.InDelta(t, tt.top, worst, 1e-9)
		})
	}
}

func TestBuildMapping_CostTiersWithoutPaket(t *testing.T) {
	m, err := testMapper(t).BuildMapping("Navigation", []string{"Serie", "100 Euro", "200 Euro", "n.b."})
	require.NoError(t, err)

	want := map[string]float64{
		"Serie":    0,
		"100 Euro": 100,
		"200 Euro": 200,
		"n.b.":     400,
	}
	assert.Equal(t, want, m.Ranks())
}

func TestBuildMapping_CuratedPlaceholdersShareWorstRank(t *testing.T) {
	m, err := testMapper(t).BuildMapping("Kopfairbag vorne",
		[]string{"Serie", "300 Euro", "Paket", "nicht lieferbar", "n.b.", "a.W."})
	require.NoError(t, err)

	ranks := m.Ranks()
	assert.Equal(t, 0.0, ranks["Serie"])
	assert.Equal(t, 2.0, ranks["300 Euro"])
	assert.Equal(t, 3.0, ranks["Paket"])
	for _, p := range []string{"nicht lieferbar", "n.b.", "a.W."} {
		assert.Equal(t, 4.0, ranks[p], p)
	}
	assert.Equal(t, 4.0, m.Worst())
}

func TestBuildMapping_HyphenatedLabelIsNotNegative(t *testing.T) {
	m, err := testMapper(t).BuildMapping("Abgasnorm", []string{"Euro-6", "Serie", "100 Euro"})
	require.NoError(t, err)

	ranks := m.Ranks()
	assert.Equal(t, 0.0, ranks["Serie"])
	assert.Equal(t, 6.0, ranks["Euro-6"])
	for label, r := range ranks {
		assert.GreaterOrEqual(t, r, 0.0, label)
	}
}

func TestBuildMapping_Curated(t *testing.T) {
	m, err := testMapper(t).BuildMapping("Bremsen vorne", []string{"Trommel", "Scheibe"})
	require.NoError(t, err)
	assert.True(t, m.Curated)

	r, ok := m.Rank("Scheibe innenbelüftet")
	require.True(t, ok)
	assert.Equal(t, 1.0, r)
	r, ok = m.Rank("trommel")
	require.True(t, ok, "labels match case-insensitively")
	assert.Equal(t, 3.0, r)
}

func TestBuildMapping_CuratedPattern(t *testing.T) {
	m, err := testMapper(t).BuildMapping("Zusätzliche Garantien", []string{"keine", "3 Jahre", "7 Jahre", "5 Jahre"})
	require.NoError(t, err)

	ranks := m.Ranks()
	assert.Equal(t, 1.0, ranks["7 Jahre"])
	assert.Equal(t, 2.0, ranks["5 Jahre"])
	assert.Equal(t, 3.0, ranks["3 Jahre"])
	assert.Equal(t, 4.0, ranks["keine"])
}

func TestBuildMapping_UnresolvedLabel(t *testing.T) {
	_, err := testMapper(t).BuildMapping("Einparkhilfe", []string{"Serie", "optional"})

	var unresolved *UnresolvedValueError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "optional", unresolved.Value)
}

func TestCategoryMapper_Apply(t *testing.T) {
	ds := rows([]string{"Navigation"},
		[]any{"Serie"},
		[]any{"100 Euro"},
		[]any{"200 Euro"},
		[]any{"Paket"},
		[]any{"n.b."},
		[]any{nil},
	)

	m, err := testMapper(t).Apply(ds, "Navigation")
	require.NoError(t, err)
	assert.Equal(t, "Navigation", m.Column)

	fixed := ds.Column(model.Fixed("Navigation"))
	assert.Equal(t, []float64{0, 100, 200, 150, 250}, floats(t, fixed[:5]))
	assert.True(t, fixed[5].IsMissing())
}

func TestCategoryMapper_ApplyReportsRecord(t *testing.T) {
	ds := rows([]string{"Navigation"}, []any{"Serie"}, []any{"Serie"}, []any{"gegen Aufpreis"})

	_, err := testMapper(t).Apply(ds, "Navigation")

	var unresolved *UnresolvedValueError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, 3, unresolved.RecordID)
	assert.False(t, ds.Has(model.Fixed("Navigation")))
}

func TestCategoryMapper_ApplyNumericCells(t *testing.T) {
	ds := rows([]string{"Navigation"}, []any{"Serie"}, []any{300}, []any{"600 Euro"})

	_, err := testMapper(t).Apply(ds, "Navigation")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 300, 600}, floats(t, ds.Column(model.Fixed("Navigation"))))
}

func TestCategoryMapper_ApplyNumericCellInCuratedColumn(t *testing.T) {
	ds := rows([]string{"Kopfairbag vorne"},
		[]any{"Serie"},
		[]any{450},
		[]any{"300 Euro"},
		[]any{"Paket"},
		[]any{"n.b."},
	)

	m, err := testMapper(t).Apply(ds, "Kopfairbag vorne")
	require.NoError(t, err)
	assert.True(t, m.Curated)

	// Serie, 300 Euro, 450, Paket, placeholder
	assert.Equal(t, []float64{0, 3, 2, 4, 5}, floats(t, ds.Column(model.Fixed("Kopfairbag vorne"))))
}
