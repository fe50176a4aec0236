package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/autoscore/internal/model"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"450 Euro", 450, true},
		{"1.234,56", 1234.56, true},
		{"1,234.56", 1234.56, true},
		{"5,9 l/100km", 5.9, true},
		{"1.500", 1500, true},
		{"0.500", 0.5, true},
		{"2.5 s", 2.5, true},
		{"1.234.567", 1234567, true},
		{"1,234,567", 1234567, true},
		{"-3,5", -3.5, true},
		{"ca. -2", -2, true},
		{"Euro-6", 6, true},
		{"A-4", 4, true},
		{"0-100", 0, true},
		{"150 kW (204 PS)", 150, true},
		{"7.", 7, true},
		{"ca. 12", 12, true},
		{"n.b.", 0, false},
		{"Serie", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	assert.True(t, NormalizeValue(model.Number(3), true).Equal(model.Number(3)))
	assert.True(t, NormalizeValue(model.Missing(), true).IsMissing())
	assert.True(t, NormalizeValue(model.Text("1.234,5 Euro"), false).Equal(model.Number(1234.5)))

	kept := NormalizeValue(model.Text("Serie"), true)
	s, ok := kept.Str()
	require.True(t, ok)
	assert.Equal(t, "Serie", s)

	assert.True(t, NormalizeValue(model.Text("Serie"), false).IsMissing())
}

func TestFoldToken(t *testing.T) {
	assert.True(t, SameToken(" serie ", "Serie"))
	assert.True(t, SameToken("N.B.", "n.b."))
	assert.False(t, SameToken("Paket", "Serie"))

	set := newTokenSet([]string{"nicht bekannt", "Keine"})
	assert.True(t, set.contains("keine"))
	assert.True(t, set.contains("Nicht Bekannt"))
	assert.False(t, set.contains("Paket"))
}
