package scorer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOrderings(t *testing.T) {
	o, err := DefaultOrderings()
	require.NoError(t, err)

	assert.True(t, o.Has("Getriebeart"))
	assert.True(t, o.Has("Bremsen hinten"))
	assert.False(t, o.Has("Navigation"))
}

func TestOrderings_NilHas(t *testing.T) {
	var o *Orderings
	assert.False(t, o.Has("Getriebeart"))
}

func TestOrderings_ExpandPattern(t *testing.T) {
	o, err := ParseOrderings([]byte(`
columns:
  Seitenairbag:
    - Serie
    - pattern: '(\d+) Euro'
    - Paket
`))
	require.NoError(t, err)

	observed := []string{"160 Euro", "Paket", "100 Euro", "Serie", "1.190 Euro", "160 Euro"}
	assert.Equal(t,
		[]string{"Serie", "100 Euro", "160 Euro", "1.190 Euro", "Paket"},
		o.Expand("Seitenairbag", observed),
	)
}

func TestOrderings_ExpandDescending(t *testing.T) {
	o, err := ParseOrderings([]byte(`
columns:
  Garantie:
    - pattern: '(\d+) Jahre'
      descending: true
    - keine
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"8 Jahre", "2 Jahre", "keine"}, o.Expand("Garantie", []string{"2 Jahre", "8 Jahre", "keine"}))
}

func TestParseOrderings_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"two patterns", "columns:\n  A:\n    - pattern: '(\\d+) Euro'\n    - pattern: '(\\d+) Jahre'\n"},
		{"no capture group", "columns:\n  A:\n    - pattern: '\\d+ Euro'\n"},
		{"bad regexp", "columns:\n  A:\n    - pattern: '(\\d+'\n"},
		{"empty entry", "columns:\n  A:\n    - descending: true\n"},
		{"not yaml", "columns: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOrderings([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadOrderings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orderings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns:\n  Farbe:\n    - Rot\n    - Blau\n"), 0o644))

	o, err := LoadOrderings(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rot", "Blau"}, o.Expand("Farbe", nil))

	_, err = LoadOrderings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	def, err := LoadOrderings("")
	require.NoError(t, err)
	assert.True(t, def.Has("Getriebeart"))
}

func TestOrderings_ExpandBareNumber(t *testing.T) {
	o, err := DefaultOrderings()
	require.NoError(t, err)

	got := o.Expand("Kopfairbag vorne", []string{"450", "300 Euro", "Serie", "NaN"})
	assert.Equal(t, []string{"Serie", "300 Euro", "450", "Paket", "nicht lieferbar"}, got)
}
