package scorer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/autoscore/internal/model"
)

// numberRe matches the first number in a cell, separators included.
var numberRe = regexp.MustCompile(`-?\d[\d.,]*`)

// ParseNumber extracts the first number from s. Both German ("1.234,56")
// and English ("1,234.56") grouping are accepted; a lone comma is a decimal
// separator and a lone dot followed by exactly three digits is a thousands
// separator. Unit suffixes like "Euro" or "kW" are ignored. A minus sign
// counts only at the start of s or after a space, so "Euro-6" is 6.
func ParseNumber(s string) (float64, bool) {
	loc := numberRe.FindStringIndex(s)
	if loc == nil {
		return 0, false
	}
	m := s[loc[0]:loc[1]]
	if strings.HasPrefix(m, "-") && loc[0] > 0 {
		if r, _ := utf8.DecodeLastRuneInString(s[:loc[0]]); !unicode.IsSpace(r) {
			m = m[1:]
		}
	}
	m = strings.TrimRight(m, ".,")

	neg := strings.HasPrefix(m, "-")
	digits := strings.TrimPrefix(m, "-")

	dots := strings.Count(digits, ".")
	commas := strings.Count(digits, ",")
	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(digits, ",") > strings.LastIndex(digits, ".") {
			digits = strings.ReplaceAll(digits, ".", "")
			digits = strings.Replace(digits, ",", ".", 1)
		} else {
			digits = strings.ReplaceAll(digits, ",", "")
		}
	case commas > 1:
		digits = strings.ReplaceAll(digits, ",", "")
	case commas == 1:
		digits = strings.Replace(digits, ",", ".", 1)
	case dots > 1:
		digits = strings.ReplaceAll(digits, ".", "")
	case dots == 1:
		i := strings.Index(digits, ".")
		if len(digits)-i-1 == 3 && digits[:i] != "0" {
			digits = digits[:i] + digits[i+1:]
		}
	}

	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// NormalizeValue converts a raw cell into a number. Numbers pass through
// and parseable strings are converted. Anything else is returned unchanged
// when strict is set, so category mapping can pick it up, and becomes
// missing otherwise.
func NormalizeValue(v model.Value, strict bool) model.Value {
	if v.IsNumber() || v.IsMissing() {
		return v
	}
	s, _ := v.Str()
	if f, ok := ParseNumber(s); ok {
		return model.Number(f)
	}
	if strict {
		return v
	}
	return model.Missing()
}

// Sentinel tokens of equipment columns.
const (
	TokenSerie = "Serie" // standard equipment
	TokenPaket = "Paket" // only available as part of a package
)

// foldToken normalizes a label for case-insensitive comparison.
func foldToken(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// tokenSet is a set of folded labels.
type tokenSet map[string]struct{}

func newTokenSet(tokens []string) tokenSet {
	t := make(tokenSet, len(tokens))
	for _, tok := range tokens {
		t[foldToken(tok)] = struct{}{}
	}
	return t
}

func (t tokenSet) contains(s string) bool {
	_, ok := t[foldToken(s)]
	return ok
}

// SameToken compares two labels ignoring case and surrounding space.
func SameToken(a, b string) bool {
	return foldToken(a) == foldToken(b)
}

// textOf returns the text of v, or its rendered number.
func textOf(v model.Value) string {
	if s, ok := v.Str(); ok {
		return s
	}
	return v.String()
}
