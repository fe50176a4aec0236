package model

import (
	"regexp"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// bmw names its models by series number ("BMW 118i" is a 1 Series), so
// queries for that make match on the series prefix.
const bmw = "bmw"

func words(s string) []string {
	return wordRe.FindAllString(cases.Fold().String(s), -1)
}

// ValidateModelQuery rejects queries MatchesModel cannot answer.
func ValidateModelQuery(query string) error {
	w := words(query)
	if len(w) == 0 {
		return eris.Errorf("model: empty model query %q", query)
	}
	if w[0] == bmw && len(w) != 2 {
		return eris.Errorf("model: model query %q: bmw queries need make and series, e.g. \"bmw 1\"", query)
	}
	return nil
}

// MatchesModel reports whether a full trim name belongs to the queried
// model. Every query word must appear as a word of the name, except for
// BMW where the second query word must prefix the model word.
func MatchesModel(fullName, query string) bool {
	name, q := words(fullName), words(query)
	if len(name) == 0 || len(q) == 0 {
		return false
	}
	if name[0] == bmw && q[0] == bmw {
		return len(q) == 2 && len(name) > 1 && strings.HasPrefix(name[1], q[1])
	}
	for _, w := range q {
		if !slices.Contains(name, w) {
			return false
		}
	}
	return true
}
