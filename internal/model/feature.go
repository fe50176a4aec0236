package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// FeatureType controls scaling direction and inclusion in scoring.
type FeatureType string

const (
	MoreIsBetter FeatureType = "more is better"
	LessIsBetter FeatureType = "less is better"
	Category     FeatureType = "category"
	Skip         FeatureType = "skip"
)

// FeatureTypes lists every valid feature type.
func FeatureTypes() []FeatureType {
	return []FeatureType{MoreIsBetter, LessIsBetter, Category, Skip}
}

// ParseFeatureType accepts the feature table spellings, case-insensitive,
// plus the CamelCase names.
func ParseFeatureType(s string) (FeatureType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch norm {
	case "more is better", "moreisbetter", "more":
		return MoreIsBetter, nil
	case "less is better", "lessisbetter", "less":
		return LessIsBetter, nil
	case "category", "categorical":
		return Category, nil
	case "skip", "":
		return Skip, nil
	}
	return "", eris.Errorf("model: unknown feature type %q", s)
}

// DefaultWeight applies when the feature table leaves the weight empty.
const DefaultWeight = 1.0

// FeatureSpec is one row of the feature table.
type FeatureSpec struct {
	ID       int         `json:"id" yaml:"id"`
	Feature  string      `json:"feature" yaml:"feature"`
	Type     FeatureType `json:"type" yaml:"type"`
	Weight   float64     `json:"weight" yaml:"weight"`
	Column   string      `json:"column,omitempty" yaml:"column,omitempty"`
	Reversed bool        `json:"reversed,omitempty" yaml:"reversed,omitempty"`
	// Scores holds hand-assigned per-model scores. A feature with scores
	// reads no vehicle column.
	Scores []ModelScore `json:"scores,omitempty" yaml:"scores,omitempty"`
}

// ModelScore is the manual score of every trim of one model.
type ModelScore struct {
	Model string  `json:"model" yaml:"model"`
	Score float64 `json:"score" yaml:"score"`
}

// Manual reports whether the feature is scored from per-model values
// instead of a vehicle column.
func (f FeatureSpec) Manual() bool {
	return len(f.Scores) > 0
}

// ScoreFor returns the score of the first model whose query matches name.
func (f FeatureSpec) ScoreFor(name string) (float64, bool) {
	for _, s := range f.Scores {
		if MatchesModel(name, s.Model) {
			return s.Score, true
		}
	}
	return 0, false
}

// MentionedModels returns the models named by any manual feature, in
// first-seen order.
func MentionedModels(specs []FeatureSpec) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, f := range specs {
		for _, s := range f.Scores {
			key := strings.ToLower(strings.TrimSpace(s.Model))
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, s.Model)
		}
	}
	return out
}

// Source returns the vehicle column the feature reads from.
func (f FeatureSpec) Source() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Feature
}

// Scored reports whether the feature takes part in scoring.
func (f FeatureSpec) Scored() bool {
	return f.Type != Skip
}

// Direction returns the effective scaling direction after applying
// Reversed. Category ranks are "lower is better".
func (f FeatureSpec) Direction() FeatureType {
	dir := f.Type
	if dir == Category {
		dir = LessIsBetter
	}
	if f.Reversed {
		switch dir {
		case MoreIsBetter:
			dir = LessIsBetter
		case LessIsBetter:
			dir = MoreIsBetter
		}
	}
	return dir
}
