package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesModel(t *testing.T) {
	tests := []struct {
		name, query string
		want        bool
	}{
		{"Subaru Impreza 2.0i Comfort", "subaru impreza", true},
		{"Subaru XV 2.0i", "subaru impreza", false},
		{"Opel Corsa 1.2", "Opel Corsa", true},
		{"BMW 118i Advantage", "bmw 1", true},
		{"BMW 320d Touring", "bmw 1", false},
		{"Škoda Octavia", "škoda octavia", true},
		{"", "opel", false},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesModel(tt.name, tt.query))
		})
	}
}

func TestValidateModelQuery(t *testing.T) {
	assert.NoError(t, ValidateModelQuery("subaru impreza"))
	assert.NoError(t, ValidateModelQuery("bmw 3"))
	assert.Error(t, ValidateModelQuery("bmw"))
	assert.Error(t, ValidateModelQuery("bmw 3 touring"))
	assert.Error(t, ValidateModelQuery(" - "))
}

func TestFeatureSpec_ScoreFor(t *testing.T) {
	f := FeatureSpec{
		Feature: "Design",
		Type:    MoreIsBetter,
		Scores: []ModelScore{
			{Model: "kia ceed", Score: 7},
			{Model: "bmw 1", Score: 9},
		},
	}
	assert.True(t, f.Manual())

	s, ok := f.ScoreFor("Kia Ceed 1.5 T-GDI")
	assert.True(t, ok)
	assert.Equal(t, 7.0, s)

	s, ok = f.ScoreFor("BMW 118i")
	assert.True(t, ok)
	assert.Equal(t, 9.0, s)

	_, ok = f.ScoreFor("Opel Corsa")
	assert.False(t, ok)
	assert.False(t, FeatureSpec{Feature: "Leistung"}.Manual())
}

func TestMentionedModels(t *testing.T) {
	specs := []FeatureSpec{
		{Feature: "Leistung"},
		{Feature: "Design", Scores: []ModelScore{{Model: "kia ceed"}, {Model: "opel corsa"}}},
		{Feature: "Komfort", Scores: []ModelScore{{Model: "Opel Corsa"}, {Model: "bmw 1"}}},
	}
	assert.Equal(t, []string{"kia ceed", "opel corsa", "bmw 1"}, MentionedModels(specs))
	assert.Empty(t, MentionedModels(specs[:1]))
}
