package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/autoscore/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:     "abc12345-6789-0000-0000-000000000000",
			Status: model.RunStatusComplete,
			Summary: model.RunSummary{
				CarsPath: "adac.csv",
				Vehicles: 412,
				Features: []string{"Leistung", "Grundpreis"},
			},
			CreatedAt: now,
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Status:    model.RunStatusFailed,
			Summary:   model.RunSummary{CarsPath: "adac_2024.xlsx"},
			Error:     `scorer: feature "Farbe": no matching column (tried Farbe, Farbe|fixed)`,
			CreatedAt: now.Add(-time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "412")
	assert.Contains(t, output, "2026-06-15 10:30")
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "adac_2024.xlsx")
	assert.Contains(t, output, "...", "long errors are truncated")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
}
