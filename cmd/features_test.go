package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/autoscore/internal/model"
	"github.com/sells-group/autoscore/internal/sheet"
)

func TestInitFeatures_Stdout(t *testing.T) {
	setTestConfig(t)
	carsPath, _ := writeInputs(t, testCars, testFeatures)

	var buf bytes.Buffer
	require.NoError(t, initFeatures(context.Background(), carsPath, "", &buf))

	out := buf.String()
	assert.Contains(t, out, "Leistung")
	assert.Contains(t, out, "more is better")
	assert.Contains(t, out, "Karosserie")
	assert.NotContains(t, out, "Kia Ceed", "identity columns are not features")
}

func TestInitFeatures_FileRoundTrip(t *testing.T) {
	setTestConfig(t)
	carsPath, _ := writeInputs(t, testCars, testFeatures)
	out := filepath.Join(t.TempDir(), "feature.xlsx")

	require.NoError(t, initFeatures(context.Background(), carsPath, out, &bytes.Buffer{}))

	specs, err := sheet.LoadFeatureSpecs(context.Background(), out, sheet.ReadOptions{Sheet: "Spec"})
	require.NoError(t, err)
	byName := make(map[string]model.FeatureType, len(specs))
	for _, s := range specs {
		byName[s.Feature] = s.Type
	}
	assert.Equal(t, model.MoreIsBetter, byName["Leistung"])
	assert.Equal(t, model.Category, byName["Karosserie"])
	assert.Equal(t, model.Skip, byName["Motorart"], "single-valued columns are skipped")
}

func TestCheckFeatures(t *testing.T) {
	setTestConfig(t)
	carsPath, featuresPath := writeInputs(t, testCars, testFeatures)

	var buf bytes.Buffer
	require.NoError(t, checkFeatures(context.Background(), carsPath, featuresPath, &buf))
	assert.Contains(t, buf.String(), "3 features ok")

	carsPath, featuresPath = writeInputs(t, testCars, testFeatures+"Range,more is better,\n")
	buf.Reset()
	err := checkFeatures(context.Background(), carsPath, featuresPath, &buf)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"Range"`)

	cfg.Prep.Enabled = true
	cfg.Prep.CostToOwn = true
	buf.Reset()
	assert.NoError(t, checkFeatures(context.Background(), carsPath, featuresPath, &buf), "derived cost columns resolve with preparation on")
}
