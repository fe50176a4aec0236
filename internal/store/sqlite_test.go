package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/autoscore/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleRun(created time.Time) *model.Run {
	return &model.Run{
		Status: model.RunStatusComplete,
		Summary: model.RunSummary{
			CarsPath:     "adac.csv",
			FeaturesPath: "feature.csv",
			Vehicles:     2,
			Features:     []string{"Leistung", "Grundpreis"},
		},
		Ranking: []model.RankedVehicle{
			{Rank: 1, ID: 4, Name: "Kia Ceed", TotalScore: model.Number(12.5), EuroPerScore: model.Number(1799.2), Components: map[string]float64{"Leistung": 10}},
			{Rank: 2, ID: 7, Name: "Opel Corsa", TotalScore: model.Missing(), EuroPerScore: model.Missing()},
		},
		CreatedAt: created,
	}
}

func TestSQLite_SaveAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run := sampleRun(time.Time{})
	require.NoError(t, st.SaveRun(ctx, run))
	assert.NotEmpty(t, run.ID, "an ID is assigned")
	assert.False(t, run.CreatedAt.IsZero())

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, run.Summary, got.Summary)
	require.Len(t, got.Ranking, 2)
	assert.Equal(t, run.Ranking[0], got.Ranking[0])
	assert.True(t, got.Ranking[1].TotalScore.IsMissing())
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestSQLite_SaveRun_DuplicateID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run := sampleRun(time.Now().UTC())
	run.ID = "fixed-id"
	require.NoError(t, st.SaveRun(ctx, run))
	assert.Error(t, st.SaveRun(ctx, run))
}

func TestSQLite_SaveRun_Nil(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.Error(t, st.SaveRun(context.Background(), nil))
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := range 3 {
		run := sampleRun(base.Add(time.Duration(i) * time.Hour))
		run.Summary.Vehicles = i + 1
		require.NoError(t, st.SaveRun(ctx, run))
	}
	failed := sampleRun(base.Add(-time.Hour))
	failed.Status = model.RunStatusFailed
	failed.Error = "scorer: unknown feature"
	failed.Ranking = nil
	require.NoError(t, st.SaveRun(ctx, failed))

	runs, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 4)
	assert.Equal(t, 3, runs[0].Summary.Vehicles, "newest first")
	assert.Nil(t, runs[0].Ranking, "listing does not load rankings")

	runs, err = st.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "scorer: unknown feature", runs[0].Error)

	runs, err = st.ListRuns(ctx, RunFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[0].Summary.Vehicles)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Migrate(context.Background()))
}
