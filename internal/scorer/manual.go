package scorer

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/autoscore/internal/model"
)

// ManualScores adds <feature>|fixed from the feature's per-model scores. A
// record takes the score of the first model its name matches; records of
// unnamed models stay missing and get no points. It returns the number of
// matched records.
func ManualScores(ds *model.Dataset, spec model.FeatureSpec) (int, error) {
	if !spec.Manual() {
		return 0, eris.Errorf("scorer: feature %q has no model scores", spec.Feature)
	}
	values := make([]model.Value, ds.Len())
	matched := 0
	for i, r := range ds.Records {
		if s, ok := spec.ScoreFor(r.Name); ok {
			values[i] = model.Number(s)
			matched++
		}
	}
	if err := ds.SetColumn(model.Fixed(spec.Feature), values); err != nil {
		return 0, eris.Wrapf(err, "scorer: manual scores %q", spec.Feature)
	}
	if matched == 0 {
		zap.L().Warn("scorer: no vehicle matches any scored model",
			zap.String("feature", spec.Feature),
			zap.Int("models", len(spec.Scores)),
		)
	}
	return matched, nil
}
