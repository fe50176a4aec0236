package scorer

import (
	"go.uber.org/zap"

	"github.com/sells-group/autoscore/internal/model"
)

// Aggregate sums every weighted column into TotalScore, derives
// EuroPerScore from the fixed price column and sorts the records by score,
// best first. Missing weighted values are skipped; a record without any
// weighted value has no score. EuroPerScore is missing when the price is
// missing or the score is not positive.
func Aggregate(ds *model.Dataset, priceColumn string) {
	keys := ds.WeightedKeys()
	priceKey, hasPrice := ds.Lookup(priceColumn, model.StageFixed)

	nonPositive := 0
	for _, r := range ds.Records {
		var (
			sum     float64
			present bool
		)
		for _, k := range keys {
			if f, ok := r.Derived[k].Float(); ok {
				sum += f
				present = true
			}
		}
		r.TotalScore = model.Missing()
		r.EuroPerScore = model.Missing()
		if !present {
			continue
		}
		r.TotalScore = model.Number(sum)
		if sum <= 0 {
			nonPositive++
			continue
		}
		if !hasPrice {
			continue
		}
		if price, ok := NormalizeValue(r.Get(priceKey), false).Float(); ok {
			r.EuroPerScore = model.Number(price / sum)
		}
	}

	if nonPositive > 0 {
		zap.L().Warn("scorer: records with non-positive total score",
			zap.Int("records", nonPositive),
		)
	}

	ds.SortByScore()
}
