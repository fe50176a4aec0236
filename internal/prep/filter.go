package prep

import (
	"go.uber.org/zap"

	"github.com/sells-group/autoscore/internal/model"
	"github.com/sells-group/autoscore/internal/scorer"
)

// Filter drops trims that fail the configured criteria: too few seats,
// an excluded transmission or body type, or a missing value in a required
// column. It returns the number of removed records.
func (p *Preparer) Filter(ds *model.Dataset) int {
	var required []string
	for _, col := range p.cfg.RequiredColumns {
		if !ds.HasRaw(col) {
			zap.L().Warn("prep: required column not in dataset", zap.String("column", col))
			continue
		}
		required = append(required, col)
	}

	return ds.Filter(func(r *model.Record) bool {
		for _, col := range required {
			if r.Raw[col].IsMissing() {
				return false
			}
		}
		if p.cfg.MinSeats > 0 && ds.HasRaw(p.cfg.SeatsColumn) {
			seats, ok := scorer.NormalizeValue(r.Raw[p.cfg.SeatsColumn], false).Float()
			if !ok || seats < p.cfg.MinSeats {
				return false
			}
		}
		if excluded(r.Raw[p.cfg.TransmissionColumn], p.cfg.ExcludeTransmissions) {
			return false
		}
		return !excluded(r.Raw[p.score.BodyColumn], p.cfg.ExcludeBodyTypes)
	})
}

func excluded(v model.Value, labels []string) bool {
	s, ok := v.Str()
	if !ok {
		return false
	}
	for _, l := range labels {
		if scorer.SameToken(s, l) {
			return true
		}
	}
	return false
}
