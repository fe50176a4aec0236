package scorer

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/autoscore/internal/config"
	"github.com/sells-group/autoscore/internal/model"
)

// Partition labels for stratified scaling.
const (
	PartitionElectric   = "electric"
	PartitionCombustion = "combustion"
)

// Scale min-max normalizes values into [0,1]. MoreIsBetter maps the minimum
// to 0; any other direction is reversed so the minimum maps to 1. Missing
// values stay missing and are ignored for min and max. When every present
// value is equal the range is degenerate and each present value gets 1.
func Scale(values []model.Value, dir model.FeatureType) ([]model.Value, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	present := 0
	for _, v := range values {
		f, ok := v.Float()
		if !ok {
			continue
		}
		present++
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}

	out := make([]model.Value, len(values))
	if present == 0 {
		return out, false
	}
	degenerate := hi == lo
	for i, v := range values {
		f, ok := v.Float()
		if !ok {
			continue
		}
		if degenerate {
			out[i] = model.Number(1)
			continue
		}
		s := (f - lo) / (hi - lo)
		if dir != model.MoreIsBetter {
			s = 1 - s
		}
		out[i] = model.Number(s)
	}
	return out, degenerate
}

// ScaleStratified scales each partition independently. partitions[i] is
// the partition of values[i]; an empty label leaves the row unpartitioned
// and its result missing, keeping index alignment with the input. The
// labels of degenerate partitions are returned in sorted order.
func ScaleStratified(values []model.Value, partitions []string, dir model.FeatureType) ([]model.Value, []string) {
	groups := make(map[string][]int)
	for i, p := range partitions {
		if p == "" {
			continue
		}
		groups[p] = append(groups[p], i)
	}

	labels := make([]string, 0, len(groups))
	for p := range groups {
		labels = append(labels, p)
	}
	sort.Strings(labels)

	out := make([]model.Value, len(values))
	var degenerate []string
	for _, p := range labels {
		idx := groups[p]
		sub := make([]model.Value, len(idx))
		for j, i := range idx {
			sub[j] = values[i]
		}
		scaled, deg := Scale(sub, dir)
		if deg {
			degenerate = append(degenerate, p)
		}
		for j, i := range idx {
			out[i] = scaled[j]
		}
	}
	return out, degenerate
}

// Scaler writes <column>|fixed|scaled columns, stratifying the configured
// consumption columns by powertrain.
type Scaler struct {
	cfg        config.ScoreConfig
	stratified map[string]struct{}
}

// NewScaler creates a Scaler for the given scoring policy.
func NewScaler(cfg config.ScoreConfig) *Scaler {
	s := &Scaler{cfg: cfg, stratified: make(map[string]struct{}, len(cfg.StratifiedColumns))}
	for _, c := range cfg.StratifiedColumns {
		s.stratified[c] = struct{}{}
	}
	return s
}

// Stratified reports whether the column is scaled per partition.
func (s *Scaler) Stratified(column string) bool {
	_, ok := s.stratified[column]
	return ok
}

// Partition returns the stratum of a record: electric or combustion,
// optionally split by body style. Records without an engine type (or body
// style, when splitting by it) are unpartitioned.
func (s *Scaler) Partition(r *model.Record) string {
	engine, ok := r.Raw[s.cfg.EngineColumn].Str()
	if !ok {
		return ""
	}
	p := PartitionCombustion
	if SameToken(engine, s.cfg.ElectricLabel) {
		p = PartitionElectric
	}
	if !s.cfg.StratifyByBody {
		return p
	}
	body, ok := r.Raw[s.cfg.BodyColumn].Str()
	if !ok {
		return ""
	}
	return p + "/" + body
}

// ScaleColumn adds <column>|fixed|scaled from the fixed column. It is a
// no-op when the scaled column exists. Degenerate ranges are logged and
// returned as warnings.
func (s *Scaler) ScaleColumn(ds *model.Dataset, column string, dir model.FeatureType) ([]DegenerateRangeWarning, error) {
	if ds.Has(model.Scaled(column)) {
		return nil, nil
	}
	fixed := model.Fixed(column)
	if !ds.Has(fixed) {
		return nil, eris.Errorf("scorer: scale: column %q has not been normalized", column)
	}

	values := ds.Column(fixed)
	for i, v := range values {
		if txt, ok := v.Str(); ok {
			return nil, &UnresolvedValueError{Column: column, RecordID: ds.Records[i].ID, Value: txt}
		}
	}

	var (
		scaled   []model.Value
		warnings []DegenerateRangeWarning
	)
	if s.Stratified(column) {
		partitions := make([]string, len(ds.Records))
		unpartitioned := 0
		for i, r := range ds.Records {
			partitions[i] = s.Partition(r)
			if partitions[i] == "" && !values[i].IsMissing() {
				unpartitioned++
			}
		}
		var degenerate []string
		scaled, degenerate = ScaleStratified(values, partitions, dir)
		for _, p := range degenerate {
			warnings = append(warnings, DegenerateRangeWarning{Column: column, Partition: p, Value: firstIn(values, partitions, p)})
		}
		if unpartitioned > 0 {
			zap.L().Warn("scorer: rows outside every partition left unscaled",
				zap.String("column", column),
				zap.Int("rows", unpartitioned),
			)
		}
	} else {
		var degenerate bool
		scaled, degenerate = Scale(values, dir)
		if degenerate {
			warnings = append(warnings, DegenerateRangeWarning{Column: column, Value: firstIn(values, nil, "")})
		}
	}

	for _, w := range warnings {
		zap.L().Warn("scorer: degenerate range, every row gets full weight",
			zap.String("column", w.Column),
			zap.String("partition", w.Partition),
			zap.Float64("value", w.Value),
		)
	}

	if err := ds.SetColumn(model.Scaled(column), scaled); err != nil {
		return nil, eris.Wrapf(err, "scorer: scale %q", column)
	}
	return warnings, nil
}

// firstIn returns the first present value, restricted to a partition when
// partitions is non-nil.
func firstIn(values []model.Value, partitions []string, p string) float64 {
	for i, v := range values {
		if partitions != nil && partitions[i] != p {
			continue
		}
		if f, ok := v.Float(); ok {
			return f
		}
	}
	return 0
}
