package prep

import (
	"github.com/sells-group/autoscore/internal/model"
)

// accelerationLimit is the largest plausible 0-100 km/h time in seconds.
// Larger values lost their decimal separator upstream.
const accelerationLimit = 100

// FixBadData repairs acceleration values that lost their decimal
// separator (e.g. 105 for 10.5 s). It returns the number of repaired rows.
func FixBadData(values []model.Value) int {
	n := 0
	for i, v := range values {
		if f, ok := v.Float(); ok && f > accelerationLimit {
			values[i] = model.Number(f / 10)
			n++
		}
	}
	return n
}

// neverFilled are columns whose absence is meaningful: combustion cars
// have no battery and electric cars no tank.
var neverFilled = map[string]struct{}{
	ColumnBattery: {},
	ColumnTank:    {},
}

// FillMissingByGroupMean fills missing values of each column with the mean
// of the present values sharing the record's group, trying each grouping
// column in turn (series first, then make). Later groupings see values
// filled by earlier ones. Records without a group label are left alone.
// It returns the number of filled cells.
func FillMissingByGroupMean(ds *model.Dataset, columns map[string][]model.Value, groupBy []string) int {
	filled := 0
	for _, group := range groupBy {
		if !ds.HasRaw(group) {
			continue
		}
		labels := make([]string, len(ds.Records))
		for i, r := range ds.Records {
			labels[i], _ = r.Raw[group].Str()
		}

		for col, values := range columns {
			if _, skip := neverFilled[col]; skip {
				continue
			}
			filled += fillColumn(values, labels)
		}
	}
	return filled
}

func fillColumn(values []model.Value, labels []string) int {
	type acc struct {
		sum float64
		n   int
	}
	means := make(map[string]*acc)
	for i, v := range values {
		f, ok := v.Float()
		if !ok || labels[i] == "" {
			continue
		}
		a, ok := means[labels[i]]
		if !ok {
			a = &acc{}
			means[labels[i]] = a
		}
		a.sum += f
		a.n++
	}

	filled := 0
	for i, v := range values {
		if !v.IsMissing() || labels[i] == "" {
			continue
		}
		if a, ok := means[labels[i]]; ok && a.n > 0 {
			values[i] = model.Number(a.sum / float64(a.n))
			filled++
		}
	}
	return filled
}
