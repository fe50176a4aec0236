package sheet

import (
	"math"
	"strconv"

	"github.com/sells-group/autoscore/internal/model"
)

// Result column headers.
const (
	HeaderTotalScore   = "TotalScore"
	HeaderEuroPerScore = "EuroPerScore"
)

// ResultTable renders a scored dataset: id, name, every derived column by
// its key string, TotalScore and EuroPerScore, in record order. limit > 0
// keeps only the first limit records.
func ResultTable(ds *model.Dataset, limit int) *Table {
	keys := ds.DerivedKeys()
	t := &Table{Header: make([]string, 0, len(keys)+4)}
	t.Header = append(t.Header, model.ColumnID, model.ColumnName)
	for _, k := range keys {
		t.Header = append(t.Header, k.String())
	}
	t.Header = append(t.Header, HeaderTotalScore, HeaderEuroPerScore)

	for i, r := range ds.Records {
		if limit > 0 && i >= limit {
			break
		}
		row := make([]string, 0, len(t.Header))
		row = append(row, strconv.Itoa(r.ID), r.Name)
		for _, k := range keys {
			row = append(row, formatValue(r.Derived[k]))
		}
		row = append(row, formatValue(r.TotalScore), formatValue(r.EuroPerScore))
		t.Rows = append(t.Rows, row)
	}
	return t
}

// formatValue rounds numbers to four decimals for output.
func formatValue(v model.Value) string {
	if f, ok := v.Float(); ok {
		return strconv.FormatFloat(math.Round(f*1e4)/1e4, 'f', -1, 64)
	}
	return v.String()
}
