package sheet

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/autoscore/internal/model"
	"github.com/sells-group/autoscore/internal/scorer"
)

// CellValue converts a cell to a model value. Empty cells are missing.
// Cells in canonical float notation become numbers unless the locale
// parser reads them differently ("1.500" is 1500 in a German table), in
// which case they stay text for the normalizer.
func CellValue(s string) model.Value {
	if strings.TrimSpace(s) == "" {
		return model.Missing()
	}
	if f, ok := plainNumber(s); ok {
		if g, ok := scorer.ParseNumber(s); ok && g == f {
			return model.Number(f)
		}
	}
	return model.Text(s)
}

// ToDataset converts a vehicle table. The id and name columns are
// required; ids must be integers. Every other column becomes a raw
// attribute.
func ToDataset(t *Table) (*model.Dataset, error) {
	idCol, nameCol := t.Index(model.ColumnID), t.Index(model.ColumnName)
	if idCol < 0 || nameCol < 0 {
		return nil, eris.Errorf("sheet: vehicle table needs %q and %q columns", model.ColumnID, model.ColumnName)
	}

	seen := make(map[string]struct{}, len(t.Header))
	for _, h := range t.Header {
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			return nil, eris.Errorf("sheet: duplicate column %q", h)
		}
		seen[h] = struct{}{}
	}

	records := make([]*model.Record, 0, len(t.Rows))
	for i, row := range t.Rows {
		id, err := parseID(row[idCol])
		if err != nil {
			return nil, eris.Wrapf(err, "sheet: row %d", i+2)
		}
		r := &model.Record{
			ID:   id,
			Name: strings.TrimSpace(row[nameCol]),
			Raw:  make(map[string]model.Value, len(t.Header)),
		}
		for j, h := range t.Header {
			if h == "" {
				continue
			}
			if v := CellValue(row[j]); !v.IsMissing() {
				r.Raw[h] = v
			}
		}
		records = append(records, r)
	}

	var columns []string
	for _, h := range t.Header {
		if h != "" {
			columns = append(columns, h)
		}
	}
	return model.NewDataset(columns, records), nil
}

func parseID(s string) (int, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, eris.Errorf("invalid id %q", s)
	}
	return int(f), nil
}

// LoadDataset reads and converts a vehicle table.
func LoadDataset(ctx context.Context, path string, opts ReadOptions) (*model.Dataset, error) {
	t, err := ReadTable(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return ToDataset(t)
}
