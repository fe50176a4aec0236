package sheet

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a header row plus data rows, every row padded to the header
// width.
type Table struct {
	Header []string
	Rows   [][]string
}

// Index returns the position of a header column or -1.
func (t *Table) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// ReadOptions configures ReadTable.
type ReadOptions struct {
	Sheet     string // worksheet name for XLSX files; first sheet if empty
	Charset   string // CSV only
	Delimiter rune   // CSV only
}

// IsXLSX reports whether path names a workbook.
func IsXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// ReadTable reads a CSV or XLSX file, chosen by extension. The first row
// is the header; empty trailing rows are dropped. A data row with content
// past the last header column is an error.
func ReadTable(ctx context.Context, path string, opts ReadOptions) (*Table, error) {
	var (
		rows [][]string
		err  error
	)
	if IsXLSX(path) {
		rows, err = ReadXLSX(path, XLSXOptions{SheetName: opts.Sheet})
	} else {
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "sheet: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		rows, err = ReadCSV(ctx, f, CSVOptions{Delimiter: opts.Delimiter, Charset: opts.Charset, LazyQuotes: true})
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sheet: read %s", path)
	}

	for len(rows) > 0 && blank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("sheet: %s has no header row", path)
	}

	t := &Table{Header: make([]string, len(rows[0]))}
	for i, h := range rows[0] {
		t.Header[i] = strings.TrimSpace(h)
	}
	for i, r := range rows[1:] {
		if blank(r) {
			continue
		}
		if len(r) > len(t.Header) && !blank(r[len(t.Header):]) {
			return nil, eris.Errorf("sheet: %s line %d has %d cells, header has %d", path, i+2, len(r), len(t.Header))
		}
		row := make([]string, len(t.Header))
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteTable writes t as XLSX or CSV, chosen by the path extension.
func WriteTable(path string, t *Table, sheetName string) error {
	if IsXLSX(path) {
		return WriteXLSX(path, sheetName, t)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "sheet: create %s", path)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrapf(f.Close(), "sheet: close %s", path)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// plainNumber parses cells written in canonical float notation.
func plainNumber(s string) (float64, bool) {
	if s == "" || strings.TrimSpace(s) != s {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
