package model

import (
	"sort"

	"github.com/rotisserie/eris"
)

// Well-known identity columns of the vehicle table.
const (
	ColumnID   = "id"
	ColumnName = "name"
)

// Record is one vehicle trim. Raw values are never mutated by the
// pipeline; every stage adds derived values instead.
type Record struct {
	ID           int                 `json:"id"`
	Name         string              `json:"name"`
	Index        int                 `json:"index"`
	Raw          map[string]Value    `json:"raw"`
	Derived      map[ColumnKey]Value `json:"-"`
	TotalScore   Value               `json:"total_score"`
	EuroPerScore Value               `json:"euro_per_score"`
}

// Get returns the raw value for a raw key, or the derived value otherwise.
func (r *Record) Get(key ColumnKey) Value {
	if key.Stage == StageRaw {
		return r.Raw[key.Base]
	}
	return r.Derived[key]
}

// Dataset is the in-memory vehicle table with an indexed view of its
// derived columns.
type Dataset struct {
	Columns []string
	Records []*Record

	derived []ColumnKey
	byKey   map[ColumnKey]struct{}
	raw     map[string]struct{}
}

// NewDataset creates a Dataset over the given raw column names and records.
// Record indices are reassigned to their position.
func NewDataset(columns []string, records []*Record) *Dataset {
	d := &Dataset{
		Columns: columns,
		Records: records,
		byKey:   make(map[ColumnKey]struct{}),
		raw:     make(map[string]struct{}, len(columns)),
	}
	for _, c := range columns {
		d.raw[c] = struct{}{}
	}
	for i, r := range records {
		r.Index = i
		if r.Raw == nil {
			r.Raw = make(map[string]Value)
		}
		if r.Derived == nil {
			r.Derived = make(map[ColumnKey]Value)
		}
	}
	return d
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Records) }

// HasRaw reports whether the raw column exists.
func (d *Dataset) HasRaw(name string) bool {
	_, ok := d.raw[name]
	return ok
}

// Has reports whether a column with the given key exists.
func (d *Dataset) Has(key ColumnKey) bool {
	if key.Stage == StageRaw {
		return d.HasRaw(key.Base)
	}
	_, ok := d.byKey[key]
	return ok
}

// Lookup returns the most derived existing column for base whose stage is
// at most maxStage. It falls back stage by stage down to the raw column.
func (d *Dataset) Lookup(base string, maxStage Stage) (ColumnKey, bool) {
	for s := int(maxStage); s >= int(StageRaw); s-- {
		key := ColumnKey{Base: base, Stage: Stage(s)}
		if d.Has(key) {
			return key, true
		}
	}
	return ColumnKey{}, false
}

// Column returns the values of a column in record order.
func (d *Dataset) Column(key ColumnKey) []Value {
	out := make([]Value, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Get(key)
	}
	return out
}

// SetColumn adds a derived column. Values must align with Records.
// Derived columns are write-once.
func (d *Dataset) SetColumn(key ColumnKey, values []Value) error {
	if key.Stage == StageRaw {
		return eris.Errorf("model: cannot overwrite raw column %q", key.Base)
	}
	if d.Has(key) {
		return eris.Errorf("model: column %q already exists", key.String())
	}
	if len(values) != len(d.Records) {
		return eris.Errorf("model: column %q has %d values, dataset has %d records",
			key.String(), len(values), len(d.Records))
	}
	for i, r := range d.Records {
		r.Derived[key] = values[i]
	}
	d.derived = append(d.derived, key)
	d.byKey[key] = struct{}{}
	return nil
}

// DerivedKeys returns derived column keys in creation order.
func (d *Dataset) DerivedKeys() []ColumnKey {
	return append([]ColumnKey(nil), d.derived...)
}

// WeightedKeys returns every weighted column in creation order.
func (d *Dataset) WeightedKeys() []ColumnKey {
	var keys []ColumnKey
	for _, k := range d.derived {
		if k.Stage == StageWeighted {
			keys = append(keys, k)
		}
	}
	return keys
}

// DropDuplicateIDs removes records whose id was already seen, keeping the
// first occurrence, and returns the number of dropped records.
func (d *Dataset) DropDuplicateIDs() int {
	seen := make(map[int]struct{}, len(d.Records))
	kept := d.Records[:0]
	dropped := 0
	for _, r := range d.Records {
		if _, ok := seen[r.ID]; ok {
			dropped++
			continue
		}
		seen[r.ID] = struct{}{}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(d.Records); i++ {
		d.Records[i] = nil
	}
	d.Records = kept
	d.reindex()
	return dropped
}

// Filter keeps the records for which keep returns true.
func (d *Dataset) Filter(keep func(*Record) bool) int {
	kept := make([]*Record, 0, len(d.Records))
	for _, r := range d.Records {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	removed := len(d.Records) - len(kept)
	d.Records = kept
	d.reindex()
	return removed
}

// SortByScore stable-sorts records by TotalScore descending. Records
// without a score sort last.
func (d *Dataset) SortByScore() {
	sort.SliceStable(d.Records, func(i, j int) bool {
		a, aok := d.Records[i].TotalScore.Float()
		b, bok := d.Records[j].TotalScore.Float()
		if aok != bok {
			return aok
		}
		return a > b
	})
}

// Clone returns a deep copy so callers can run the pipeline without
// touching the loaded data.
func (d *Dataset) Clone() *Dataset {
	records := make([]*Record, len(d.Records))
	for i, r := range d.Records {
		c := *r
		c.Raw = make(map[string]Value, len(r.Raw))
		for k, v := range r.Raw {
			c.Raw[k] = v
		}
		c.Derived = make(map[ColumnKey]Value, len(r.Derived))
		for k, v := range r.Derived {
			c.Derived[k] = v
		}
		records[i] = &c
	}
	out := NewDataset(append([]string(nil), d.Columns...), records)
	for _, k := range d.derived {
		out.derived = append(out.derived, k)
		out.byKey[k] = struct{}{}
	}
	return out
}

func (d *Dataset) reindex() {
	for i, r := range d.Records {
		r.Index = i
	}
}
