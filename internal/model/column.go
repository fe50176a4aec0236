package model

import (
	"strings"
)

// Stage is the provenance tag of a column: how far along the scoring
// pipeline its values are.
type Stage uint8

const (
	StageRaw Stage = iota
	StageFixed
	StageScaled
	StageWeighted
)

var stageNames = [...]string{"raw", "fixed", "scaled", "weighted"}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// keySep separates the base name from the stage suffixes in rendered keys.
const keySep = "|"

// ColumnKey identifies a derived column by its source column and stage.
type ColumnKey struct {
	Base  string
	Stage Stage
}

// Fixed returns the fixed-stage key for a base column.
func Fixed(base string) ColumnKey { return ColumnKey{Base: base, Stage: StageFixed} }

// Scaled returns the scaled-stage key for a base column.
func Scaled(base string) ColumnKey { return ColumnKey{Base: base, Stage: StageScaled} }

// Weighted returns the weighted-stage key for a base column.
func Weighted(base string) ColumnKey { return ColumnKey{Base: base, Stage: StageWeighted} }

// String renders the key as a suffix chain, e.g. "Tankgröße|fixed|scaled".
// Every stage up to and including the key's own stage appears once.
func (k ColumnKey) String() string {
	if k.Stage == StageRaw {
		return k.Base
	}
	var b strings.Builder
	b.WriteString(k.Base)
	for s := StageFixed; s <= k.Stage && int(s) < len(stageNames); s++ {
		b.WriteString(keySep)
		b.WriteString(stageNames[s])
	}
	return b.String()
}

// ParseColumnKey is the inverse of ColumnKey.String. Names without a
// recognised suffix chain parse as raw columns.
func ParseColumnKey(name string) ColumnKey {
	parts := strings.Split(name, keySep)
	n := len(parts) - 1
	if n == 0 || n >= len(stageNames) {
		return ColumnKey{Base: name}
	}
	for i := 1; i <= n; i++ {
		if parts[i] != stageNames[i] {
			return ColumnKey{Base: name}
		}
	}
	return ColumnKey{Base: parts[0], Stage: Stage(n)}
}
