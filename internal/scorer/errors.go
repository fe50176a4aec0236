package scorer

import (
	"fmt"
	"strings"
)

// UnresolvedValueError reports a value that is neither numeric nor covered
// by a category mapping. The run aborts on the first one.
type UnresolvedValueError struct {
	Column   string
	RecordID int
	Value    string
}

func (e *UnresolvedValueError) Error() string {
	if e.RecordID != 0 {
		return fmt.Sprintf("scorer: column %q: cannot resolve value %q (id %d)", e.Column, e.Value, e.RecordID)
	}
	return fmt.Sprintf("scorer: column %q: cannot resolve value %q", e.Column, e.Value)
}

// UnknownFeatureError reports a feature whose column cannot be found at any
// derivation stage.
type UnknownFeatureError struct {
	Feature string
	Tried   []string
}

func (e *UnknownFeatureError) Error() string {
	return fmt.Sprintf("scorer: feature %q: no matching column (tried %s)", e.Feature, strings.Join(e.Tried, ", "))
}

// DegenerateRangeWarning records a column (or partition of one) whose
// present values are all equal. Every row gets the full scaled value.
type DegenerateRangeWarning struct {
	Column    string  `json:"column"`
	Partition string  `json:"partition,omitempty"`
	Value     float64 `json:"value"`
}

func (w DegenerateRangeWarning) String() string {
	if w.Partition != "" {
		return fmt.Sprintf("%s[%s]=%g", w.Column, w.Partition, w.Value)
	}
	return fmt.Sprintf("%s=%g", w.Column, w.Value)
}
