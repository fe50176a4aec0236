package prep

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/autoscore/internal/model"
)

// SelectModels keeps the records whose name matches any query and returns
// the number of removed records.
func SelectModels(ds *model.Dataset, queries []string) (int, error) {
	for _, q := range queries {
		if err := model.ValidateModelQuery(q); err != nil {
			return 0, eris.Wrap(err, "prep: select models")
		}
	}
	return ds.Filter(func(r *model.Record) bool {
		for _, q := range queries {
			if model.MatchesModel(r.Name, q) {
				return true
			}
		}
		return false
	}), nil
}
