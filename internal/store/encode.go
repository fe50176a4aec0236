package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/autoscore/internal/model"
)

// prepareRun assigns an ID and timestamp when missing and encodes the
// summary and ranking documents.
func prepareRun(run *model.Run) (summary, ranking []byte, err error) {
	if run == nil {
		return nil, nil, eris.New("store: nil run")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = model.RunStatusComplete
	}

	summary, err = json.Marshal(run.Summary)
	if err != nil {
		return nil, nil, eris.Wrap(err, "store: marshal summary")
	}
	ranking, err = json.Marshal(run.Ranking)
	if err != nil {
		return nil, nil, eris.Wrap(err, "store: marshal ranking")
	}
	return summary, ranking, nil
}

// decodeRun fills the summary and ranking of r from their JSON documents.
func decodeRun(r *model.Run, summary, ranking []byte) error {
	if len(summary) > 0 {
		if err := json.Unmarshal(summary, &r.Summary); err != nil {
			return eris.Wrap(err, "store: unmarshal summary")
		}
	}
	if len(ranking) > 0 && string(ranking) != "null" {
		if err := json.Unmarshal(ranking, &r.Ranking); err != nil {
			return eris.Wrap(err, "store: unmarshal ranking")
		}
	}
	return nil
}
