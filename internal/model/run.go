package model

import "time"

// RunStatus represents the outcome of a scoring run.
type RunStatus string

const (
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RankedVehicle is one row of a persisted ranking.
type RankedVehicle struct {
	Rank         int                `json:"rank"`
	ID           int                `json:"id"`
	Name         string             `json:"name"`
	TotalScore   Value              `json:"total_score"`
	EuroPerScore Value              `json:"euro_per_score"`
	Components   map[string]float64 `json:"components,omitempty"`
}

// RunSummary describes the inputs and aggregate outcome of a run.
type RunSummary struct {
	CarsPath       string   `json:"cars_path"`
	FeaturesPath   string   `json:"features_path"`
	Vehicles       int      `json:"vehicles"`
	Duplicates     int      `json:"duplicates"`
	Features       []string `json:"features"`
	DegenerateCols []string `json:"degenerate_columns,omitempty"`
}

// Run is a persisted scoring run.
type Run struct {
	ID        string          `json:"id"`
	Status    RunStatus       `json:"status"`
	Summary   RunSummary      `json:"summary"`
	Ranking   []RankedVehicle `json:"ranking,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Ranking converts a scored dataset into ranking rows, limited to n rows
// when n > 0. Component scores carry every present weighted value.
func Ranking(d *Dataset, n int) []RankedVehicle {
	weighted := d.WeightedKeys()
	out := make([]RankedVehicle, 0, len(d.Records))
	for i, r := range d.Records {
		if n > 0 && i >= n {
			break
		}
		rv := RankedVehicle{
			Rank:         i + 1,
			ID:           r.ID,
			Name:         r.Name,
			TotalScore:   r.TotalScore,
			EuroPerScore: r.EuroPerScore,
		}
		for _, k := range weighted {
			if f, ok := r.Derived[k].Float(); ok {
				if rv.Components == nil {
					rv.Components = make(map[string]float64, len(weighted))
				}
				rv.Components[k.Base] = f
			}
		}
		out = append(out, rv)
	}
	return out
}
