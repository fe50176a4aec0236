package scorer

import (
	"errors"
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/autoscore/internal/model"
)

// Mapping is the rank table of one categorical column. Lower ranks are
// better.
type Mapping struct {
	Column  string
	Curated bool
	ranks   map[string]float64
	folded  map[string]float64
}

func newMapping(column string, curated bool) *Mapping {
	return &Mapping{
		Column:  column,
		Curated: curated,
		ranks:   make(map[string]float64),
		folded:  make(map[string]float64),
	}
}

func (m *Mapping) set(label string, rank float64) {
	if _, ok := m.ranks[label]; ok {
		return
	}
	m.ranks[label] = rank
	if _, ok := m.folded[foldToken(label)]; !ok {
		m.folded[foldToken(label)] = rank
	}
}

// Rank returns the rank of a label. Exact matches win over case-folded ones.
func (m *Mapping) Rank(label string) (float64, bool) {
	if r, ok := m.ranks[label]; ok {
		return r, true
	}
	r, ok := m.folded[foldToken(label)]
	return r, ok
}

// Ranks returns a copy of the label to rank table.
func (m *Mapping) Ranks() map[string]float64 {
	out := make(map[string]float64, len(m.ranks))
	for k, v := range m.ranks {
		out[k] = v
	}
	return out
}

// Worst returns the highest rank in the mapping.
func (m *Mapping) Worst() float64 {
	var worst float64
	for _, r := range m.ranks {
		if r > worst {
			worst = r
		}
	}
	return worst
}

// CategoryMapper converts categorical columns into numeric ranks.
type CategoryMapper struct {
	orderings    *Orderings
	placeholders tokenSet
}

// NewCategoryMapper creates a mapper over curated orderings and the
// placeholder tokens that mean "unknown / not available".
func NewCategoryMapper(orderings *Orderings, placeholders []string) *CategoryMapper {
	return &CategoryMapper{orderings: orderings, placeholders: newTokenSet(placeholders)}
}

// BuildMapping builds the rank table for column from its observed labels.
// Curated columns rank labels 1..N by position, with Serie pinned to 0.
// Every placeholder, listed or not, shares the rank one past the worst
// listed label. Other columns are treated as equipment costs: numbers map
// to themselves, Serie to 0, Paket to the mean cost and placeholders one
// step beyond the worst tier.
func (c *CategoryMapper) BuildMapping(column string, observed []string) (*Mapping, error) {
	if c.orderings.Has(column) {
		return c.curatedMapping(column, observed), nil
	}
	return c.costMapping(column, observed)
}

func (c *CategoryMapper) curatedMapping(column string, observed []string) *Mapping {
	m := newMapping(column, true)
	labels := c.orderings.Expand(column, observed)

	var (
		placeholders []string
		worst        float64
	)
	for i, label := range labels {
		switch {
		case SameToken(label, TokenSerie):
			m.set(label, 0)
		case c.placeholders.contains(label):
			placeholders = append(placeholders, label)
		default:
			m.set(label, float64(i+1))
			worst = math.Max(worst, float64(i+1))
		}
	}
	for _, label := range observed {
		if _, ok := m.Rank(label); !ok && c.placeholders.contains(label) {
			placeholders = append(placeholders, label)
		}
	}
	for _, label := range placeholders {
		m.set(label, worst+1)
	}
	return m
}

func (c *CategoryMapper) costMapping(column string, observed []string) (*Mapping, error) {
	m := newMapping(column, false)

	var (
		placeholders []string
		pakets       []string
		costs        = make(map[float64]struct{})
	)
	for _, label := range observed {
		switch {
		case SameToken(label, TokenSerie):
			m.set(label, 0)
		case SameToken(label, TokenPaket):
			pakets = append(pakets, label)
		case c.placeholders.contains(label):
			placeholders = append(placeholders, label)
		default:
			f, ok := ParseNumber(label)
			if !ok {
				return nil, &UnresolvedValueError{Column: column, Value: label}
			}
			m.set(label, f)
			costs[f] = struct{}{}
		}
	}

	paket, worst := costTiers(costs, len(pakets) > 0)
	for _, label := range pakets {
		m.set(label, paket)
	}
	for _, label := range placeholders {
		m.set(label, worst)
	}
	return m, nil
}

// costTiers derives the Paket and placeholder ranks from the distinct
// observed costs. The placeholder tier extrapolates one step past the most
// expensive tier, counting the Paket tier only when withPaket is set; with
// fewer than three tiers it doubles the maximum. Without any costs the
// tiers fall back to 1 and 2.
func costTiers(costs map[float64]struct{}, withPaket bool) (paket, worst float64) {
	if len(costs) == 0 {
		return 1, 2
	}
	var sum float64
	tiers := make([]float64, 0, len(costs)+1)
	for f := range costs {
		sum += f
		tiers = append(tiers, f)
	}
	paket = sum / float64(len(costs))
	if _, ok := costs[paket]; withPaket && !ok {
		tiers = append(tiers, paket)
	}
	sort.Float64s(tiers)

	top := tiers[len(tiers)-1]
	if len(tiers) >= 3 {
		return paket, top + (top - tiers[len(tiers)-2])
	}
	return paket, 2 * top
}

// Apply maps every value of column into <column>|fixed. Numbers are looked
// up by their rendered form. An observed label without a rank is an
// UnresolvedValueError. Missing cells stay missing.
func (c *CategoryMapper) Apply(ds *model.Dataset, column string) (*Mapping, error) {
	if !ds.HasRaw(column) {
		return nil, eris.Errorf("scorer: category: column %q not in dataset", column)
	}

	raw := ds.Column(model.ColumnKey{Base: column})
	var observed []string
	seen := make(map[string]struct{})
	for _, v := range raw {
		if v.IsMissing() {
			continue
		}
		label := textOf(v)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		observed = append(observed, label)
	}

	m, err := c.BuildMapping(column, observed)
	if err != nil {
		var unresolved *UnresolvedValueError
		if errors.As(err, &unresolved) {
			unresolved.RecordID = firstRecordWith(ds, column, unresolved.Value)
		}
		return nil, err
	}

	values := make([]model.Value, len(raw))
	for i, v := range raw {
		if v.IsMissing() {
			continue
		}
		label := textOf(v)
		rank, ok := m.Rank(label)
		if !ok {
			return nil, &UnresolvedValueError{Column: column, RecordID: ds.Records[i].ID, Value: label}
		}
		values[i] = model.Number(rank)
	}

	if err := ds.SetColumn(model.Fixed(column), values); err != nil {
		return nil, eris.Wrapf(err, "scorer: category %q", column)
	}
	zap.L().Debug("scorer: category mapped",
		zap.String("column", column),
		zap.Bool("curated", m.Curated),
		zap.Int("labels", len(observed)),
	)
	return m, nil
}

func firstRecordWith(ds *model.Dataset, column, label string) int {
	for _, r := range ds.Records {
		if v := r.Raw[column]; !v.IsMissing() && textOf(v) == label {
			return r.ID
		}
	}
	return 0
}
