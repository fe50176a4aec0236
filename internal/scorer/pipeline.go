package scorer

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/autoscore/internal/config"
	"github.com/sells-group/autoscore/internal/model"
)

// Preparer runs dataset preparation (filters, fills, cost columns) before
// scoring.
type Preparer interface {
	Prepare(ctx context.Context, ds *model.Dataset) error
}

// PriceSource is implemented by preparers that derive the price
// EuroPerScore is computed from. An empty column keeps the configured one.
type PriceSource interface {
	PriceColumn() string
}

// Result is the outcome of a pipeline run.
type Result struct {
	Dataset    *model.Dataset
	Features   []model.FeatureSpec
	Duplicates int
	Warnings   []DegenerateRangeWarning
	Mappings   map[string]*Mapping
	Elapsed    time.Duration

	// PriceColumn is the column EuroPerScore was computed from.
	PriceColumn string
}

// Pipeline scores vehicles: normalize, map categories, scale, weight and
// aggregate.
type Pipeline struct {
	cfg        config.ScoreConfig
	normalizer *Normalizer
	mapper     *CategoryMapper
	scaler     *Scaler
	preparer   Preparer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPreparer runs p on the working copy before scoring.
func WithPreparer(p Preparer) Option {
	return func(pl *Pipeline) { pl.preparer = p }
}

// New creates a Pipeline for the given policy and curated orderings.
func New(cfg config.ScoreConfig, orderings *Orderings, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:        cfg,
		normalizer: NewNormalizer(cfg),
		mapper:     NewCategoryMapper(orderings, cfg.PlaceholderTokens),
		scaler:     NewScaler(cfg),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Normalizer exposes the pipeline's normalizer for preparation steps.
func (p *Pipeline) Normalizer() *Normalizer { return p.normalizer }

// Run scores a copy of ds; the input is never modified.
func (p *Pipeline) Run(ctx context.Context, ds *model.Dataset, specs []model.FeatureSpec) (*Result, error) {
	start := time.Now()
	if err := ValidateSpecs(specs); err != nil {
		return nil, err
	}

	work := ds.Clone()
	res := &Result{
		Dataset:  work,
		Features: specs,
		Mappings: make(map[string]*Mapping),
	}

	res.Duplicates = work.DropDuplicateIDs()
	if res.Duplicates > 0 {
		zap.L().Warn("scorer: dropped duplicate vehicle ids", zap.Int("duplicates", res.Duplicates))
	}

	if p.preparer != nil {
		if err := p.preparer.Prepare(ctx, work); err != nil {
			return nil, eris.Wrap(err, "scorer: prepare")
		}
	}

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "scorer: context cancelled")
		}
		if !spec.Scored() {
			continue
		}
		warnings, err := p.scoreFeature(work, spec, res)
		if err != nil {
			return nil, err
		}
		res.Warnings = append(res.Warnings, warnings...)
	}

	if err := ApplyWeights(work, specs); err != nil {
		return nil, err
	}

	res.PriceColumn = p.priceColumn(work)
	if work.HasRaw(res.PriceColumn) {
		if _, err := p.normalizer.NormalizeColumn(work, res.PriceColumn, false); err != nil {
			return nil, err
		}
	}
	Aggregate(work, res.PriceColumn)

	res.Elapsed = time.Since(start)
	zap.L().Info("scorer: pipeline complete",
		zap.Int("vehicles", work.Len()),
		zap.Int("features", countScored(specs)),
		zap.Int("degenerate_columns", len(res.Warnings)),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

// priceColumn prefers a preparer-derived price, such as the total price
// after package costs and purchase discounts, over the configured column.
// A derived column without any value falls back to the configured one.
func (p *Pipeline) priceColumn(ds *model.Dataset) string {
	ps, ok := p.preparer.(PriceSource)
	if !ok {
		return p.cfg.PriceColumn
	}
	col := ps.PriceColumn()
	if col == "" || !ds.Has(model.Fixed(col)) {
		return p.cfg.PriceColumn
	}
	for _, v := range ds.Column(model.Fixed(col)) {
		if v.IsNumber() {
			return col
		}
	}
	return p.cfg.PriceColumn
}

// scoreFeature brings one feature's source column to the scaled stage.
// Typed data errors are returned unwrapped; they already name the column.
func (p *Pipeline) scoreFeature(ds *model.Dataset, spec model.FeatureSpec, res *Result) ([]DegenerateRangeWarning, error) {
	if spec.Manual() {
		if !ds.Has(model.Fixed(spec.Feature)) {
			if _, err := ManualScores(ds, spec); err != nil {
				return nil, err
			}
		}
		return p.scaler.ScaleColumn(ds, spec.Feature, spec.Direction())
	}

	col := spec.Source()
	if !ds.HasRaw(col) && !ds.Has(model.Fixed(col)) {
		return nil, &UnknownFeatureError{
			Feature: spec.Feature,
			Tried:   []string{col, model.Fixed(col).String()},
		}
	}

	if !ds.Has(model.Fixed(col)) {
		if spec.Type == model.Category {
			m, err := p.mapper.Apply(ds, col)
			if err != nil {
				return nil, err
			}
			res.Mappings[col] = m
		} else if err := p.normalizer.NormalizeNumeric(ds, col); err != nil {
			return nil, err
		}
	}

	return p.scaler.ScaleColumn(ds, col, spec.Direction())
}

func countScored(specs []model.FeatureSpec) int {
	n := 0
	for _, s := range specs {
		if s.Scored() {
			n++
		}
	}
	return n
}
