// Package prep readies a vehicle table for scoring: it selects models,
// filters out unwanted trims, repairs numeric columns and derives the
// cost-to-own columns features can reference.
package prep

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/autoscore/internal/config"
	"github.com/sells-group/autoscore/internal/model"
	"github.com/sells-group/autoscore/internal/scorer"
)

// ADAC column names used by preparation.
const (
	ColumnMake         = "Marke"
	ColumnSeries       = "Baureihe"
	ColumnAcceleration = "Beschleunigung 0-100km/h"
	ColumnTank         = "Tankgröße"
	ColumnBattery      = "Batteriekapazität (Netto) in kWh"
	ColumnPackage      = "Klassenübliche Ausstattung nach ADAC-Vorgabe"
	ColumnCostsFix     = "Fixkosten"
	ColumnCostsOperate = "Betriebskosten"
	ColumnCostsShop    = "Werkstattkosten"
)

// Columns derived by CostToOwn. They are added at the fixed stage.
const (
	ColumnTotalPrice     = "Total price"
	ColumnRange          = "Range"
	ColumnMonthlyCosts   = "my monthly costs"
	defaultRoundDecimals = 2
)

// DerivedColumns lists the columns CostToOwn adds.
func DerivedColumns() []string {
	return []string{ColumnTotalPrice, ColumnRange, ColumnMonthlyCosts}
}

// Preparer implements scorer.Preparer.
type Preparer struct {
	cfg   config.PrepConfig
	score config.ScoreConfig
	norm  *scorer.Normalizer
}

var (
	_ scorer.Preparer    = (*Preparer)(nil)
	_ scorer.PriceSource = (*Preparer)(nil)
)

// New creates a Preparer.
func New(cfg config.PrepConfig, score config.ScoreConfig) *Preparer {
	return &Preparer{cfg: cfg, score: score, norm: scorer.NewNormalizer(score)}
}

// PriceColumn returns the derived total price when cost-to-own is on, so
// EuroPerScore reflects package costs and purchase discounts.
func (p *Preparer) PriceColumn() string {
	if p.cfg.CostToOwn {
		return ColumnTotalPrice
	}
	return ""
}

// Prepare runs model selection, filters, numeric repair and cost-to-own on
// ds in place. Steps whose output columns already exist are skipped.
func (p *Preparer) Prepare(ctx context.Context, ds *model.Dataset) error {
	before := ds.Len()

	if len(p.cfg.Models) > 0 {
		n, err := SelectModels(ds, p.cfg.Models)
		if err != nil {
			return err
		}
		zap.L().Debug("prep: model selection", zap.Int("removed", n), zap.Strings("models", p.cfg.Models))
	}

	removed := p.Filter(ds)
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "prep: context cancelled")
	}

	if err := p.FixNumeric(ds); err != nil {
		return err
	}

	if p.cfg.CostToOwn {
		if err := p.CostToOwn(ds); err != nil {
			return err
		}
	}

	zap.L().Info("prep: dataset prepared",
		zap.Int("vehicles_in", before),
		zap.Int("filtered", removed),
		zap.Int("vehicles_out", ds.Len()),
	)
	return nil
}

// FixNumeric adds fixed columns for every configured numeric column,
// repairing implausible accelerations and, when enabled, filling gaps
// with group means.
func (p *Preparer) FixNumeric(ds *model.Dataset) error {
	columns := make(map[string][]model.Value)
	var order []string
	for _, col := range p.cfg.NumericColumns {
		if !ds.HasRaw(col) || ds.Has(model.Fixed(col)) {
			continue
		}
		if _, dup := columns[col]; dup {
			continue
		}
		values, err := p.norm.FixedValues(ds, col, false)
		if err != nil {
			return eris.Wrapf(err, "prep: normalize %q", col)
		}
		columns[col] = values
		order = append(order, col)
	}

	if values, ok := columns[ColumnAcceleration]; ok {
		if n := FixBadData(values); n > 0 {
			zap.L().Debug("prep: repaired acceleration values", zap.Int("rows", n))
		}
	}

	if p.cfg.FillMissing {
		filled := FillMissingByGroupMean(ds, columns, []string{ColumnSeries, ColumnMake})
		if filled > 0 {
			zap.L().Debug("prep: filled missing values by group mean", zap.Int("cells", filled))
		}
	}

	for _, col := range order {
		if err := ds.SetColumn(model.Fixed(col), columns[col]); err != nil {
			return eris.Wrapf(err, "prep: set %q", col)
		}
	}
	return nil
}
