package scorer

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/autoscore/internal/config"
	"github.com/sells-group/autoscore/internal/model"
)

// Normalizer turns raw locale-formatted cells into fixed numeric columns.
type Normalizer struct {
	cfg          config.ScoreConfig
	placeholders tokenSet
}

// NewNormalizer creates a Normalizer for the given scoring policy.
func NewNormalizer(cfg config.ScoreConfig) *Normalizer {
	return &Normalizer{cfg: cfg, placeholders: newTokenSet(cfg.PlaceholderTokens)}
}

// IsPlaceholder reports whether s is one of the "unknown / none" tokens.
func (n *Normalizer) IsPlaceholder(s string) bool {
	return n.placeholders.contains(s)
}

// NormalizeColumn adds <column>|fixed. It returns false without touching
// the dataset when the fixed column already exists.
func (n *Normalizer) NormalizeColumn(ds *model.Dataset, column string, strict bool) (bool, error) {
	if ds.Has(model.Fixed(column)) {
		return false, nil
	}
	values, err := n.FixedValues(ds, column, strict)
	if err != nil {
		return false, err
	}
	if err := ds.SetColumn(model.Fixed(column), values); err != nil {
		return false, eris.Wrapf(err, "scorer: normalize %q", column)
	}
	return true, nil
}

// NormalizeNumeric is the strict entry point for numeric features.
// Placeholder tokens become missing; any other unparsed text is an
// UnresolvedValueError.
func (n *Normalizer) NormalizeNumeric(ds *model.Dataset, column string) error {
	if ds.Has(model.Fixed(column)) {
		return nil
	}
	values, err := n.FixedValues(ds, column, true)
	if err != nil {
		return err
	}
	for i, v := range values {
		s, ok := v.Str()
		if !ok {
			continue
		}
		if n.IsPlaceholder(s) {
			values[i] = model.Missing()
			continue
		}
		return &UnresolvedValueError{Column: column, RecordID: ds.Records[i].ID, Value: s}
	}
	return eris.Wrapf(ds.SetColumn(model.Fixed(column), values), "scorer: normalize %q", column)
}

// FixedValues computes the fixed values of a raw column without adding
// them, so callers can correct them before SetColumn.
func (n *Normalizer) FixedValues(ds *model.Dataset, column string, strict bool) ([]model.Value, error) {
	if !ds.HasRaw(column) {
		return nil, eris.Errorf("scorer: normalize: column %q not in dataset", column)
	}

	consumption := column == n.cfg.ConsumptionColumn
	values := make([]model.Value, len(ds.Records))
	corrected := 0
	for i, r := range ds.Records {
		raw := r.Raw[column]
		if consumption && n.isPluginHybrid(r) {
			values[i] = n.pluginHybridConsumption(r, raw, strict)
			corrected++
			continue
		}
		values[i] = NormalizeValue(raw, strict)
	}
	if corrected > 0 {
		zap.L().Debug("scorer: plug-in hybrid consumption corrected",
			zap.String("column", column),
			zap.Int("rows", corrected),
			zap.Float64("factor", n.cfg.PHEVConsumptionFactor),
		)
	}
	return values, nil
}

// pluginHybridConsumption corrects the combined consumption of a plug-in
// hybrid. The test cycle mixes electric and combustion driving, so the
// figure is far too low; it is multiplied by the configured factor. Values
// reported in kWh are replaced by the secondary consumption column first.
func (n *Normalizer) pluginHybridConsumption(r *model.Record, raw model.Value, strict bool) model.Value {
	if isEnergyValue(raw) {
		raw = model.Missing()
		if n.cfg.SecondaryConsumptionColumn != "" {
			if alt := r.Raw[n.cfg.SecondaryConsumptionColumn]; !isEnergyValue(alt) {
				raw = alt
			}
		}
	}
	v := NormalizeValue(raw, strict)
	if f, ok := v.Float(); ok {
		return model.Number(f * n.cfg.PHEVConsumptionFactor)
	}
	return v
}

func (n *Normalizer) isPluginHybrid(r *model.Record) bool {
	engine, ok := r.Raw[n.cfg.EngineColumn].Str()
	return ok && n.cfg.PluginHybridLabel != "" && SameToken(engine, n.cfg.PluginHybridLabel)
}

// isEnergyValue reports whether a consumption cell is energy per distance.
func isEnergyValue(v model.Value) bool {
	s, ok := v.Str()
	return ok && strings.Contains(foldToken(s), "kwh")
}
