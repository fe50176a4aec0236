package prep

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/autoscore/internal/model"
	"github.com/sells-group/autoscore/internal/scorer"
)

// netShare converts a gross list price into the net price the purchase
// subsidy thresholds refer to.
const netShare = 0.81

type subsidyTier struct {
	maxNet float64
	amount float64
}

// German purchase subsidy per powertrain, by net list price.
var (
	electricSubsidy     = []subsidyTier{{40000, 9000}, {65000, 7500}}
	pluginHybridSubsidy = []subsidyTier{{40000, 6750}, {65000, 5625}}
)

// GermanDiscount returns the purchase subsidy for a vehicle with the given
// gross base price. isElectric and isPluginHybrid select the tier table.
func GermanDiscount(price float64, isElectric, isPluginHybrid bool) float64 {
	var tiers []subsidyTier
	switch {
	case isElectric:
		tiers = electricSubsidy
	case isPluginHybrid:
		tiers = pluginHybridSubsidy
	default:
		return 0
	}
	net := price * netShare
	for _, t := range tiers {
		if net <= t.maxNet {
			return t.amount
		}
	}
	return 0
}

// CostToOwn adds the Total price, Range and monthly cost columns at the
// fixed stage. Any missing input leaves the derived cell missing.
//
// Range uses the fixed consumption, which already carries the plug-in
// hybrid correction factor.
func (p *Preparer) CostToOwn(ds *model.Dataset) error {
	for _, col := range []string{ColumnPackage, p.score.PriceColumn, ColumnTank, ColumnBattery,
		p.score.ConsumptionColumn, ColumnCostsFix, ColumnCostsOperate, ColumnCostsShop} {
		if ds.HasRaw(col) && !ds.Has(model.Fixed(col)) {
			if _, err := p.norm.NormalizeColumn(ds, col, false); err != nil {
				return eris.Wrapf(err, "prep: cost to own")
			}
		}
	}

	get := func(r *model.Record, col string) (float64, bool) {
		return scorer.NormalizeValue(r.Derived[model.Fixed(col)], false).Float()
	}

	total := make([]model.Value, ds.Len())
	rng := make([]model.Value, ds.Len())
	monthly := make([]model.Value, ds.Len())
	for i, r := range ds.Records {
		engine, _ := r.Raw[p.score.EngineColumn].Str()
		electric := scorer.SameToken(engine, p.score.ElectricLabel)
		hybrid := scorer.SameToken(engine, p.score.PluginHybridLabel)

		pkg, okPkg := get(r, ColumnPackage)
		price, okPrice := get(r, p.score.PriceColumn)
		if okPkg && okPrice {
			t := pkg + price
			if p.cfg.GermanDiscount {
				t -= GermanDiscount(price, electric, hybrid)
			}
			total[i] = model.Number(round2(t))
		}

		capacity := ColumnTank
		if electric {
			capacity = ColumnBattery
		}
		tank, okTank := get(r, capacity)
		cons, okCons := get(r, p.score.ConsumptionColumn)
		if okTank && okCons && cons > 0 {
			rng[i] = model.Number(round2(tank / cons * 100))
		}

		fix, ok1 := get(r, ColumnCostsFix)
		operating, ok2 := get(r, ColumnCostsOperate)
		shop, ok3 := get(r, ColumnCostsShop)
		if ok1 && ok2 && ok3 {
			// Operating and workshop costs are quoted for 15,000 km a year.
			monthly[i] = model.Number(round2(fix + 2*operating + 2*shop))
		}
	}

	derived := [][]model.Value{total, rng, monthly}
	for i, col := range DerivedColumns() {
		if ds.Has(model.Fixed(col)) {
			continue
		}
		if err := ds.SetColumn(model.Fixed(col), derived[i]); err != nil {
			return eris.Wrapf(err, "prep: set %q", col)
		}
	}
	return nil
}

func round2(f float64) float64 {
	p := math.Pow(10, defaultRoundDecimals)
	return math.Round(f*p) / p
}
