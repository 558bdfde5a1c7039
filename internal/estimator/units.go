package estimator

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultUnitFactor is applied to units the table does not know.
const DefaultUnitFactor = 0.1

// UnitTable converts recorded quantities into base units (kilogram, litre, or ten pieces).
// Unknown units never fail; they degrade to the table's default factor.
type UnitTable struct {
	factors       map[string]float64
	defaultFactor float64
}

// NewUnitTable validates the alias map. Aliases are matched case-insensitively.
func NewUnitTable(factors map[string]float64, defaultFactor float64) (UnitTable, error) {
	if !positiveFinite(defaultFactor) {
		return UnitTable{}, fmt.Errorf("%w: default unit factor must be positive, got %v", ErrInvalidConfig, defaultFactor)
	}
	normalised := make(map[string]float64, len(factors))
	for alias, factor := range factors {
		key := normaliseUnit(alias)
		if key == "" {
			return UnitTable{}, fmt.Errorf("%w: empty unit alias", ErrInvalidConfig)
		}
		if !positiveFinite(factor) {
			return UnitTable{}, fmt.Errorf("%w: unit %q has non-positive factor %v", ErrInvalidConfig, alias, factor)
		}
		normalised[key] = factor
	}
	return UnitTable{factors: normalised, defaultFactor: defaultFactor}, nil
}

// Factor returns the multiplier for unit and whether the unit was recognised.
// A trailing plural "s" is tolerated when the singular alias is known.
func (t UnitTable) Factor(unit string) (float64, bool) {
	key := normaliseUnit(unit)
	if key != "" {
		if factor, ok := t.factors[key]; ok {
			return factor, true
		}
		if singular := strings.TrimSuffix(key, "s"); singular != key {
			if factor, ok := t.factors[singular]; ok {
				return factor, true
			}
		}
	}
	return t.defaultFactor, false
}

// Normalize converts quantity expressed in unit into base units.
func (t UnitTable) Normalize(quantity float64, unit string) float64 {
	factor, _ := t.Factor(unit)
	return quantity * factor
}

// Factors returns a copy of the alias map.
func (t UnitTable) Factors() map[string]float64 {
	out := make(map[string]float64, len(t.factors))
	for k, v := range t.factors {
		out[k] = v
	}
	return out
}

// Aliases returns the known unit aliases in lexical order.
func (t UnitTable) Aliases() []string {
	out := make([]string, 0, len(t.factors))
	for k := range t.factors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultFactor returns the fallback factor for unknown units.
func (t UnitTable) DefaultFactor() float64 {
	return t.defaultFactor
}

// IsZero reports whether the table was never initialised.
func (t UnitTable) IsZero() bool {
	return t.factors == nil && t.defaultFactor == 0
}

// DefaultUnitTable returns the built-in metric and kitchen-measure table.
func DefaultUnitTable() UnitTable {
	table, err := NewUnitTable(defaultUnitFactors, DefaultUnitFactor)
	if err != nil {
		panic(err)
	}
	return table
}

var defaultUnitFactors = map[string]float64{
	"kg":         1,
	"kilogram":   1,
	"g":          0.001,
	"gr":         0.001,
	"gram":       0.001,
	"l":          1,
	"liter":      1,
	"litre":      1,
	"ml":         0.001,
	"milliliter": 0.001,
	"millilitre": 0.001,
	"piece":      0.1,
	"pc":         0.1,
	"pcs":        0.1,
	"cup":        0.25,
	"tbsp":       0.015,
	"tablespoon": 0.015,
	"tsp":        0.005,
	"teaspoon":   0.005,
}

func normaliseUnit(unit string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(unit)), ".")
}
