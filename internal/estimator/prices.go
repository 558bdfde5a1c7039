package estimator

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Category groups reference prices for reporting.
type Category string

const (
	CategoryProteins   Category = "proteins"
	CategoryDairy      Category = "dairy"
	CategoryVegetables Category = "vegetables"
	CategoryGrains     Category = "grains"
	CategorySpices     Category = "spices"
	CategoryOils       Category = "oils"
	CategoryOthers     Category = "others"
)

// DefaultReferencePrice applies to ingredients no keyword matches.
const DefaultReferencePrice = 500

// PriceRule maps a lowercase keyword to a reference price per base unit (kg, litre, or ten pieces).
type PriceRule struct {
	Keyword   string   `yaml:"keyword"`
	Category  Category `yaml:"category"`
	Price     float64  `yaml:"price"`
	// WordStart only matches the keyword at the start of a word, so "egg" skips "veggies".
	WordStart bool     `yaml:"word_start,omitempty"`
}

// PriceMatch is the outcome of resolving an ingredient name.
type PriceMatch struct {
	Keyword  string
	Category Category
	Price    float64
	// Default is set when no keyword matched and the table default was used.
	Default bool
}

// PriceTable resolves ingredient names to reference prices. Rules are checked in order and the
// first keyword contained in the name wins, so compound keywords must precede the generic ones
// they contain.
type PriceTable struct {
	rules        []PriceRule
	defaultPrice float64
}

// NewPriceTable validates and normalises the rule list.
func NewPriceTable(rules []PriceRule, defaultPrice float64) (PriceTable, error) {
	if len(rules) == 0 {
		return PriceTable{}, fmt.Errorf("%w: price table has no rules", ErrInvalidConfig)
	}
	if !positiveFinite(defaultPrice) {
		return PriceTable{}, fmt.Errorf("%w: default price must be positive, got %v", ErrInvalidConfig, defaultPrice)
	}

	normalised := make([]PriceRule, 0, len(rules))
	seen := make(map[string]int, len(rules))
	for i, rule := range rules {
		keyword := normaliseName(rule.Keyword)
		if keyword == "" {
			return PriceTable{}, fmt.Errorf("%w: price rule %d has an empty keyword", ErrInvalidConfig, i)
		}
		if prev, ok := seen[keyword]; ok {
			return PriceTable{}, fmt.Errorf("%w: keyword %q repeated at rules %d and %d", ErrInvalidConfig, keyword, prev, i)
		}
		if !positiveFinite(rule.Price) {
			return PriceTable{}, fmt.Errorf("%w: keyword %q has non-positive price %v", ErrInvalidConfig, keyword, rule.Price)
		}
		category := rule.Category
		if category == "" {
			category = CategoryOthers
		}
		seen[keyword] = i
		normalised = append(normalised, PriceRule{Keyword: keyword, Category: category, Price: rule.Price, WordStart: rule.WordStart})
	}

	return PriceTable{rules: normalised, defaultPrice: defaultPrice}, nil
}

// Resolve returns the price of the first rule whose keyword appears in name.
func (t PriceTable) Resolve(name string) PriceMatch {
	normalised := normaliseName(name)
	if normalised != "" {
		for _, rule := range t.rules {
			if rule.matches(normalised) {
				return PriceMatch{Keyword: rule.Keyword, Category: rule.Category, Price: rule.Price}
			}
		}
	}
	return PriceMatch{Category: CategoryOthers, Price: t.defaultPrice, Default: true}
}

func (r PriceRule) matches(name string) bool {
	if !r.WordStart {
		return strings.Contains(name, r.Keyword)
	}
	for offset := 0; offset < len(name); {
		i := strings.Index(name[offset:], r.Keyword)
		if i < 0 {
			return false
		}
		at := offset + i
		prev, _ := utf8.DecodeLastRuneInString(name[:at])
		if at == 0 || !unicode.IsLetter(prev) {
			return true
		}
		offset = at + 1
	}
	return false
}

// Rules returns a copy of the ordered rule list.
func (t PriceTable) Rules() []PriceRule {
	out := make([]PriceRule, len(t.rules))
	copy(out, t.rules)
	return out
}

// DefaultPrice returns the fallback price.
func (t PriceTable) DefaultPrice() float64 {
	return t.defaultPrice
}

// IsZero reports whether the table was never initialised.
func (t PriceTable) IsZero() bool {
	return len(t.rules) == 0
}

// ShadowedRules lists keywords that can never match because an earlier keyword is contained in them.
func (t PriceTable) ShadowedRules() []string {
	var shadowed []string
	for i, rule := range t.rules {
		for _, earlier := range t.rules[:i] {
			if strings.Contains(rule.Keyword, earlier.Keyword) {
				shadowed = append(shadowed, fmt.Sprintf("%s (by %s)", rule.Keyword, earlier.Keyword))
				break
			}
		}
	}
	return shadowed
}

// DefaultPriceTable returns the built-in FCFA reference table for Cameroonian markets.
func DefaultPriceTable() PriceTable {
	table, err := NewPriceTable(defaultPriceRules, DefaultReferencePrice)
	if err != nil {
		panic(err)
	}
	return table
}

// Order matters: every compound keyword sits above the shorter keyword it contains
// (stockfish/crayfish before fish, eggplant before egg, palm oil before oil, cocoyam before yam,
// peanut butter before butter).
var defaultPriceRules = []PriceRule{
	{Keyword: "eggplant", Category: CategoryVegetables, Price: 500},
	{Keyword: "stockfish", Category: CategoryProteins, Price: 6000},
	{Keyword: "crayfish", Category: CategoryProteins, Price: 4000},
	{Keyword: "palm oil", Category: CategoryOils, Price: 1500},
	{Keyword: "groundnut oil", Category: CategoryOils, Price: 1800},
	{Keyword: "olive oil", Category: CategoryOils, Price: 5000},
	{Keyword: "coconut milk", Category: CategoryDairy, Price: 1200},
	{Keyword: "sweet potato", Category: CategoryVegetables, Price: 300},
	{Keyword: "cocoyam", Category: CategoryVegetables, Price: 350},
	{Keyword: "peanut butter", Category: CategoryGrains, Price: 2000},
	{Keyword: "groundnut paste", Category: CategoryGrains, Price: 2000},

	{Keyword: "chicken", Category: CategoryProteins, Price: 2500},
	{Keyword: "beef", Category: CategoryProteins, Price: 3000},
	{Keyword: "goat", Category: CategoryProteins, Price: 3500},
	{Keyword: "pork", Category: CategoryProteins, Price: 2800},
	{Keyword: "fish", Category: CategoryProteins, Price: 2000},
	{Keyword: "shrimp", Category: CategoryProteins, Price: 4500},
	{Keyword: "snail", Category: CategoryProteins, Price: 3000},
	{Keyword: "egg", Category: CategoryProteins, Price: 1500, WordStart: true},
	{Keyword: "meat", Category: CategoryProteins, Price: 3000},

	{Keyword: "milk", Category: CategoryDairy, Price: 600},
	{Keyword: "cheese", Category: CategoryDairy, Price: 1500},
	{Keyword: "butter", Category: CategoryDairy, Price: 800},
	{Keyword: "yogurt", Category: CategoryDairy, Price: 1000},
	{Keyword: "cream", Category: CategoryDairy, Price: 1200},

	{Keyword: "ndole", Category: CategoryVegetables, Price: 1000},
	{Keyword: "okra", Category: CategoryVegetables, Price: 600},
	{Keyword: "tomato", Category: CategoryVegetables, Price: 500},
	{Keyword: "onion", Category: CategoryVegetables, Price: 300},
	{Keyword: "pepper", Category: CategoryVegetables, Price: 400},
	{Keyword: "carrot", Category: CategoryVegetables, Price: 250},
	{Keyword: "cabbage", Category: CategoryVegetables, Price: 300},
	{Keyword: "spinach", Category: CategoryVegetables, Price: 400},
	{Keyword: "plantain", Category: CategoryVegetables, Price: 400},
	{Keyword: "cassava", Category: CategoryVegetables, Price: 250},
	{Keyword: "yam", Category: CategoryVegetables, Price: 350},
	{Keyword: "potato", Category: CategoryVegetables, Price: 200},

	{Keyword: "rice", Category: CategoryGrains, Price: 800},
	{Keyword: "bread", Category: CategoryGrains, Price: 300},
	{Keyword: "flour", Category: CategoryGrains, Price: 400},
	{Keyword: "pasta", Category: CategoryGrains, Price: 600},
	{Keyword: "spaghetti", Category: CategoryGrains, Price: 600},
	{Keyword: "maize", Category: CategoryGrains, Price: 350},
	{Keyword: "corn", Category: CategoryGrains, Price: 350},
	{Keyword: "beans", Category: CategoryGrains, Price: 900},
	{Keyword: "egusi", Category: CategoryGrains, Price: 2500},
	{Keyword: "groundnut", Category: CategoryGrains, Price: 1200},
	{Keyword: "peanut", Category: CategoryGrains, Price: 1200},

	{Keyword: "garlic", Category: CategorySpices, Price: 100},
	{Keyword: "ginger", Category: CategorySpices, Price: 800},
	{Keyword: "njansang", Category: CategorySpices, Price: 5000},
	{Keyword: "bouillon", Category: CategorySpices, Price: 2500},
	{Keyword: "maggi", Category: CategorySpices, Price: 2500},
	{Keyword: "salt", Category: CategorySpices, Price: 50},

	{Keyword: "oil", Category: CategoryOils, Price: 1200},

	{Keyword: "sugar", Category: CategoryOthers, Price: 400},
}

func normaliseName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
