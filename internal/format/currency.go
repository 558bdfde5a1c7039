// Package format renders monetary amounts for API responses and the CLI.
package format

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultCurrency = "XAF"
	DefaultLocale   = "fr-CM"
)

// MaxAmount is the largest magnitude Format renders; larger amounts are clamped to it.
const MaxAmount = 1e15

// Central and West African CFA francs are written with the FCFA suffix rather than the ISO code.
var localSymbols = map[string]string{
	"XAF": "FCFA",
	"XOF": "FCFA",
}

// Currency formats and rounds amounts in one ISO 4217 currency using locale digit grouping.
type Currency struct {
	unit    currency.Unit
	symbol  string
	scale   int
	printer *message.Printer
}

// NewCurrency builds a formatter for code in the given BCP 47 locale. Empty values fall back to
// DefaultCurrency and DefaultLocale.
func NewCurrency(code, locale string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Currency{}, fmt.Errorf("format: unknown currency %q: %w", code, err)
	}

	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return Currency{}, fmt.Errorf("format: invalid locale %q: %w", locale, err)
	}

	scale, _ := currency.Standard.Rounding(unit)
	symbol, ok := localSymbols[unit.String()]
	if !ok {
		symbol = unit.String()
	}
	return Currency{
		unit:    unit,
		symbol:  symbol,
		scale:   scale,
		printer: message.NewPrinter(tag),
	}, nil
}

// MustCurrency is NewCurrency for constant arguments.
func MustCurrency(code, locale string) Currency {
	c, err := NewCurrency(code, locale)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the ISO code.
func (c Currency) Code() string {
	return c.unit.String()
}

// Symbol returns the suffix used in formatted amounts.
func (c Currency) Symbol() string {
	return c.symbol
}

// Round rounds amount to the currency's minor unit; CFA francs have none.
func (c Currency) Round(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	pow := math.Pow10(c.scale)
	return math.Round(amount*pow) / pow
}

// Format renders amount rounded to the minor unit with grouping, e.g. "12,345 FCFA".
// Amounts beyond ±MaxAmount are clamped.
func (c Currency) Format(amount float64) string {
	if c.printer == nil {
		c = MustCurrency(DefaultCurrency, "en")
	}
	rounded := math.Max(-MaxAmount, math.Min(MaxAmount, c.Round(amount)))
	if c.scale == 0 {
		return c.printer.Sprintf("%d %s", int64(rounded), c.symbol)
	}
	return c.printer.Sprintf(fmt.Sprintf("%%.%df %%s", c.scale), rounded, c.symbol)
}
