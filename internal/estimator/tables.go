package estimator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Tables is the on-disk form of the price and unit tables.
//
//	currency: XAF
//	default_price: 500
//	prices:
//	  - {keyword: stockfish, category: proteins, price: 6000}
//	  - {keyword: fish, category: proteins, price: 2000}
//	default_unit_factor: 0.1
//	units:
//	  kg: 1
//	  g: 0.001
type Tables struct {
	Currency          string             `yaml:"currency,omitempty"`
	DefaultPrice      float64            `yaml:"default_price"`
	Prices            []PriceRule        `yaml:"prices"`
	DefaultUnitFactor float64            `yaml:"default_unit_factor,omitempty"`
	Units             map[string]float64 `yaml:"units,omitempty"`
}

// LoadTables decodes YAML tables. Missing unit data falls back to the built-in unit table and a
// missing default price to DefaultReferencePrice.
func LoadTables(r io.Reader) (PriceTable, UnitTable, error) {
	var raw Tables
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return PriceTable{}, UnitTable{}, fmt.Errorf("%w: price table file is empty", ErrInvalidConfig)
		}
		return PriceTable{}, UnitTable{}, fmt.Errorf("%w: decode tables: %v", ErrInvalidConfig, err)
	}

	defaultPrice := raw.DefaultPrice
	if defaultPrice == 0 {
		defaultPrice = DefaultReferencePrice
	}
	prices, err := NewPriceTable(raw.Prices, defaultPrice)
	if err != nil {
		return PriceTable{}, UnitTable{}, err
	}

	units := DefaultUnitTable()
	if len(raw.Units) > 0 || raw.DefaultUnitFactor != 0 {
		factors := raw.Units
		if len(factors) == 0 {
			factors = defaultUnitFactors
		}
		defaultFactor := raw.DefaultUnitFactor
		if defaultFactor == 0 {
			defaultFactor = DefaultUnitFactor
		}
		units, err = NewUnitTable(factors, defaultFactor)
		if err != nil {
			return PriceTable{}, UnitTable{}, err
		}
	}

	return prices, units, nil
}

// LoadTablesFile reads tables from path.
func LoadTablesFile(path string) (PriceTable, UnitTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PriceTable{}, UnitTable{}, fmt.Errorf("estimator: read tables %s: %w", path, err)
	}
	return LoadTables(bytes.NewReader(data))
}

// MarshalTables renders tables in the format LoadTables accepts.
func MarshalTables(currency string, prices PriceTable, units UnitTable) ([]byte, error) {
	doc := Tables{
		Currency:          currency,
		DefaultPrice:      prices.DefaultPrice(),
		Prices:            prices.Rules(),
		DefaultUnitFactor: units.DefaultFactor(),
		Units:             units.Factors(),
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("estimator: encode tables: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("estimator: encode tables: %w", err)
	}
	return buf.Bytes(), nil
}
