package estimator

import (
	"math"
	"math/rand/v2"
	"sync"
)

// DefaultVariationBand is the half-width of the market variation draw.
const DefaultVariationBand = 0.10

// VariationSource supplies the market variation factor. Draw must return a value in [-band, band];
// the estimator clamps anything outside that range.
type VariationSource interface {
	Draw(band float64) float64
}

// VariationFunc adapts a function to VariationSource.
type VariationFunc func(band float64) float64

// Draw implements VariationSource.
func (f VariationFunc) Draw(band float64) float64 {
	if f == nil {
		return 0
	}
	return f(band)
}

// FixedVariation always yields the same factor, clamped to the band. FixedVariation(0) disables variation.
type FixedVariation float64

// Draw implements VariationSource.
func (f FixedVariation) Draw(band float64) float64 {
	return clampVariation(float64(f), band)
}

// NoVariation is a source that never moves the price.
const NoVariation = FixedVariation(0)

// RandomVariation draws uniformly from [-band, band). It is safe for concurrent use.
type RandomVariation struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomVariation returns a source seeded from the runtime's entropy.
func NewRandomVariation() *RandomVariation {
	return NewSeededVariation(rand.Uint64())
}

// NewSeededVariation returns a reproducible source; identical seeds produce identical draws.
func NewSeededVariation(seed uint64) *RandomVariation {
	return &RandomVariation{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Draw implements VariationSource.
func (r *RandomVariation) Draw(band float64) float64 {
	if band <= 0 {
		return 0
	}
	r.mu.Lock()
	u := r.rng.Float64()
	r.mu.Unlock()
	return (u*2 - 1) * band
}

func clampVariation(v, band float64) float64 {
	if band <= 0 || math.IsNaN(v) {
		return 0
	}
	if v > band {
		return band
	}
	if v < -band {
		return -band
	}
	return v
}
