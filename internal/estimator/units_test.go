package estimator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnitTableNormalize(t *testing.T) {
	t.Parallel()

	units := DefaultUnitTable()
	cases := []struct {
		quantity float64
		unit     string
		want     float64
	}{
		{quantity: 2, unit: "kg", want: 2},
		{quantity: 500, unit: "g", want: 0.5},
		{quantity: 500, unit: "Grams", want: 0.5},
		{quantity: 1.5, unit: "L", want: 1.5},
		{quantity: 250, unit: "ml", want: 0.25},
		{quantity: 4, unit: "pieces", want: 0.4},
		{quantity: 2, unit: "cups", want: 0.5},
		{quantity: 2, unit: "tbsp.", want: 0.03},
		{quantity: 1, unit: "Teaspoon", want: 0.005},
	}
	for _, tc := range cases {
		require.InDeltaf(t, tc.want, units.Normalize(tc.quantity, tc.unit), 1e-12, "%v %s", tc.quantity, tc.unit)
	}
}

func TestUnitTableFallsBackForUnknownUnits(t *testing.T) {
	t.Parallel()

	units := DefaultUnitTable()
	for _, unit := range []string{"handful", "", "  ", "bunch", "s"} {
		factor, known := units.Factor(unit)
		require.False(t, known, unit)
		require.Equal(t, DefaultUnitFactor, factor)
	}
	require.InDelta(t, 0.3, units.Normalize(3, "sachets"), 1e-12)
}

func TestUnitTableNormalizeIsPure(t *testing.T) {
	t.Parallel()

	units := DefaultUnitTable()
	first := units.Normalize(750, "g")
	second := units.Normalize(750, "g")
	require.Equal(t, first, second)
}

func TestNewUnitTableValidation(t *testing.T) {
	t.Parallel()

	_, err := NewUnitTable(map[string]float64{"kg": 1}, 0)
	require.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = NewUnitTable(map[string]float64{"kg": -1}, 0.1)
	require.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = NewUnitTable(map[string]float64{" ": 1}, 0.1)
	require.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestTimePolicyScale(t *testing.T) {
	t.Parallel()

	require.Equal(t, 90, TimePolicyLinear.Scale(60, 6, 4))
	require.Equal(t, 15, TimePolicyLinear.Scale(45, 1, 3))
	require.Equal(t, 23, TimePolicyLinear.Scale(45, 2, 4))
	require.Equal(t, 85, TimePolicySquareRoot.Scale(60, 8, 4))
	require.Equal(t, 30, TimePolicySquareRoot.Scale(60, 1, 4))
	require.Equal(t, 0, TimePolicyLinear.Scale(0, 8, 4))

	policy, err := ParseTimePolicy(" SQRT ")
	require.NoError(t, err)
	require.Equal(t, TimePolicySquareRoot, policy)

	policy, err = ParseTimePolicy("")
	require.NoError(t, err)
	require.Equal(t, TimePolicyLinear, policy)
}

func TestScaleQuantityIsExact(t *testing.T) {
	t.Parallel()

	require.Equal(t, 4.0, ScaleQuantity(2, 8, 4))
	require.Equal(t, 0.5, ScaleQuantity(2, 1, 4))
	require.Equal(t, 3.0, ScaleQuantity(3, 5, 5))
}
