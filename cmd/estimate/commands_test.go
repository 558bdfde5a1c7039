package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestEstimatePrintsScaledRecipe(t *testing.T) {
	out, err := execute(t,
		"--recipe", "testdata/poulet-dg.yaml",
		"--people", "8",
		"--variation", "0",
		"--price-table", "testdata/prices.yaml",
		"--locale", "en",
		"--budget", "4000",
	)
	require.NoError(t, err)
	require.Contains(t, out, "Poulet DG for 8 people x1")
	require.Contains(t, out, "chicken")
	require.Contains(t, out, "3,000 FCFA")
	require.Contains(t, out, "Total: 4,600 FCFA (575 FCFA per serving)")
	require.Contains(t, out, "Time: 120 min (linear, base 60 min)")
	require.Contains(t, out, "Budget: 4,000 FCFA exceeded")
}

func TestEstimateSqrtPolicyAndRepetitions(t *testing.T) {
	out, err := execute(t,
		"--recipe", "testdata/poulet-dg.yaml",
		"--people", "4",
		"--repetitions", "2",
		"--variation", "0",
		"--price-table", "testdata/prices.yaml",
		"--time-policy", "sqrt",
		"--locale", "en",
	)
	require.NoError(t, err)
	require.Contains(t, out, "Repeated: 4,600 FCFA")
	require.Contains(t, out, "Time: 60 min (sqrt, base 60 min)")
}

func TestEstimateSeedIsReproducible(t *testing.T) {
	args := []string{"--recipe", "testdata/poulet-dg.yaml", "--people", "6", "--seed", "42", "--locale", "en"}
	first, err := execute(t, args...)
	require.NoError(t, err)
	second, err := execute(t, args...)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEstimateRejectsOutOfRangePeople(t *testing.T) {
	_, err := execute(t, "--recipe", "testdata/poulet-dg.yaml", "--people", "21")
	require.ErrorContains(t, err, "invalid --people")
}

func TestEstimateRequiresRecipe(t *testing.T) {
	_, err := execute(t, "--people", "4")
	require.Error(t, err)
}

func TestEstimateUnknownRecipeID(t *testing.T) {
	_, err := execute(t, "--recipe", "testdata/poulet-dg.yaml", "--people", "4", "--id", "ndole")
	require.ErrorContains(t, err, `recipe "ndole" not found`)
}

func TestEstimateSeedAndVariationAreExclusive(t *testing.T) {
	_, err := execute(t, "--recipe", "testdata/poulet-dg.yaml", "--people", "4", "--seed", "1", "--variation", "0")
	require.Error(t, err)
}

func TestPricesDumpsTables(t *testing.T) {
	out, err := execute(t, "prices", "--price-table", "testdata/prices.yaml")
	require.NoError(t, err)
	require.Contains(t, out, "currency: XAF")
	require.Contains(t, out, "keyword: chicken")
	require.Contains(t, out, "default_price: 500")
}

func TestPricesDumpsBuiltInTable(t *testing.T) {
	out, err := execute(t, "prices")
	require.NoError(t, err)
	require.Contains(t, out, "prices:")
	require.Contains(t, out, "units:")
}
