package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrencyFormatsCFAFrancs(t *testing.T) {
	t.Parallel()

	xaf, err := NewCurrency("xaf", "en")
	require.NoError(t, err)
	require.Equal(t, "XAF", xaf.Code())
	require.Equal(t, "FCFA", xaf.Symbol())
	require.Equal(t, "12,345 FCFA", xaf.Format(12345.4))
	require.Equal(t, "3,300 FCFA", xaf.Format(3299.5))
	require.Equal(t, "50 FCFA", xaf.Format(50))
	require.Equal(t, 1235.0, xaf.Round(1234.6))
}

func TestCurrencyFormatClampsHugeAmounts(t *testing.T) {
	t.Parallel()

	xaf := MustCurrency("XAF", "en")
	require.Equal(t, "1,000,000,000,000,000 FCFA", xaf.Format(5e21))
	require.Equal(t, "-1,000,000,000,000,000 FCFA", xaf.Format(-1e300))
	require.Equal(t, "1,000,000,000,000,000.00 EUR", MustCurrency("EUR", "en").Format(1e19))
}

func TestCurrencyFormatsMinorUnits(t *testing.T) {
	t.Parallel()

	eur, err := NewCurrency("EUR", "en")
	require.NoError(t, err)
	require.Equal(t, "EUR", eur.Symbol())
	require.Equal(t, 12.35, eur.Round(12.345001))
	require.Equal(t, "1,234.50 EUR", eur.Format(1234.5))
}

func TestNewCurrencyDefaultsAndErrors(t *testing.T) {
	t.Parallel()

	c, err := NewCurrency("", "")
	require.NoError(t, err)
	require.Equal(t, DefaultCurrency, c.Code())

	_, err = NewCurrency("ZZZZ", "en")
	require.Error(t, err)

	_, err = NewCurrency("XAF", "not a locale!")
	require.Error(t, err)
}

func TestZeroCurrencyStillFormats(t *testing.T) {
	t.Parallel()

	var c Currency
	require.Equal(t, "1,000 FCFA", c.Format(1000))
}
