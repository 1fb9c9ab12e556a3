package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func requireDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, d(want).Equal(got), "expected %s, got %s", want, got.String())
}

func TestComputeLineTabletUsesFractionalPacks(t *testing.T) {
	got := ComputeLine(d("30"), 40, decimal.Zero, decimal.Zero, "Tablet", 30)
	want := decimal.NewFromInt(40).Div(decimal.NewFromInt(30))
	require.True(t, want.Equal(got.NumberOfPacks), "packs %s", got.NumberOfPacks)
	requireDec(t, "1.3333", got.NumberOfPacks.Round(4))
	requireDec(t, "40", got.ActualTabletCount)
	requireDec(t, "40.00", got.Price)
	require.Equal(t, int64(40), got.DisplayQuantity)
}

func TestComputeLineTabletWithoutPackagingSize(t *testing.T) {
	got := ComputeLine(d("12.5"), 3, decimal.Zero, decimal.Zero, "tablet", 0)
	requireDec(t, "3", got.NumberOfPacks)
	requireDec(t, "37.50", got.Price)
}

func TestComputeLineStrip(t *testing.T) {
	got := ComputeLine(d("100"), 2, decimal.Zero, decimal.Zero, "STRIP", 10)
	requireDec(t, "20", got.ActualTabletCount)
	requireDec(t, "2", got.NumberOfPacks)
	requireDec(t, "200", got.Price)
}

func TestComputeLineGenericUnit(t *testing.T) {
	for _, label := range []string{"PCS", "bottle", ""} {
		got := ComputeLine(d("20"), 5, decimal.Zero, decimal.Zero, label, 10)
		requireDec(t, "100", got.Price)
		requireDec(t, "5", got.ActualTabletCount)
		requireDec(t, "5", got.NumberOfPacks)
	}
}

func TestComputeLineBacksOutInclusiveTax(t *testing.T) {
	got := ComputeLine(d("112"), 1, d("12"), decimal.Zero, "PCS", 1)
	requireDec(t, "12.00", got.TaxAmount)
	requireDec(t, "100.00", got.AmountWithoutTax)
	requireDec(t, "0", got.DiscountAmount)
	requireDec(t, "100.00", got.AmountWithDiscountWithoutTax)
	requireDec(t, "12.00", got.TaxAfterDiscount)
	requireDec(t, "112.00", got.TotalPayableAmount)
}

func TestComputeLineDiscountThenRetax(t *testing.T) {
	got := ComputeLine(d("112"), 1, d("12"), d("10"), "PCS", 1)
	requireDec(t, "10.00", got.DiscountAmount)
	requireDec(t, "90.00", got.AmountWithDiscountWithoutTax)
	requireDec(t, "10.80", got.TaxAfterDiscount)
	requireDec(t, "100.80", got.TotalPayableAmount)
}

func TestComputeLineRoundsEachStep(t *testing.T) {
	// 10.05 * 5 / 105 = 0.47857.. and 9.57 * 5% = 0.4785
	got := ComputeLine(d("10.05"), 1, d("5"), decimal.Zero, "PCS", 1)
	requireDec(t, "0.48", got.TaxAmount)
	requireDec(t, "9.57", got.AmountWithoutTax)
	requireDec(t, "0.48", got.TaxAfterDiscount)
	requireDec(t, "10.05", got.TotalPayableAmount)
}

func TestComputeLineIsIdempotent(t *testing.T) {
	a := ComputeLine(d("47.35"), 17, d("18"), d("7.5"), "tablet", 15)
	b := ComputeLine(d("47.35"), 17, d("18"), d("7.5"), "tablet", 15)
	require.Equal(t, a.Price.String(), b.Price.String())
	require.Equal(t, a.TotalPayableAmount.String(), b.TotalPayableAmount.String())
	require.Equal(t, a.TaxAfterDiscount.String(), b.TaxAfterDiscount.String())
	require.Equal(t, a.NumberOfPacks.String(), b.NumberOfPacks.String())
}

func TestComputeLineDegenerateTaxRate(t *testing.T) {
	require.NotPanics(t, func() {
		got := ComputeLine(d("10"), 1, d("-100"), decimal.Zero, "PCS", 1)
		requireDec(t, "0", got.TaxAmount)
	})
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	requireDec(t, "0.13", Round2(d("0.125")))
	requireDec(t, "-0.13", Round2(d("-0.125")))
	requireDec(t, "2.67", Round2(d("2.665")))
}
