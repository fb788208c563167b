package service

import (
	"errors"
	"testing"

	"klikpos/internal/apierror"
	"klikpos/internal/money"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals_TaxesInTemplateOrder(t *testing.T) {
	out, err := ComputeTotals(TotalsInput{
		NetTotal: dec("200"),
		Taxes: []TaxLine{
			{Account: "VAT 15%", Rate: dec("15")},
			{Account: "Levy", Amount: dec("5")},
		},
	})
	require.NoError(t, err)

	require.Len(t, out.Taxes, 2)
	assert.Equal(t, "VAT 15%", out.Taxes[0].Account)
	assert.True(t, out.Taxes[0].Amount.Equal(dec("30")))
	assert.True(t, out.Taxes[0].Total.Equal(dec("230")))
	assert.True(t, out.Taxes[1].Total.Equal(dec("235")))
	assert.True(t, out.TotalTaxes.Equal(dec("35")))
	assert.True(t, out.GrandTotal.Equal(dec("235")))
	assert.True(t, out.BaseGrandTotal.Equal(dec("235")))
	assert.True(t, out.RoundOffAmount.IsZero())
}

func TestComputeTotals_ReturnAddsRoundOff(t *testing.T) {
	// a tight epsilon keeps the explicit round-off arithmetic visible
	tight := money.Policy{Precision: 2, Epsilon: dec("0.001")}

	ret, err := ComputeTotals(TotalsInput{NetTotal: dec("-100"), RoundOff: dec("3.01"), IsReturn: true, Policy: tight})
	require.NoError(t, err)
	assert.Equal(t, "-96.99", ret.GrandTotal.StringFixed(2))
	assert.True(t, ret.RoundOffAmount.Equal(dec("3.01")))

	normal, err := ComputeTotals(TotalsInput{NetTotal: dec("-100"), RoundOff: dec("3.01"), Policy: tight})
	require.NoError(t, err)
	assert.Equal(t, "-103.01", normal.GrandTotal.StringFixed(2))
	assert.True(t, normal.Absorbed.IsZero())
}

func TestComputeTotals_ExplicitRoundOffThenAbsorption(t *testing.T) {
	// -103.01 leaves exactly epsilon behind, which the default policy absorbs
	out, err := ComputeTotals(TotalsInput{NetTotal: dec("-100"), RoundOff: dec("3.01")})
	require.NoError(t, err)
	assert.True(t, out.GrandTotal.Equal(dec("-103")))
	assert.True(t, out.Absorbed.Equal(dec("-0.01")))
	assert.True(t, out.RoundOffAmount.Equal(dec("3")))
	assert.True(t, out.NetTotal.Sub(out.RoundOffAmount).Equal(out.GrandTotal))

	ret, err := ComputeTotals(TotalsInput{NetTotal: dec("-100"), RoundOff: dec("3.01"), IsReturn: true})
	require.NoError(t, err)
	assert.Equal(t, "-96.99", ret.GrandTotal.StringFixed(2))
	assert.True(t, ret.Absorbed.IsZero())
}

func TestComputeTotals_AbsorbsSubCentRemainder(t *testing.T) {
	out, err := ComputeTotals(TotalsInput{NetTotal: dec("100.004")})
	require.NoError(t, err)

	assert.Equal(t, "100.00", out.RoundedTotal.StringFixed(2))
	assert.True(t, out.GrandTotal.Equal(dec("100")))
	assert.True(t, out.Absorbed.Equal(dec("0.004")))
	assert.True(t, out.RoundOffAmount.Equal(dec("0.004")))
}

func TestComputeTotals_AbsorbsRemainderOfExactlyEpsilon(t *testing.T) {
	out, err := ComputeTotals(TotalsInput{NetTotal: dec("100.01")})
	require.NoError(t, err)
	assert.True(t, out.GrandTotal.Equal(dec("100")))
	assert.True(t, out.Absorbed.Equal(dec("0.01")))

	above, err := ComputeTotals(TotalsInput{NetTotal: dec("100.02")})
	require.NoError(t, err)
	assert.True(t, above.GrandTotal.Equal(dec("100.02")))
	assert.True(t, above.Absorbed.IsZero())
}

func TestComputeTotals_AbsorbsRemainderBelowTolerance(t *testing.T) {
	out, err := ComputeTotals(TotalsInput{NetTotal: dec("100.0000005")})
	require.NoError(t, err)
	assert.True(t, out.GrandTotal.Equal(dec("100")))
	assert.True(t, out.Absorbed.Equal(dec("0.0000005")))
	assert.True(t, money.Fraction(out.GrandTotal).IsZero())
}

func TestComputeTotals_AbsorptionAccumulates(t *testing.T) {
	out, err := ComputeTotals(TotalsInput{NetTotal: dec("100.504"), RoundOff: dec("0.5")})
	require.NoError(t, err)

	assert.True(t, out.GrandTotal.Equal(dec("100")))
	assert.True(t, out.RoundOffAmount.Equal(dec("0.504")))
	// grand == net - round_off still holds
	assert.True(t, out.NetTotal.Sub(out.RoundOffAmount).Equal(out.GrandTotal))
}

func TestComputeTotals_ReturnAbsorptionKeepsIdentity(t *testing.T) {
	out, err := ComputeTotals(TotalsInput{NetTotal: dec("-50.003"), IsReturn: true})
	require.NoError(t, err)

	assert.True(t, out.GrandTotal.Equal(dec("-50")))
	assert.True(t, out.RoundOffAmount.Equal(dec("0.003")))
	assert.True(t, out.NetTotal.Add(out.RoundOffAmount).Equal(out.GrandTotal))
}

func TestComputeTotals_AbsorptionIsIdempotent(t *testing.T) {
	first, err := ComputeTotals(TotalsInput{NetTotal: dec("100.004")})
	require.NoError(t, err)

	second, err := ComputeTotals(TotalsInput{NetTotal: first.GrandTotal})
	require.NoError(t, err)
	assert.True(t, second.Absorbed.IsZero())
	assert.True(t, second.RoundOffAmount.IsZero())
	assert.True(t, second.GrandTotal.Equal(first.GrandTotal))
}

func TestComputeTotals_ZeroTotalUntouched(t *testing.T) {
	out, err := ComputeTotals(TotalsInput{NetTotal: decimal.Zero})
	require.NoError(t, err)
	assert.True(t, out.GrandTotal.IsZero())
	assert.True(t, out.RoundOffAmount.IsZero())
}

func TestComputeTotals_ConversionRate(t *testing.T) {
	rate := dec("0.5")
	out, err := ComputeTotals(TotalsInput{NetTotal: dec("80"), ConversionRate: &rate, CrossCurrency: true})
	require.NoError(t, err)
	assert.True(t, out.BaseGrandTotal.Equal(dec("40")))

	_, err = ComputeTotals(TotalsInput{NetTotal: dec("80"), CrossCurrency: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierror.ErrValidation))

	same, err := ComputeTotals(TotalsInput{NetTotal: dec("80")})
	require.NoError(t, err)
	assert.True(t, same.ConversionRate.Equal(decimal.NewFromInt(1)))
}

func TestComputeTotals_CustomPolicy(t *testing.T) {
	out, err := ComputeTotals(TotalsInput{
		NetTotal: dec("10.04"),
		Policy:   money.Policy{Precision: 2, Epsilon: dec("0.05")},
	})
	require.NoError(t, err)
	assert.True(t, out.GrandTotal.Equal(dec("10")))
	assert.True(t, out.Absorbed.Equal(dec("0.04")))
}

func TestReconcileReturnRefund(t *testing.T) {
	assert.True(t, ReconcileReturnRefund(dec("100"), dec("96.99"), 2).Equal(dec("3.01")))
	assert.True(t, ReconcileReturnRefund(dec("-100"), dec("100"), 2).IsZero())
	assert.True(t, ReconcileReturnRefund(dec("50"), dec("50.5"), 0).Equal(dec("-0.5")))

	// the delta becomes the return's round-off and lands the grand total on the refund
	delta := ReconcileReturnRefund(dec("100"), dec("96.99"), 2)
	out, err := ComputeTotals(TotalsInput{NetTotal: dec("-100"), RoundOff: delta, IsReturn: true})
	require.NoError(t, err)
	assert.Equal(t, "-96.99", out.GrandTotal.StringFixed(2))
}
