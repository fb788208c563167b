package service

import (
	"klikpos/internal/apierror"
	"klikpos/internal/money"

	"github.com/shopspring/decimal"
)

// TaxLine is one entry of a tax template. A zero Amount with a non-zero Rate is
// derived from the net total.
type TaxLine struct {
	Account string
	Rate    decimal.Decimal
	Amount  decimal.Decimal
}

// AppliedTax is a tax line after evaluation. Total is the running total once
// the line is applied.
type AppliedTax struct {
	Account string
	Rate    decimal.Decimal
	Amount  decimal.Decimal
	Total   decimal.Decimal
}

// TotalsInput carries everything ComputeTotals needs; nothing is read from
// ambient state.
type TotalsInput struct {
	NetTotal decimal.Decimal
	Taxes    []TaxLine
	// RoundOff is an explicit write-off supplied by the caller.
	RoundOff decimal.Decimal
	// ConversionRate converts to the company currency. Nil means not supplied.
	ConversionRate *decimal.Decimal
	CrossCurrency  bool
	IsReturn       bool
	Policy         money.Policy
}

// Totals is the result of ComputeTotals.
type Totals struct {
	NetTotal       decimal.Decimal
	Taxes          []AppliedTax
	TotalTaxes     decimal.Decimal
	GrandTotal     decimal.Decimal
	BaseGrandTotal decimal.Decimal
	RoundedTotal   decimal.Decimal
	ConversionRate decimal.Decimal
	// RoundOffAmount is the explicit round-off plus anything absorbed.
	RoundOffAmount decimal.Decimal
	// Absorbed is the remainder folded in by auto-absorption alone.
	Absorbed decimal.Decimal
}

// ComputeTotals evaluates a document's totals:
//
//	grand = net + Σ taxes
//	grand -= round_off   (normal document)
//	grand += round_off   (return)
//
// then folds a sub-epsilon fractional remainder into the round-off when the
// grand total is non-zero. The only error is a cross-currency document without
// a conversion rate.
func ComputeTotals(in TotalsInput) (Totals, error) {
	policy := in.Policy.Normalize()

	rate := decimal.NewFromInt(1)
	if in.ConversionRate != nil && in.ConversionRate.IsPositive() {
		rate = *in.ConversionRate
	} else if in.CrossCurrency {
		return Totals{}, apierror.Validation("conversion_rate is required for a foreign currency document")
	}

	out := Totals{
		NetTotal:       in.NetTotal,
		ConversionRate: rate,
		Taxes:          make([]AppliedTax, 0, len(in.Taxes)),
	}

	running := in.NetTotal
	totalTaxes := decimal.Zero
	for _, t := range in.Taxes {
		amount := t.Amount
		if amount.IsZero() && !t.Rate.IsZero() {
			amount = money.Percent(in.NetTotal, t.Rate)
		}
		running = running.Add(amount)
		totalTaxes = totalTaxes.Add(amount)
		out.Taxes = append(out.Taxes, AppliedTax{
			Account: t.Account,
			Rate:    t.Rate,
			Amount:  amount,
			Total:   running,
		})
	}
	out.TotalTaxes = totalTaxes

	grand := in.NetTotal.Add(totalTaxes)
	roundOff := decimal.Zero
	if !in.RoundOff.IsZero() {
		roundOff = in.RoundOff
		grand = applyRoundOff(grand, roundOff, in.IsReturn)
	}

	if policy.Absorbable(grand) {
		whole := money.WholeTowardZero(grand)
		remainder := grand.Sub(whole)
		// Keep grand == base ∓ round_off after absorbing.
		if in.IsReturn {
			out.Absorbed = remainder.Neg()
		} else {
			out.Absorbed = remainder
		}
		roundOff = roundOff.Add(out.Absorbed)
		grand = whole
	}

	out.RoundOffAmount = roundOff
	out.GrandTotal = grand
	out.BaseGrandTotal = grand.Mul(rate)
	out.RoundedTotal = money.Round(grand, policy.Precision)
	return out, nil
}

func applyRoundOff(grand, roundOff decimal.Decimal, isReturn bool) decimal.Decimal {
	if isReturn {
		return grand.Add(roundOff)
	}
	return grand.Sub(roundOff)
}

// ReconcileReturnRefund returns the round-off a return needs so that its
// grand total matches what the cashier actually refunded. Both amounts are
// positive magnitudes; the result is rounded to the display precision and is
// the return's own round-off, independent of the original invoice's.
func ReconcileReturnRefund(expectedRefund, declaredRefund decimal.Decimal, precision int32) decimal.Decimal {
	if precision <= 0 {
		precision = money.DefaultPrecision
	}
	return money.Round(expectedRefund.Abs().Sub(declaredRefund.Abs()), precision)
}
