package service

import (
	"sort"

	"klikpos/internal/money"

	"github.com/shopspring/decimal"
)

// ReconciliationScope selects which sales count towards a session's expected
// balances. The caller picks it from the actor's authorization.
type ReconciliationScope string

const (
	// ScopeSession sums submitted invoices attached to the session.
	ScopeSession ReconciliationScope = "session"
	// ScopeDay sums every submitted invoice of the profile on the closing day.
	ScopeDay ReconciliationScope = "day"
)

func (s ReconciliationScope) Valid() bool {
	return s == ScopeSession || s == ScopeDay
}

// Variance classifications. Informative only; closing never depends on them.
const (
	VarianceNormal   = "normal"
	VarianceWarning  = "warning"
	VarianceCritical = "critical"
)

type OpeningBalance struct {
	ModeOfPayment string
	Amount        decimal.Decimal
}

// ClosingTotals are the quantity/net/grand figures reported by the caller at
// close. They are carried into the report as given.
type ClosingTotals struct {
	Quantity decimal.Decimal
	Net      decimal.Decimal
	Grand    decimal.Decimal
}

type ReconcileInput struct {
	Opening []OpeningBalance
	Sales   map[string]decimal.Decimal
	Closing map[string]decimal.Decimal
	Totals  ClosingTotals
}

type ReconciliationRow struct {
	ModeOfPayment string
	Opening       decimal.Decimal
	Sales         decimal.Decimal
	Expected      decimal.Decimal
	Closing       decimal.Decimal
	Variance      decimal.Decimal
}

type ReconciliationReport struct {
	Rows []ReconciliationRow

	TotalOpening  decimal.Decimal
	TotalSales    decimal.Decimal
	TotalExpected decimal.Decimal
	TotalClosing  decimal.Decimal
	TotalVariance decimal.Decimal
	// VariancePct is TotalVariance relative to TotalExpected.
	VariancePct    decimal.Decimal
	Classification string

	Totals ClosingTotals
}

// Reconcile computes expected and variance per payment mode:
//
//	expected = opening + sales
//	variance = closing - expected
//
// Every mode seen in any of the three inputs gets a row; a missing amount is
// zero. Rows follow the opening order, then the remaining modes sorted by name.
func Reconcile(in ReconcileInput) ReconciliationReport {
	opening := make(map[string]decimal.Decimal, len(in.Opening))
	order := make([]string, 0, len(in.Opening)+len(in.Closing))
	seen := make(map[string]bool)

	for _, b := range in.Opening {
		if !seen[b.ModeOfPayment] {
			seen[b.ModeOfPayment] = true
			order = append(order, b.ModeOfPayment)
		}
		opening[b.ModeOfPayment] = opening[b.ModeOfPayment].Add(b.Amount)
	}

	var extra []string
	for _, m := range []map[string]decimal.Decimal{in.Closing, in.Sales} {
		for mode := range m {
			if !seen[mode] {
				seen[mode] = true
				extra = append(extra, mode)
			}
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	report := ReconciliationReport{Rows: make([]ReconciliationRow, 0, len(order)), Totals: in.Totals}
	for _, mode := range order {
		row := ReconciliationRow{
			ModeOfPayment: mode,
			Opening:       opening[mode],
			Sales:         in.Sales[mode],
			Closing:       in.Closing[mode],
		}
		row.Expected = row.Opening.Add(row.Sales)
		row.Variance = row.Closing.Sub(row.Expected)
		report.Rows = append(report.Rows, row)

		report.TotalOpening = report.TotalOpening.Add(row.Opening)
		report.TotalSales = report.TotalSales.Add(row.Sales)
		report.TotalExpected = report.TotalExpected.Add(row.Expected)
		report.TotalClosing = report.TotalClosing.Add(row.Closing)
		report.TotalVariance = report.TotalVariance.Add(row.Variance)
	}

	report.VariancePct = money.VariancePercent(report.TotalVariance, report.TotalExpected)
	report.Classification = classifyVariance(report.VariancePct)
	return report
}

// classifyVariance: |pct| <= 1 normal, <= 5 warning, otherwise critical.
func classifyVariance(pct decimal.Decimal) string {
	abs := pct.Abs()
	switch {
	case abs.LessThanOrEqual(decimal.NewFromInt(1)):
		return VarianceNormal
	case abs.LessThanOrEqual(decimal.NewFromInt(5)):
		return VarianceWarning
	default:
		return VarianceCritical
	}
}
