package infra

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with thousands separators and the currency
// code, e.g. "KES 1,234.50".
func FormatAmount(currency string, amount decimal.Decimal, places int32) string {
	s := amount.StringFixed(places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	if currency == "" {
		return out
	}
	return currency + " " + out
}
