package analytics

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency of every amount in a bond listing
const Currency = money.INR

// FormatINR renders an amount in rupees, rounded to paise, using the Indian
// numbering system (₹12,34,567.89): the last three digits, then groups of two.
// The amount is formatted from its decimal digits so totals of any size are
// rendered exactly.
func FormatINR(amount decimal.Decimal) string {
	cur := money.GetCurrency(Currency)
	rounded := amount.Round(int32(cur.Fraction))

	whole, frac, _ := strings.Cut(rounded.Abs().StringFixed(int32(cur.Fraction)), ".")

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(cur.Grapheme)
	b.WriteString(groupIndian(whole, cur.Thousand))
	if frac != "" {
		b.WriteString(cur.Decimal)
		b.WriteString(frac)
	}
	return b.String()
}

// FormatINRFloat is FormatINR for a float amount. Nil renders as "".
func FormatINRFloat(amount *float64) string {
	if amount == nil {
		return ""
	}
	return FormatINR(decimal.NewFromFloat(*amount))
}

// groupIndian separates a run of digits into lakh and crore groups
func groupIndian(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}

	result := digits[len(digits)-3:]
	remaining := digits[:len(digits)-3]
	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + sep + result
		remaining = remaining[:len(remaining)-2]
	}
	return remaining + sep + result
}
