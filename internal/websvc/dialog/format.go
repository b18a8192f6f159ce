package dialog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCOP renders an amount the way the chat shows Colombian pesos: a $
// sign, no decimals, dots as thousand separators ($1.234.567).
func FormatCOP(amount decimal.Decimal) string {
	s := amount.Round(0).StringFixed(0)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}

	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

// capitalize upper-cases the first letter only, like the board state shown in
// the jackpot detail.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// orNA substitutes N/A for unset optional jackpot fields.
func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}
