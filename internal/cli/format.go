// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Dash is the placeholder for values that have not been recorded.
const Dash = "—"

// FormatMoney formats a currency amount with thousands separators and two
// decimal places, e.g. 10432.5 -> "10,432.50".
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	out := groupThousands(intPart) + "." + fracPart
	if neg {
		return "-" + out
	}
	return out
}

// FormatMoneyPtr formats an optional currency amount; nil renders as Dash.
func FormatMoneyPtr(d *decimal.Decimal) string {
	if d == nil {
		return Dash
	}
	return FormatMoney(*d)
}

// FormatCount formats an optional integer count; nil renders as Dash.
func FormatCount(v *int64) string {
	if v == nil {
		return Dash
	}
	return FormatNumber(*v)
}

// FormatNumber formats an integer with thousands separators.
func FormatNumber(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	out := groupThousands(fmt.Sprintf("%d", n))
	if neg {
		return "-" + out
	}
	return out
}

// FormatPercent formats a ratio as "96.2%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatPercentPtr formats an optional percentage; nil renders as Dash.
func FormatPercentPtr(p *float64) string {
	if p == nil {
		return Dash
	}
	return FormatPercent(*p)
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
