package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Thresholds for abbreviated display.
const (
	LargeNumberThreshold = 1_000_000
	BillionThreshold     = 1_000_000_000
)

// printer groups thousands the English way for stable output.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// FormatNumber formats an integer with thousand separators.
// Example: FormatNumber(18248) returns "18,248".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatFloat formats f with the given number of decimals and thousand
// separators. Example: FormatFloat(1234.567, 2) returns "1,234.57".
func FormatFloat(f float64, precision int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	precision = max(precision, 0)

	scale := math.Pow(10, float64(precision))
	abs := math.Floor(math.Abs(f)*scale+0.5) / scale
	formatted := strconv.FormatFloat(abs, 'f', precision, 64)
	intPart, frac, hasFrac := strings.Cut(formatted, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		// Beyond int64; fall back to plain digits.
		return strconv.FormatFloat(f, 'f', precision, 64)
	}

	out := FormatNumber(n)
	if hasFrac {
		out += "." + frac
	}
	if f < 0 && strings.Trim(formatted, "0.") != "" {
		out = "-" + out
	}
	return out
}

// FormatKg formats a mass in kilograms with two decimals.
func FormatKg(kg float64) string {
	return FormatFloat(kg, 2) + " kg"
}

// FormatLarge abbreviates values of a million and above as "~X.X million"
// or "~X.X billion"; smaller values are rounded and grouped.
func FormatLarge(n float64) string {
	switch {
	case n >= BillionThreshold:
		return fmt.Sprintf("~%.1f billion", n/BillionThreshold)
	case n >= LargeNumberThreshold:
		return fmt.Sprintf("~%.1f million", n/LargeNumberThreshold)
	default:
		return FormatNumber(int64(math.Round(n)))
	}
}
