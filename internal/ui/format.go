package ui

import (
	"fmt"
	"math"
	"strings"
)

// formatLargeNumber abbreviates with B, M or K and two decimals.
func formatLargeNumber(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "0"
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// formatCurrency renders a USD amount with thousands separators. Amounts
// below one cent keep four significant digits.
func formatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v > 0 && v < 0.01 {
		return sign + "$" + strings.TrimRight(fmt.Sprintf("%.*f", decimalsFor(v), v), "0")
	}

	whole := fmt.Sprintf("%.2f", v)
	intPart, frac, _ := strings.Cut(whole, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}

// decimalsFor is the number of decimals that keeps four significant digits.
func decimalsFor(v float64) int {
	return int(math.Ceil(-math.Log10(v))) + 3
}

// formatPercent renders a signed percentage.
func formatPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline draws values scaled between their min and max, resampled to at
// most width points.
func sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		sampled := make([]float64, width)
		for i := range sampled {
			sampled[i] = values[i*len(values)/width]
		}
		values = sampled
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// bar renders a 0-100 score as a fixed-width gauge.
func bar(score float64, width int) string {
	score = max(0, min(100, score))
	filled := int(math.Round(score / 100 * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
