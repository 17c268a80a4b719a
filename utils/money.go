package utils

import (
	"fmt"
	"math"
	"strings"
)

// RoundMoney rounds an amount to whole cents.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatCurrency formats an amount the way it is printed on a German bill.
// Example: 1234.5 -> "1.234,50 €"
func FormatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	formatted := fmt.Sprintf("%.2f", RoundMoney(amount))

	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	return sign + strings.Join(groups, ".") + "," + decimalPart + " €"
}
