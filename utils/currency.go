package utils

import (
	"fmt"
	"strings"
)

// FormatCurrencyMYR memformat jumlah dalam sen kepada format Ringgit.
// Contoh: 123456 -> "RM 1,234.56"
func FormatCurrencyMYR(amountSen int64) string {
	negative := amountSen < 0
	if negative {
		amountSen = -amountSen
	}

	ringgit := amountSen / 100
	sen := amountSen % 100

	// Tambah pemisah ribuan pada bahagian ringgit
	digits := fmt.Sprintf("%d", ringgit)
	var parts []string
	for i := len(digits); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		parts = append([]string{digits[start:i]}, parts...)
	}

	formatted := fmt.Sprintf("RM %s.%02d", strings.Join(parts, ","), sen)
	if negative {
		return "-" + formatted
	}
	return formatted
}
