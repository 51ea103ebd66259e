package mortgage

import (
	"strconv"
	"strings"
)

// FormatRUB renders an amount as whole rubles with spaces between thousands
// groups: 48007.52 becomes "48 008 RUB". Rounding happens here and only
// here; stored and computed values stay unrounded.
func FormatRUB(amount float64) string {
	return groupThousands(strconv.FormatFloat(amount, 'f', 0, 64)) + " RUB"
}

func groupThousands(digits string) string {
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}
