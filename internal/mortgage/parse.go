package mortgage

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber extracts a number from free-form user input. It tolerates
// surrounding whitespace, spaces used as thousands separators ("5 000 000")
// and a comma decimal separator ("12,5"). The second return value is false
// when the text does not decode to a single finite number; parsing never
// fails with an error, the caller decides how to re-prompt.
func ParseNumber(text string) (float64, bool) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
