package parser

import (
	"math"
	"strconv"
	"strings"
)

// validNumber reports whether a raw cell value is a usable positive number
// and returns it. A cell qualifies when it is non-empty, converts to a
// float, and that float is strictly positive and not NaN. Conversion
// failures classify as false, never as errors.
func validNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if f <= 0 || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
