// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package value

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders f using the shortest decimal digits that round-trip,
// laid out as JavaScript converts a number to a string: plain notation for
// decimal exponents from -7 to 20, and exponent notation (e.g., "1e+21",
// "1.5e-7") otherwise. Non-finite values render as "NaN", "Infinity", and
// "-Infinity". Negative zero renders as "0".
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	var sign string
	if f < 0 {
		sign, f = "-", -f
	}

	// Shortest form is d[.ddd]e±XX.
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	digits := strings.Replace(mant, ".", "", 1)
	x, _ := strconv.Atoi(exp)
	k, n := len(digits), x+1 // n is the position of the decimal point

	switch {
	case k <= n && n <= 21:
		return sign + digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return sign + digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return sign + "0." + strings.Repeat("0", -n) + digits
	}

	esign := "+"
	if x < 0 {
		esign, x = "-", -x
	}
	if k == 1 {
		return sign + digits + "e" + esign + strconv.Itoa(x)
	}
	return sign + digits[:1] + "." + digits[1:] + "e" + esign + strconv.Itoa(x)
}
