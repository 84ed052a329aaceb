package strength

import (
	"fmt"
	"math"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
	// SecondsPerYear is one Julian year.
	SecondsPerYear = 31556952
)

// yearUnits scale years by powers of 1000.
var yearUnits = []string{
	"thousand", "million", "billion", "trillion", "quadrillion", "quintillion",
	"sextillion", "septillion", "octillion", "nonillion", "decillion",
}

// FormatDuration renders seconds with one decimal in the largest unit that
// keeps the value readable. Each boundary belongs to the larger unit, so 60s
// is "1.0 minutes". Units are chosen on the value as printed, so 59.96s is
// "1.0 minutes" rather than "60.0 seconds". Beyond a year the count is scaled
// by powers of 1000 through yearUnits; values past the last unit stay in
// decillions.
func FormatDuration(seconds float64) string {
	switch {
	case math.IsNaN(seconds) || seconds < 0:
		return "0.0 seconds"
	case math.IsInf(seconds, 1):
		return "forever"
	case round1(seconds) < secondsPerMinute:
		return fmt.Sprintf("%.1f seconds", seconds)
	case round1(seconds/secondsPerMinute) < 60:
		return fmt.Sprintf("%.1f minutes", seconds/secondsPerMinute)
	case round1(seconds/secondsPerHour) < 24:
		return fmt.Sprintf("%.1f hours", seconds/secondsPerHour)
	case round1(seconds/secondsPerDay) < SecondsPerYear/secondsPerDay:
		return fmt.Sprintf("%.1f days", seconds/secondsPerDay)
	}

	years := seconds / SecondsPerYear
	if round1(years) < 1000 {
		return fmt.Sprintf("%.1f years", years)
	}
	for i, unit := range yearUnits {
		years /= 1000
		if round1(years) < 1000 || i == len(yearUnits)-1 {
			return fmt.Sprintf("%.1f %s years", years, unit)
		}
	}
	return "forever"
}
