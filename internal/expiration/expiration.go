// Package expiration converts human-entered shelf-life strings into
// concrete expiration dates.
package expiration

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Days per recognized unit word. Unrecognized words count as zero days,
// which makes the whole duration zero rather than an error.
var unitDays = map[string]int{
	"year":  365,
	"month": 30,
	"day":   1,
}

var digitRun = regexp.MustCompile(`\d+`)

// DurationToDays parses a duration expression like "2 month" or "1 year"
// into a day count. The coefficient is the first run of digits; the unit
// is the text that follows it, up to any further digits. Input that has
// no coefficient, no unit, or an unrecognized unit yields 0 days. This
// function never fails: malformed input degrades to zero.
func DurationToDays(s string) int {
	loc := digitRun.FindStringIndex(s)
	if loc == nil {
		return 0
	}

	coefficient, err := strconv.Atoi(s[loc[0]:loc[1]])
	if err != nil {
		// Digit run too large for an int. Treat as unparsable.
		return 0
	}

	rest := s[loc[1]:]
	if next := digitRun.FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}
	unit := strings.TrimSpace(rest)

	return coefficient * unitDays[unit]
}

// Compute returns the expiration date for a product produced on
// productionDate with the given duration string, and whether it has
// expired relative to now. Expiration is strict: a product whose
// expiration date equals now is not yet expired. Callers are expected
// to pass now in UTC.
func Compute(productionDate time.Time, duration string, now time.Time) (time.Time, bool) {
	expirationDate := productionDate.AddDate(0, 0, DurationToDays(duration))
	return expirationDate, now.After(expirationDate)
}
