package receipt

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	// Digit guards rather than \b: "2024-03-15T10:22" and "02.10.23kl" must match.
	isoDateRE = regexp.MustCompile(`(?:^|\D)(\d{4}-\d{2}-\d{2})(?:\D|$)`)
	dmyDateRE = regexp.MustCompile(`(?:^|\D)(\d{1,2})[./-](\d{1,2})[./-](\d{4}|\d{2})(?:\D|$)`)
)

// ExtractDate finds the receipt date in raw markup and returns it as
// YYYY-MM-DD. An ISO date anywhere in the text wins over a day-month-year
// one; only the first day-month-year match is considered and an impossible
// calendar date yields ok=false.
func ExtractDate(raw string) (date string, ok bool) {
	if m := isoDateRE.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	m := dmyDateRE.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	year := m[3]
	if len(year) == 2 {
		year = "20" + year
	}
	d, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	y, _ := strconv.Atoi(year)
	iso := fmt.Sprintf("%04d-%02d-%02d", y, mo, d)
	if _, err := time.Parse(time.DateOnly, iso); err != nil {
		return "", false
	}
	return iso, true
}
