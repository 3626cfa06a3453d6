package receipt

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// digits, comma, exactly two digits at a word boundary ("235,10", "1.234,56")
	commaDecimalRE = regexp.MustCompile(`\d,(\d{2})\b`)
	decimalCommaRE = regexp.MustCompile(`,(\d{2})\b`)
	dotGroupRE     = regexp.MustCompile(`[.\s](\d{3})\b`)
	commaGroupRE   = regexp.MustCompile(`[,\s](\d{3})\b`)
	amountRunRE    = regexp.MustCompile(`\d+(?:\.\d{1,2})?`)
)

// NormalizeAmount converts a locale-ambiguous decimal string ("235.10",
// "235,10", "1.234,56", "1,234.56") into a non-negative decimal with at most
// two fractional digits. ok is false when the text holds no parseable number.
func NormalizeAmount(text string) (amount decimal.Decimal, ok bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, false
	}
	if commaDecimalRE.MatchString(s) {
		s = dotGroupRE.ReplaceAllString(s, "$1")
		s = decimalCommaRE.ReplaceAllString(s, ".$1")
	} else {
		s = commaGroupRE.ReplaceAllString(s, "$1")
	}
	run := amountRunRE.FindString(s)
	if run == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(run)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
