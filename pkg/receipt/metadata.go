package receipt

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// DefaultKeywords maps a locale tag to substrings that mark a receipt line
// as metadata rather than a purchasable item.
var DefaultKeywords = map[string][]string{
	"en": {
		// sums
		"total", "subtotal", "sub total", "grand total", "amount due", "balance", "change",
		// tax
		"tax", "vat", "gst",
		// payment
		"cash", "card", "visa", "mastercard", "debit", "credit", "payment", "paid",
		// terminal and audit
		"terminal", "reference", "ref:", "ref.", "auth", "approval", "trans id", "txn",
		// greeting and document
		"thanks", "thank you", "receipt", "invoice",
	},
	"no": {
		"sum", "totalt", "å betale", "mva", "moms",
		"kontant", "kort", "bankkort", "vekslepenger", "betalt",
		"referanse", "autorisasjon", "terminal",
		"takk", "kvittering", "faktura",
	},
}

// Classifier flags text as receipt metadata by case-insensitive substring
// match against a keyword set.
type Classifier struct {
	keywords []string
}

// NewClassifier builds a Classifier from a locale -> keywords mapping.
func NewClassifier(byLocale map[string][]string) *Classifier {
	locales := make([]string, 0, len(byLocale))
	for l := range byLocale {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	fold := cases.Fold()
	seen := map[string]struct{}{}
	var kws []string
	for _, l := range locales {
		for _, k := range byLocale[l] {
			k = strings.TrimSpace(fold.String(k))
			if k == "" {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			kws = append(kws, k)
		}
	}
	return &Classifier{keywords: kws}
}

// IsMetadata reports whether text looks like a total, tax, payment, audit or
// greeting line.
func (c *Classifier) IsMetadata(text string) bool {
	low := cases.Fold().String(text)
	for _, k := range c.keywords {
		if strings.Contains(low, k) {
			return true
		}
	}
	return false
}

var defaultClassifier = NewClassifier(DefaultKeywords)

// IsMetadata classifies text with the default keyword set.
func IsMetadata(text string) bool {
	return defaultClassifier.IsMetadata(text)
}

func containsFold(s, sub string) bool {
	return strings.Contains(cases.Fold().String(s), cases.Fold().String(sub))
}
