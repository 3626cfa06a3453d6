// Package receipt turns the tagged markup emitted by a receipt-understanding
// model into line items, an overall total and a date.
package receipt

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Item is one purchasable line of a receipt.
type Item struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Result is the outcome of parsing one receipt. Total is the largest value
// among total lines; Date is YYYY-MM-DD or nil.
type Result struct {
	Items []Item              `json:"items"`
	Total decimal.NullDecimal `json:"total"`
	Date  *string             `json:"date"`
}

// numericOnlyRE matches candidates made only of digits, spaces, '-', '.' or ':'
// (times, ids, quantities).
var numericOnlyRE = regexp.MustCompile(`^[0-9\s\-.:]*$`)

// Parser is safe for concurrent use; it holds only compiled patterns.
type Parser struct {
	grammar    Grammar
	classifier *Classifier
	nameRE     *regexp.Regexp
	unitRE     *regexp.Regexp
	priceRE    *regexp.Regexp
}

// NewParser returns a parser for g. A nil classifier uses DefaultKeywords.
func NewParser(g Grammar, c *Classifier) *Parser {
	if c == nil {
		c = defaultClassifier
	}
	return &Parser{
		grammar:    g,
		classifier: c,
		nameRE:     tagPattern(g.Name),
		unitRE:     tagPattern(g.UnitPrice),
		priceRE:    tagPattern(g.Price),
	}
}

var defaultParser = NewParser(CORDGrammar, nil)

// Parse parses raw with the CORD grammar and default keywords.
func Parse(raw string) Result {
	return defaultParser.Parse(raw)
}

// Parse never fails: malformed markup yields an empty result.
func (p *Parser) Parse(raw string) Result {
	res := Result{Items: []Item{}}
	for _, block := range SplitBlocks(raw, p.grammar.Separator) {
		names := extractWith(p.nameRE, block)
		units := extractWith(p.unitRE, block)
		prices := extractWith(p.priceRE, block)

		price, hasPrice := p.blockPrice(prices, units)

		if hasPrice && p.isTotalLine(names) {
			if !res.Total.Valid || price.GreaterThan(res.Total.Decimal) {
				res.Total = decimal.NullDecimal{Decimal: price, Valid: true}
			}
			continue
		}

		name, hasName := p.blockName(names)
		if hasName && hasPrice {
			res.Items = append(res.Items, Item{Name: name, Price: price})
		}
	}
	if d, ok := ExtractDate(raw); ok {
		res.Date = &d
	}
	return res
}

// blockPrice normalizes the last non-empty entry of prices followed by
// units, so a unit price overrides an explicit price in the same block.
func (p *Parser) blockPrice(prices, units []string) (decimal.Decimal, bool) {
	candidates := make([]string, 0, len(prices)+len(units))
	for _, s := range append(append([]string{}, prices...), units...) {
		if strings.TrimSpace(s) != "" {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return decimal.Zero, false
	}
	return NormalizeAmount(StripTags(candidates[len(candidates)-1]))
}

// blockName walks name candidates from last to first and returns the first
// one that is neither metadata nor purely numeric.
func (p *Parser) blockName(names []string) (string, bool) {
	for i := len(names) - 1; i >= 0; i-- {
		cand := names[i]
		if p.classifier.IsMetadata(cand) {
			continue
		}
		clean := StripTags(cand)
		if numericOnlyRE.MatchString(clean) {
			continue
		}
		return clean, true
	}
	return "", false
}

func (p *Parser) isTotalLine(names []string) bool {
	for _, n := range names {
		if p.classifier.IsMetadata(n) && containsFold(n, "total") {
			return true
		}
	}
	return false
}
