package receipt

import (
	"regexp"
	"strings"
)

// Grammar names the tags and block separator of the model's markup.
type Grammar struct {
	Separator string
	Name      string
	UnitPrice string
	Price     string
}

// CORDGrammar matches the output of donut-base-finetuned-cord-v2.
var CORDGrammar = Grammar{
	Separator: "<sep/>",
	Name:      "s_nm",
	UnitPrice: "s_unitprice",
	Price:     "s_price",
}

var anyTagRE = regexp.MustCompile(`<[^<>]*>`)

// SplitBlocks splits raw markup on sep and returns the trimmed, non-empty
// blocks in their original order.
func SplitBlocks(raw, sep string) []string {
	var parts []string
	if sep == "" {
		parts = []string{raw}
	} else {
		parts = strings.Split(raw, sep)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// tagPattern matches one <tag>...</tag> pair, content may span lines.
func tagPattern(tag string) *regexp.Regexp {
	q := regexp.QuoteMeta(tag)
	return regexp.MustCompile(`(?s)<` + q + `>(.*?)</` + q + `>`)
}

// ExtractTag returns the inner texts of every <tag>...</tag> pair in block,
// in order of appearance.
func ExtractTag(tag, block string) []string {
	return extractWith(tagPattern(tag), block)
}

func extractWith(re *regexp.Regexp, block string) []string {
	ms := re.FindAllStringSubmatch(block, -1)
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// StripTags removes any nested markup tags and collapses whitespace.
func StripTags(s string) string {
	s = anyTagRE.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
