package currency

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	markerPat = `US\$|KShs?|KES|USD|\$|€|EUR|£|GBP`
	amountPat = `\d+(?:,\d+)*(?:\.\d+)?`
	codePat   = `USD|KES|EUR|GBP`

	pricePat = `(?:` + markerPat + `)\s?` + amountPat
	sepPat   = `\s*(?:/|\bor\b)\s*`
	chainPat = pricePat + `(?:` + sepPat + pricePat + `)*`
	parenPat = `\(\s*(?:` + chainPat + `|` + amountPat + `\s?(?:` + codePat + `)\b)\s*\)`

	maxPasses = 16
)

var (
	spanRe    = regexp.MustCompile(pricePat + `(?:` + sepPat + pricePat + `|\s*` + parenPat + `)*`)
	mentionRe = regexp.MustCompile(`(` + markerPat + `)\s?(` + amountPat + `)|(` + amountPat + `)\s?(` + codePat + `)\b`)

	comparisonOrder = []string{"USD", "KES"}
	mentionOrder    = []string{"USD", "KES", "EUR", "GBP"}
)

var markerCodes = map[string]string{
	"$": "USD", "US$": "USD", "USD": "USD",
	"KSh": "KES", "KShs": "KES", "KES": "KES",
	"€": "EUR", "EUR": "EUR",
	"£": "GBP", "GBP": "GBP",
}

type mention struct {
	code   string
	amount float64
}

// RewritePricesInText replaces every price mention in text with its value in
// target. Comparison chains ("$100 / KSh 13,000") and parenthesised
// alternates collapse into one price. Running it twice changes nothing.
func (c *Converter) RewritePricesInText(text, target string) string {
	target = normalize(target)
	if target == "" || text == "" {
		return text
	}
	out := text
	for i := 0; i < maxPasses; i++ {
		next := c.rewritePass(out, target)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func (c *Converter) rewritePass(text, target string) string {
	var b strings.Builder
	pos := 0
	for pos < len(text) {
		loc := spanRe.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if glued(text, start) {
			_, size := utf8.DecodeRuneInString(text[start:])
			b.WriteString(text[pos : start+size])
			pos = start + size
			continue
		}
		b.WriteString(text[pos:start])
		b.WriteString(c.rewriteSpan(text[start:end], target))
		pos = end
	}
	b.WriteString(text[pos:])
	return b.String()
}

// glued reports whether the match at start continues a word, as the "$" in "C$40".
func glued(text string, start int) bool {
	if start == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (c *Converter) rewriteSpan(span, target string) string {
	var ms []mention
	for _, m := range mentionRe.FindAllStringSubmatch(span, -1) {
		var mk, amt string
		if m[1] != "" {
			mk, amt = m[1], m[2]
		} else {
			amt, mk = m[3], m[4]
		}
		v, ok := parseAmount(strings.ReplaceAll(amt, ",", ""))
		if !ok {
			continue
		}
		ms = append(ms, mention{code: markerCodes[mk], amount: v})
	}
	if len(ms) == 0 {
		return span
	}
	order := mentionOrder
	if len(ms) > 1 && !strings.Contains(span, "(") {
		order = comparisonOrder
	}
	src := pick(ms, order)
	return FormatAmount(c.Convert(src.amount, src.code, target), target)
}

func pick(ms []mention, order []string) mention {
	for _, code := range order {
		for _, m := range ms {
			if m.code == code {
				return m
			}
		}
	}
	return ms[0]
}
