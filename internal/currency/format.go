package currency

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"tripgenie/internal/domain"
)

// FormatAmount renders amount in the currency's display convention with
// thousands separators. Unknown codes render as "<CODE> <amount>".
func FormatAmount(amount float64, code string) string {
	code = normalize(code)
	n := groupDigits(amount)
	c, ok := Lookup(code)
	if !ok {
		return code + " " + n
	}
	switch c.Placement {
	case domain.SymbolPrefixSpaced:
		return c.Symbol + " " + n
	case domain.SymbolSuffix:
		return n + " " + c.Symbol
	default:
		return c.Symbol + n
	}
}

func groupDigits(amount float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%v", number.Decimal(amount, number.MaxFractionDigits(2)))
}
