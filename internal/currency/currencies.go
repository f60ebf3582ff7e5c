package currency

import (
	"strings"

	"tripgenie/internal/domain"
)

// Supported is the display table. The first entry is the default when a
// lookup misses.
var Supported = []domain.CurrencyInfo{
	{Code: "USD", Symbol: "$", Name: "US Dollar", Placement: domain.SymbolPrefix},
	{Code: "EUR", Symbol: "€", Name: "Euro", Placement: domain.SymbolPrefix},
	{Code: "GBP", Symbol: "£", Name: "British Pound", Placement: domain.SymbolPrefix},
	{Code: "KES", Symbol: "KSh", Name: "Kenyan Shilling", Placement: domain.SymbolPrefixSpaced},
	{Code: "UGX", Symbol: "USh", Name: "Ugandan Shilling", Placement: domain.SymbolPrefixSpaced},
	{Code: "TZS", Symbol: "TSh", Name: "Tanzanian Shilling", Placement: domain.SymbolPrefixSpaced},
	{Code: "ZAR", Symbol: "R", Name: "South African Rand", Placement: domain.SymbolPrefix},
	{Code: "NGN", Symbol: "₦", Name: "Nigerian Naira", Placement: domain.SymbolPrefix},
	{Code: "AED", Symbol: "AED", Name: "UAE Dirham", Placement: domain.SymbolPrefixSpaced},
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee", Placement: domain.SymbolPrefix},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen", Placement: domain.SymbolPrefix},
	{Code: "CNY", Symbol: "CN¥", Name: "Chinese Yuan", Placement: domain.SymbolPrefix},
	{Code: "AUD", Symbol: "A$", Name: "Australian Dollar", Placement: domain.SymbolPrefix},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar", Placement: domain.SymbolPrefix},
	{Code: "CHF", Symbol: "CHF", Name: "Swiss Franc", Placement: domain.SymbolPrefixSpaced},
	{Code: "SEK", Symbol: "kr", Name: "Swedish Krona", Placement: domain.SymbolSuffix},
}

// FallbackRates are approximate USD-based rates used when the rate-quote
// service cannot be reached.
var FallbackRates = map[string]float64{
	"USD": 1,
	"EUR": 0.92,
	"GBP": 0.79,
	"KES": 129,
	"UGX": 3700,
	"TZS": 2600,
	"ZAR": 18.5,
	"NGN": 1550,
	"AED": 3.67,
	"INR": 83,
	"JPY": 150,
	"CNY": 7.2,
	"AUD": 1.52,
	"CAD": 1.36,
	"CHF": 0.88,
	"SEK": 10.5,
}

func Lookup(code string) (domain.CurrencyInfo, bool) {
	code = normalize(code)
	for _, c := range Supported {
		if c.Code == code {
			return c, true
		}
	}
	return domain.CurrencyInfo{}, false
}

// LookupOrDefault mirrors the selected-currency display: unknown codes fall
// back to the first supported currency.
func LookupOrDefault(code string) domain.CurrencyInfo {
	if c, ok := Lookup(code); ok {
		return c
	}
	return Supported[0]
}

func normalize(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }
