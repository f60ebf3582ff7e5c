package domain

import "time"

// BaseCurrency is the currency every cached rate is expressed against.
const BaseCurrency = "USD"

type Placement int

const (
	// SymbolPrefix renders "$1,000".
	SymbolPrefix Placement = iota
	// SymbolPrefixSpaced renders "KSh 1,000".
	SymbolPrefixSpaced
	// SymbolSuffix renders "1,000 kr".
	SymbolSuffix
)

type CurrencyInfo struct {
	Code      string    `json:"code"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Placement Placement `json:"placement"`
}

type RateSource string

const (
	SourceNone     RateSource = ""
	SourceCache    RateSource = "cache"
	SourceRemote   RateSource = "remote"
	SourceFallback RateSource = "fallback"
)

// RateTable maps ISO code -> units per one unit of Base.
type RateTable struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetchedAt"`
	Source    RateSource         `json:"source"`
}

// RateQuote is the rate-quote service payload.
type RateQuote struct {
	Result string             `json:"result"`
	Base   string             `json:"base_code"`
	Rates  map[string]float64 `json:"rates"`
}
