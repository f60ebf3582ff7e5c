package currency

import "testing"

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount float64
		code   string
		want   string
	}{
		{129000, "KES", "KSh 129,000"},
		{1234.5, "USD", "$1,234.5"},
		{92, "eur", "€92"},
		{79, "GBP", "£79"},
		{1000, "SEK", "1,000 kr"},
		{1000, "XYZ", "XYZ 1,000"},
		{0, "USD", "$0"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.amount, tc.code); got != tc.want {
			t.Errorf("FormatAmount(%v, %q) = %q, want %q", tc.amount, tc.code, got, tc.want)
		}
	}
}

func TestLookup(t *testing.T) {
	c, ok := Lookup(" kes ")
	if !ok || c.Symbol != "KSh" {
		t.Fatalf("Lookup(kes) = %+v, %v", c, ok)
	}
	if _, ok := Lookup("XYZ"); ok {
		t.Fatal("XYZ should be unknown")
	}
	if got := LookupOrDefault("XYZ").Code; got != "USD" {
		t.Fatalf("default = %q", got)
	}
}

func TestFallbackRatesCoverTable(t *testing.T) {
	for _, c := range Supported {
		if _, ok := FallbackRates[c.Code]; !ok {
			t.Errorf("no fallback rate for %s", c.Code)
		}
	}
}
