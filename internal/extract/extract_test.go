package extract_test

import (
	"encoding/json"
	"testing"

	"tripgenie/internal/domain"
	"tripgenie/internal/extract"
)

func TestExtract_FamilyTripScenario(t *testing.T) {
	got := extract.Extract("Family trip of 4 to Paris from London on a budget")

	if got.Destination != "Paris" {
		t.Fatalf("destination: got %q", got.Destination)
	}
	if got.DepartureLocation != "London" {
		t.Fatalf("departure: got %q", got.DepartureLocation)
	}
	if got.GroupSize == nil || got.GroupSize.IsWords() || got.GroupSize.Count != 4 {
		t.Fatalf("group size: got %+v", got.GroupSize)
	}
	if got.Budget != domain.BudgetBudget {
		t.Fatalf("budget: got %q", got.Budget)
	}
	if got.TravelClass != "" || got.Flexibility != "" {
		t.Fatalf("unexpected fields set: %+v", got)
	}
}

func TestExtract_GroupSize(t *testing.T) {
	cases := []struct {
		in    string
		count int
		words string
	}{
		{in: "trip for 5 people", count: 5},
		{in: "12 travelers heading out", count: 12},
		{in: "family of 4 to Paris", count: 4},
		{in: "A family trip of five people", words: "five"},
		{in: "family of three to Tokyo", words: "three"},
		{in: "family of five", words: "five"},
		{in: "seven passengers from London", words: "seven"},
		{in: "fifteen people to Bali", words: "fifteen"},
		{in: "twenty-five people to New York", words: "twenty-five"},
		{in: "thirty two passengers to London", words: "thirty two"},
		{in: "one hundred people to Paris", words: "one hundred"},
		{in: "Five Adults", words: "Five"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := extract.Extract(tc.in).GroupSize
			if got == nil {
				t.Fatalf("expected group size, got none")
			}
			if tc.words != "" {
				if got.Words != tc.words {
					t.Fatalf("expected words %q, got %+v", tc.words, got)
				}
				return
			}
			if got.IsWords() || got.Count != tc.count {
				t.Fatalf("expected count %d, got %+v", tc.count, got)
			}
		})
	}
}

func TestExtract_GroupSizeAbsent(t *testing.T) {
	for _, in := range []string{"", "someone people", "a weekend in Rome", "people everywhere"} {
		if got := extract.Extract(in).GroupSize; got != nil {
			t.Fatalf("%q: expected no group size, got %+v", in, got)
		}
	}
}

func TestExtract_DestinationNeedsTitleCase(t *testing.T) {
	if got := extract.Extract("fly to new york").Destination; got != "" {
		t.Fatalf("lowercase destination should not match, got %q", got)
	}
	if got := extract.Extract("fly to New York City next week").Destination; got != "New York City" {
		t.Fatalf("got %q", got)
	}
}

func TestExtract_RuleOrderPrecedence(t *testing.T) {
	got := extract.Extract("business trip, economy seats please")
	if got.TravelClass != domain.ClassEconomy {
		t.Fatalf("economy should win over business, got %q", got.TravelClass)
	}

	got = extract.Extract("Luxury hotel but a BUDGET flight")
	if got.Budget != domain.BudgetLuxury {
		t.Fatalf("luxury rule runs last, got %q", got.Budget)
	}

	got = extract.Extract("First Class to Dubai")
	if got.TravelClass != domain.ClassFirst || got.Destination != "Dubai" {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestExtract_DurationHasNoEffect(t *testing.T) {
	got := extract.Extract("10 days")
	b, _ := json.Marshal(got)
	if string(b) != "{}" {
		t.Fatalf("expected empty preferences, got %s", b)
	}
}

func TestExtract_EmptyInputOmitsEverything(t *testing.T) {
	b, err := json.Marshal(extract.Extract("nothing to see here"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "{}" {
		t.Fatalf("expected {}, got %s", b)
	}
}

func TestExtract_GroupSizeJSON(t *testing.T) {
	b, _ := json.Marshal(extract.Extract("family of five"))
	if string(b) != `{"groupSize":"five"}` {
		t.Fatalf("got %s", b)
	}
	b, _ = json.Marshal(extract.Extract("3 friends"))
	if string(b) != `{"groupSize":3}` {
		t.Fatalf("got %s", b)
	}
}

func TestMerge_ExplicitWins(t *testing.T) {
	explicit := domain.TravelPreferences{
		Destination: "Nairobi",
		Budget:      domain.BudgetMidRange,
		GroupSize:   domain.GroupCount(2),
	}
	extracted := extract.Extract("Family trip of 4 to Paris from London on a budget")

	got := extract.Merge(explicit, extracted)
	if got.Destination != "Nairobi" || got.Budget != domain.BudgetMidRange {
		t.Fatalf("explicit values must win: %+v", got)
	}
	if got.GroupSize.Count != 2 {
		t.Fatalf("explicit group size must win: %+v", got.GroupSize)
	}
	if got.DepartureLocation != "London" {
		t.Fatalf("extracted departure should fill the gap, got %q", got.DepartureLocation)
	}
}
