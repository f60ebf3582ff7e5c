package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

type Budget string

const (
	BudgetBudget      Budget = "budget"
	BudgetMidRange    Budget = "mid-range"
	BudgetLuxury      Budget = "luxury"
	BudgetUltraLuxury Budget = "ultra-luxury"
)

type TravelClass string

const (
	ClassEconomy  TravelClass = "economy"
	ClassBusiness TravelClass = "business"
	ClassFirst    TravelClass = "first"
)

type Flexibility string

const (
	FlexExact    Flexibility = "exact"
	FlexFlexible Flexibility = "flexible"
	FlexAnytime  Flexibility = "anytime"
)

// TravelPreferences is the trip request. Every field is optional; the zero
// value of a field means "absent" and is omitted from JSON.
type TravelPreferences struct {
	DepartureLocation string      `json:"departureLocation,omitempty"`
	Destination       string      `json:"destination,omitempty"`
	StartDate         string      `json:"startDate,omitempty"`
	EndDate           string      `json:"endDate,omitempty"`
	Budget            Budget      `json:"budget,omitempty"`
	TravelStyle       string      `json:"travelStyle,omitempty"`
	Interests         []string    `json:"interests,omitempty"`
	GroupSize         *GroupSize  `json:"groupSize,omitempty"`
	Accommodation     string      `json:"accommodation,omitempty"`
	Transportation    string      `json:"transportation,omitempty"`
	TravelClass       TravelClass `json:"travelClass,omitempty"`
	Flexibility       Flexibility `json:"flexibility,omitempty"`
	NLPQuery          string      `json:"nlpQuery,omitempty"`
}

// GroupSize is either a head count or the number words the traveller typed
// ("five", "twenty-five"). Words are passed through unresolved.
type GroupSize struct {
	Count int
	Words string
}

func GroupCount(n int) *GroupSize    { return &GroupSize{Count: n} }
func GroupWords(w string) *GroupSize { return &GroupSize{Words: w} }
func (g GroupSize) IsWords() bool    { return g.Words != "" }

func (g GroupSize) String() string {
	if g.IsWords() {
		return g.Words
	}
	return strconv.Itoa(g.Count)
}

func (g GroupSize) MarshalJSON() ([]byte, error) {
	if g.IsWords() {
		return json.Marshal(g.Words)
	}
	return json.Marshal(g.Count)
}

func (g *GroupSize) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*g = GroupSize{Count: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		*g = GroupSize{Count: n}
		return nil
	}
	*g = GroupSize{Words: s}
	return nil
}
