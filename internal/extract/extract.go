// Package extract turns a free-text trip request into partial preferences
// with deterministic pattern matching.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"tripgenie/internal/domain"
)

// Rule inspects the text and, when it recognises something, returns the
// assignment to apply to the result.
type Rule struct {
	Name  string
	Apply func(text string) (assign func(*domain.TravelPreferences), ok bool)
}

var numberWord = `(?:zero|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|` +
	`thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|twenty|thirty|forty|` +
	`fifty|sixty|seventy|eighty|ninety|hundred|thousand|dozen)`

var count = `\d+|` + numberWord + `(?:[\s-]+` + numberWord + `)*`

var (
	destRe  = regexp.MustCompile(`to\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)
	fromRe  = regexp.MustCompile(`from\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)
	groupRe = regexp.MustCompile(`(?i)\b(` + count + `)\b\s*(?:people|passengers|adults|friends|travelers)` +
		`|\bfamily(?:\s+[a-z]+)?\s+of\s+(` + count + `)\b`)
	daysRe  = regexp.MustCompile(`(?i)(\d+)\s*days`)
	digitRe = regexp.MustCompile(`^\d+$`)
)

// Rules is the fixed evaluation order. A later rule overwrites a field set
// by an earlier one.
var Rules = []Rule{
	{Name: "destination", Apply: captureRule(destRe, func(p *domain.TravelPreferences, v string) { p.Destination = v })},
	{Name: "departure", Apply: captureRule(fromRe, func(p *domain.TravelPreferences, v string) { p.DepartureLocation = v })},
	{Name: "group_size", Apply: groupSize},
	{Name: "budget", Apply: containsRule("budget", func(p *domain.TravelPreferences) { p.Budget = domain.BudgetBudget })},
	{Name: "luxury", Apply: containsRule("luxury", func(p *domain.TravelPreferences) { p.Budget = domain.BudgetLuxury })},
	{Name: "class_business", Apply: containsRule("business", func(p *domain.TravelPreferences) { p.TravelClass = domain.ClassBusiness })},
	{Name: "class_first", Apply: containsRule("first class", func(p *domain.TravelPreferences) { p.TravelClass = domain.ClassFirst })},
	{Name: "class_economy", Apply: containsRule("economy", func(p *domain.TravelPreferences) { p.TravelClass = domain.ClassEconomy })},
	{Name: "duration", Apply: duration},
}

// Extract never fails; fields it cannot detect stay at their zero value.
func Extract(text string) domain.TravelPreferences {
	var out domain.TravelPreferences
	for _, r := range Rules {
		if assign, ok := r.Apply(text); ok {
			assign(&out)
		}
	}
	return out
}

func captureRule(re *regexp.Regexp, set func(*domain.TravelPreferences, string)) func(string) (func(*domain.TravelPreferences), bool) {
	return func(text string) (func(*domain.TravelPreferences), bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return nil, false
		}
		v := m[1]
		return func(p *domain.TravelPreferences) { set(p, v) }, true
	}
}

func containsRule(needle string, set func(*domain.TravelPreferences)) func(string) (func(*domain.TravelPreferences), bool) {
	return func(text string) (func(*domain.TravelPreferences), bool) {
		if !strings.Contains(strings.ToLower(text), needle) {
			return nil, false
		}
		return set, true
	}
}

func groupSize(text string) (func(*domain.TravelPreferences), bool) {
	m := groupRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	var gs *domain.GroupSize
	if digitRe.MatchString(raw) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, false
		}
		gs = domain.GroupCount(n)
	} else {
		gs = domain.GroupWords(raw)
	}
	return func(p *domain.TravelPreferences) { p.GroupSize = gs }, true
}

// duration is recognised but not yet mapped to start/end dates.
func duration(text string) (func(*domain.TravelPreferences), bool) {
	if m := daysRe.FindStringSubmatch(text); m != nil {
		log.Debug().Str("days", m[1]).Msg("duration recognised; dates left to the planner")
	}
	return nil, false
}
