package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tripgenie/internal/adapters/observability"
	"tripgenie/internal/domain"
	"tripgenie/internal/extract"
)

// PriceRewriter converts price mentions in free text into one currency.
type PriceRewriter interface {
	RewritePricesInText(text, target string) string
}

type PlanRequest struct {
	Preferences domain.TravelPreferences `json:"preferences"`
	Currency    string                   `json:"currency,omitempty"`
}

type GenieRequest struct {
	Query             string `json:"query"`
	DepartureLocation string `json:"departureLocation,omitempty"`
	Currency          string `json:"currency,omitempty"`
}

type PlanResult struct {
	Preferences domain.TravelPreferences `json:"preferences"`
	Itinerary   domain.Itinerary         `json:"itinerary"`
	Currency    string                   `json:"currency"`
}

type Planner struct {
	gen    domain.ItineraryGenerator
	prices PriceRewriter
	now    func() time.Time
}

func NewPlanner(gen domain.ItineraryGenerator, prices PriceRewriter) *Planner {
	return &Planner{gen: gen, prices: prices, now: time.Now}
}

// Plan runs the structured flow. Fields hinted in the free-text nlpQuery fill
// gaps in the form but never override what the user filled in explicitly.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (PlanResult, error) {
	prefs := extract.Merge(req.Preferences, extract.Extract(req.Preferences.NLPQuery))
	if strings.TrimSpace(prefs.Destination) == "" {
		return PlanResult{}, fmt.Errorf("%w: destination is required", domain.ErrInvalidInput)
	}

	it, err := p.gen.Generate(ctx, prefs, p.today())
	observability.ObserveGeneration("plan", err)
	if err != nil {
		log.Warn().Err(err).Str("destination", prefs.Destination).Msg("itinerary generation failed")
		return PlanResult{}, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	if it.Destination == "" {
		it.Destination = prefs.Destination
	}
	return PlanResult{Preferences: prefs, Itinerary: p.localize(it, req.Currency), Currency: currencyOrBase(req.Currency)}, nil
}

// Genie runs the free-text flow.
func (p *Planner) Genie(ctx context.Context, req GenieRequest) (PlanResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return PlanResult{}, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	prefs := extract.Merge(domain.TravelPreferences{DepartureLocation: req.DepartureLocation, NLPQuery: query}, extract.Extract(query))

	it, err := p.gen.GenerateFromQuery(ctx, query, prefs.DepartureLocation, p.today())
	observability.ObserveGeneration("genie", err)
	if err != nil {
		log.Warn().Err(err).Msg("genie generation failed")
		return PlanResult{}, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	if prefs.Destination == "" {
		prefs.Destination = it.Destination
	}
	return PlanResult{Preferences: prefs, Itinerary: p.localize(it, req.Currency), Currency: currencyOrBase(req.Currency)}, nil
}

func (p *Planner) today() string { return p.now().Format("2006-01-02") }

// localize rewrites every price mention in the itinerary's text into code.
func (p *Planner) localize(it domain.Itinerary, code string) domain.Itinerary {
	code = currencyOrBase(code)
	rw := func(s string) string { return p.prices.RewritePricesInText(s, code) }

	it.TripSummary = rw(it.TripSummary)
	it.HTMLContent = rw(it.HTMLContent)
	if len(it.FlightOptions) > 0 {
		fo := make([]domain.FlightOption, len(it.FlightOptions))
		for i, f := range it.FlightOptions {
			f.Description = rw(f.Description)
			f.Price = rw(f.Price)
			fo[i] = f
		}
		it.FlightOptions = fo
	}
	if len(it.Days) > 0 {
		days := make([]domain.Day, len(it.Days))
		for i, d := range it.Days {
			d.Activities.Morning = rw(d.Activities.Morning)
			d.Activities.Afternoon = rw(d.Activities.Afternoon)
			d.Activities.Evening = rw(d.Activities.Evening)
			days[i] = d
		}
		it.Days = days
	}
	if len(it.TravelTips) > 0 {
		tips := make([]string, len(it.TravelTips))
		for i, t := range it.TravelTips {
			tips[i] = rw(t)
		}
		it.TravelTips = tips
	}
	return it
}

func currencyOrBase(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.BaseCurrency
	}
	return code
}
