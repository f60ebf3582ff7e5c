package gemini

import (
	"fmt"
	"strings"

	"tripgenie/internal/domain"
)

const outputContract = `Respond with JSON only, matching:
{
  "destination": "string",
  "tripSummary": "string",
  "flightOptions": [{"title": "string", "googleFlightsUrl": "string", "description": "string"}],
  "days": [{"day": 1, "date": "YYYY-MM-DD", "activities": {"morning": "string", "afternoon": "string", "evening": "string"}}],
  "travelTips": ["string"],
  "htmlContent": "HTML snippet without <html> or <body>, laid out as a vertical journey timeline"
}
Flight links use https://www.google.com/travel/flights?q=Flights%20to%20[Destination]%20from%20[Departure]%20on%20[Date]%20through%20[ReturnDate].
Give 2-3 flight options (best, cheapest, fastest). Quote prices in USD.`

func planPrompt(p domain.TravelPreferences, today string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a detailed travel itinerary for a trip from %s to %s.\n\nDetails:\n",
		orDefault(p.DepartureLocation, "an unspecified city"), orDefault(p.Destination, "a destination of your choice"))
	line := func(label, v string) {
		if v != "" {
			fmt.Fprintf(&b, "- %s: %s\n", label, v)
		}
	}
	if p.StartDate != "" || p.EndDate != "" {
		line("Dates", fmt.Sprintf("from %s to %s", orDefault(p.StartDate, "open"), orDefault(p.EndDate, "open")))
	}
	line("Budget", string(p.Budget))
	line("Travel Style", p.TravelStyle)
	line("Interests", strings.Join(p.Interests, ", "))
	if p.GroupSize != nil {
		line("Group Size", p.GroupSize.String())
	}
	line("Accommodation Preference", p.Accommodation)
	line("Transportation", p.Transportation)
	line("Travel Class", string(p.TravelClass))
	line("Date Flexibility", string(p.Flexibility))
	if p.NLPQuery != "" {
		fmt.Fprintf(&b, "- User's Natural Language Request: %q\n", p.NLPQuery)
		b.WriteString("Use the request to refine the plan while respecting the filters above.\n")
	}
	fmt.Fprintf(&b, "- Reference Date: %s\n\n", today)
	b.WriteString(outputContract)
	return b.String()
}

func geniePrompt(query, departure, today string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert travel planner. A user asked for a trip: %q.\n", query)
	if departure != "" {
		fmt.Fprintf(&b, "The user is departing from: %q.\n", departure)
	}
	fmt.Fprintf(&b, "Work out departure, destination, dates and budget from the request. "+
		"Fill missing details with reasonable assumptions relative to %s.\n\n", today)
	b.WriteString(outputContract)
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
