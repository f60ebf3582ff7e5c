package domain

import "time"

type Itinerary struct {
	Destination   string         `json:"destination"`
	TripSummary   string         `json:"tripSummary"`
	FlightOptions []FlightOption `json:"flightOptions,omitempty"`
	Days          []Day          `json:"days"`
	TravelTips    []string       `json:"travelTips"`
	HTMLContent   string         `json:"htmlContent"`
}

type FlightOption struct {
	Title            string `json:"title"`
	GoogleFlightsURL string `json:"googleFlightsUrl"`
	Description      string `json:"description"`
	Price            string `json:"price,omitempty"`
}

type Day struct {
	Day        int        `json:"day"`
	Date       string     `json:"date"`
	Activities Activities `json:"activities"`
}

type Activities struct {
	Morning   string `json:"morning"`
	Afternoon string `json:"afternoon"`
	Evening   string `json:"evening"`
}

type WishlistItem struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	Destination    string         `json:"destination"`
	ItineraryTitle string         `json:"itineraryTitle"`
	FlightData     FlightData     `json:"flightData"`
	Itinerary      *Itinerary     `json:"itinerary,omitempty"`
	SearchMetadata SearchMetadata `json:"searchMetadata"`
	ImageURL       string         `json:"imageUrl,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

type FlightData struct {
	Price            string `json:"price"`
	Airline          string `json:"airline"`
	DepartureDate    string `json:"departureDate"`
	ReturnDate       string `json:"returnDate"`
	GoogleFlightsURL string `json:"googleFlightsUrl,omitempty"`
}

type SearchMetadata struct {
	Prompt     string `json:"prompt"`
	Budget     string `json:"budget"`
	Passengers int    `json:"passengers"`
}
