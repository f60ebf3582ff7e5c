package domain

import "context"

type RateClient interface {
	Latest(ctx context.Context, base string) (RateQuote, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Set stores v as JSON; ttlSec <= 0 keeps the key until it is overwritten.
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type ItineraryGenerator interface {
	Generate(ctx context.Context, prefs TravelPreferences, today string) (Itinerary, error)
	GenerateFromQuery(ctx context.Context, query, departure, today string) (Itinerary, error)
}

type WishlistRepository interface {
	Insert(ctx context.Context, item WishlistItem) error
	Delete(ctx context.Context, id, userID string) error
	ListByUser(ctx context.Context, userID string) ([]WishlistItem, error)
	FindByTitle(ctx context.Context, userID, destination, title string) (WishlistItem, error)
}
