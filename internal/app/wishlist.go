package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tripgenie/internal/domain"
)

type WishlistService struct {
	repo     domain.WishlistRepository
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
	newID    func() string
}

func NewWishlistService(r domain.WishlistRepository, c domain.Cache, ttl time.Duration) *WishlistService {
	return &WishlistService{repo: r, cache: c, cacheTTL: ttl, now: time.Now, newID: uuid.NewString}
}

func wishlistKey(userID string) string { return "wishlist:" + userID }

// Add saves item for userID, assigning a fresh id and creation time.
func (s *WishlistService) Add(ctx context.Context, userID string, item domain.WishlistItem) (domain.WishlistItem, error) {
	if userID == "" {
		return domain.WishlistItem{}, domain.ErrUnauthorized
	}
	item.Destination = strings.TrimSpace(item.Destination)
	item.ItineraryTitle = strings.TrimSpace(item.ItineraryTitle)
	if item.Destination == "" || item.ItineraryTitle == "" {
		return domain.WishlistItem{}, fmt.Errorf("%w: destination and itineraryTitle are required", domain.ErrInvalidInput)
	}
	item.ID = s.newID()
	item.UserID = userID
	item.CreatedAt = s.now().UTC()
	if err := s.repo.Insert(ctx, item); err != nil {
		return domain.WishlistItem{}, fmt.Errorf("insert wishlist item: %w", err)
	}
	s.invalidate(ctx, userID)
	return item, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, id string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// List returns the user's items, newest first.
func (s *WishlistService) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	key := wishlistKey(userID)
	var out []domain.WishlistItem
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok && out != nil {
			return out, nil
		}
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.WishlistItem{}
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, items, int(s.cacheTTL.Seconds()))
	}
	return items, nil
}

// Toggle removes the item matching (destination, itineraryTitle) when it is
// saved, and saves it otherwise. It reports whether the item is now saved.
func (s *WishlistService) Toggle(ctx context.Context, userID string, item domain.WishlistItem) (bool, domain.WishlistItem, error) {
	existing, err := s.repo.FindByTitle(ctx, userID, strings.TrimSpace(item.Destination), strings.TrimSpace(item.ItineraryTitle))
	switch {
	case err == nil:
		if err := s.Remove(ctx, userID, existing.ID); err != nil {
			return false, domain.WishlistItem{}, err
		}
		return false, existing, nil
	case errors.Is(err, domain.ErrNotFound):
		saved, err := s.Add(ctx, userID, item)
		if err != nil {
			return false, domain.WishlistItem{}, err
		}
		return true, saved, nil
	default:
		return false, domain.WishlistItem{}, err
	}
}

func (s *WishlistService) IsSaved(ctx context.Context, userID, destination, title string) (bool, error) {
	_, err := s.repo.FindByTitle(ctx, userID, strings.TrimSpace(destination), strings.TrimSpace(title))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *WishlistService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, wishlistKey(userID))
	}
}
