package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"tripgenie/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valJSON(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return string(b), nil
}

// Repo persists wishlist items in the wishlists table.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Insert(ctx context.Context, it domain.WishlistItem) error {
	flight, err := valJSON(it.FlightData)
	if err != nil {
		return fmt.Errorf("encode flight data: %w", err)
	}
	itin, err := valJSON(it.Itinerary)
	if err != nil {
		return fmt.Errorf("encode itinerary: %w", err)
	}
	meta, err := valJSON(it.SearchMetadata)
	if err != nil {
		return fmt.Errorf("encode search metadata: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertWishlistSQL,
		it.ID,
		it.UserID,
		it.Destination,
		it.ItineraryTitle,
		flight,
		itin,
		meta,
		valStr(it.ImageURL),
		it.CreatedAt.UTC(),
	)
	return err
}

// Delete removes id if it belongs to userID. Missing rows are ErrNotFound;
// rows owned by someone else are ErrForbidden.
func (r *Repo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, deleteWishlistSQL, id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	var owner string
	err = r.db.QueryRowContext(ctx, ownerOfWishlistSQL, id).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrNotFound
	case err != nil:
		return err
	default:
		return domain.ErrForbidden
	}
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	rows, err := r.db.QueryContext(ctx, listWishlistByUserSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.WishlistItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) FindByTitle(ctx context.Context, userID, destination, title string) (domain.WishlistItem, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, findWishlistByTitleSQL, userID, destination, title))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WishlistItem{}, domain.ErrNotFound
	}
	return it, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (domain.WishlistItem, error) {
	var (
		it           domain.WishlistItem
		flight, meta []byte
		itin         []byte
		image        sql.NullString
	)
	if err := s.Scan(&it.ID, &it.UserID, &it.Destination, &it.ItineraryTitle,
		&flight, &itin, &meta, &image, &it.CreatedAt); err != nil {
		return domain.WishlistItem{}, err
	}
	if err := json.Unmarshal(flight, &it.FlightData); err != nil {
		return domain.WishlistItem{}, fmt.Errorf("decode flight data %s: %w", it.ID, err)
	}
	if err := json.Unmarshal(meta, &it.SearchMetadata); err != nil {
		return domain.WishlistItem{}, fmt.Errorf("decode search metadata %s: %w", it.ID, err)
	}
	if len(itin) > 0 {
		var x domain.Itinerary
		if err := json.Unmarshal(itin, &x); err != nil {
			return domain.WishlistItem{}, fmt.Errorf("decode itinerary %s: %w", it.ID, err)
		}
		it.Itinerary = &x
	}
	it.ImageURL = image.String
	return it, nil
}
