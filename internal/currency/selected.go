package currency

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"tripgenie/internal/domain"
)

// SelectedCurrency returns the stored display currency for userKey, or the
// default when nothing usable is stored.
func (c *Converter) SelectedCurrency(ctx context.Context, userKey string) string {
	if c.cache == nil {
		return c.fallback
	}
	var code string
	ok, err := c.cache.Get(ctx, selectedKey(userKey), &code)
	if err != nil {
		log.Warn().Err(err).Str("user", userKey).Msg("selected currency unreadable")
		return c.fallback
	}
	if !ok {
		return c.fallback
	}
	if _, known := Lookup(code); !known {
		return c.fallback
	}
	return normalize(code)
}

func (c *Converter) SetSelectedCurrency(ctx context.Context, userKey, code string) error {
	info, ok := Lookup(code)
	if !ok {
		return domain.ErrUnsupportedCurrency
	}
	if c.cache == nil {
		return nil
	}
	if err := c.cache.Set(ctx, selectedKey(userKey), info.Code, 0); err != nil {
		return fmt.Errorf("store selected currency: %w", err)
	}
	return nil
}
