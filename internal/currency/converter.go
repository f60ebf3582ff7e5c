// Package currency owns the exchange-rate table, conversion, display
// formatting and in-text price rewriting.
package currency

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tripgenie/internal/adapters/observability"
	"tripgenie/internal/domain"
)

const DefaultTTL = 24 * time.Hour

type Converter struct {
	client   domain.RateClient
	cache    domain.Cache
	now      func() time.Time
	ttl      time.Duration
	fallback string

	mu    sync.RWMutex
	table domain.RateTable
}

type Option func(*Converter)

func WithClock(now func() time.Time) Option { return func(c *Converter) { c.now = now } }

func WithTTL(ttl time.Duration) Option {
	return func(c *Converter) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithDefaultCurrency sets the display currency returned for users with no
// stored preference.
func WithDefaultCurrency(code string) Option {
	return func(c *Converter) {
		if _, ok := Lookup(code); ok {
			c.fallback = normalize(code)
		}
	}
}

func NewConverter(client domain.RateClient, cache domain.Cache, opts ...Option) *Converter {
	c := &Converter{
		client:   client,
		cache:    cache,
		now:      time.Now,
		ttl:      DefaultTTL,
		fallback: domain.BaseCurrency,
		table:    domain.RateTable{Base: domain.BaseCurrency, Rates: map[string]float64{}},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Initialize loads a fresh cached table, else fetches from the rate-quote
// service, else installs the static fallback table.
func (c *Converter) Initialize(ctx context.Context) domain.RateSource {
	if t, ok := c.loadCached(ctx, domain.BaseCurrency); ok {
		c.install(t)
		return domain.SourceCache
	}
	return c.Refresh(ctx, domain.BaseCurrency)
}

// Refresh force-fetches rates against base; an empty base means the current one.
func (c *Converter) Refresh(ctx context.Context, base string) domain.RateSource {
	base = normalize(base)
	if base == "" {
		base = c.Rates().Base
	}
	q, err := c.client.Latest(ctx, base)
	if err != nil || len(q.Rates) == 0 {
		if cur := c.Rates(); cur.Base == base && c.fresh(cur) {
			log.Warn().Err(err).Str("base", base).Msg("rate fetch failed, keeping current rates")
			return cur.Source
		}
		if t, ok := c.loadCached(ctx, base); ok {
			log.Warn().Err(err).Str("base", base).Msg("rate fetch failed, using cached rates")
			c.install(t)
			return domain.SourceCache
		}
		log.Warn().Err(err).Str("base", base).Msg("rate fetch failed, using fallback rates")
		c.install(domain.RateTable{
			Base:      domain.BaseCurrency,
			Rates:     copyRates(FallbackRates),
			FetchedAt: c.now(),
			Source:    domain.SourceFallback,
		})
		return domain.SourceFallback
	}
	t := domain.RateTable{Base: base, Rates: copyRates(q.Rates), FetchedAt: c.now(), Source: domain.SourceRemote}
	c.install(t)
	c.storeCached(ctx, t)
	return domain.SourceRemote
}

// fresh reports whether t came from the rate-quote service within the TTL.
func (c *Converter) fresh(t domain.RateTable) bool {
	if t.Source != domain.SourceRemote && t.Source != domain.SourceCache {
		return false
	}
	return c.now().Sub(t.FetchedAt) < c.ttl
}

// sync adopts a cached table newer than the installed one (written by
// ratesync or another replica), else refreshes.
func (c *Converter) sync(ctx context.Context) domain.RateSource {
	cur := c.Rates()
	if t, ok := c.loadCached(ctx, cur.Base); ok && t.FetchedAt.After(cur.FetchedAt) {
		c.install(t)
		return domain.SourceCache
	}
	return c.Refresh(ctx, cur.Base)
}

func (c *Converter) install(t domain.RateTable) {
	c.mu.Lock()
	c.table = t
	c.mu.Unlock()
	observability.ObserveRateSource(string(t.Source))
}

// Rates returns a snapshot of the installed table.
func (c *Converter) Rates() domain.RateTable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t := c.table
	t.Rates = copyRates(c.table.Rates)
	return t
}

func (c *Converter) Degraded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.Source == domain.SourceFallback
}

// Convert rounds to the nearest whole unit. Missing rates count as 1.
func (c *Converter) Convert(amount float64, from, to string) float64 {
	from, to = normalize(from), normalize(to)
	if from == to {
		return amount
	}
	c.mu.RLock()
	rf, rt := rateOr1(c.table.Rates, from), rateOr1(c.table.Rates, to)
	c.mu.RUnlock()
	return jsRound(amount / rf * rt)
}

// ConvertStrict is Convert that refuses currencies missing from the table.
func (c *Converter) ConvertStrict(amount float64, from, to string) (float64, error) {
	from, to = normalize(from), normalize(to)
	if from == to {
		return amount, nil
	}
	c.mu.RLock()
	rf, okf := c.table.Rates[from]
	rt, okt := c.table.Rates[to]
	c.mu.RUnlock()
	if !okf || !okt || rf == 0 {
		return 0, domain.ErrUnsupportedCurrency
	}
	return jsRound(amount / rf * rt), nil
}

func (c *Converter) ExchangeRate(from, to string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return rateOr1(c.table.Rates, normalize(to)) / rateOr1(c.table.Rates, normalize(from))
}

func (c *Converter) SupportedCurrencies() []domain.CurrencyInfo {
	out := make([]domain.CurrencyInfo, len(Supported))
	copy(out, Supported)
	return out
}

// RunRefresher keeps the current base up to date every interval until ctx
// is done, preferring a newer cached table over a remote fetch.
func (c *Converter) RunRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			src := c.sync(ctx)
			log.Debug().Str("source", string(src)).Msg("rates refreshed")
		}
	}
}

func ratesKey(base string) string { return "rates:" + base }
func stampKey(base string) string { return "rates:" + base + ":ts" }
func selectedKey(user string) string { return "currency:selected:" + user }

func (c *Converter) loadCached(ctx context.Context, base string) (domain.RateTable, bool) {
	if c.cache == nil {
		return domain.RateTable{}, false
	}
	var ts int64
	ok, err := c.cache.Get(ctx, stampKey(base), &ts)
	if err != nil {
		log.Warn().Err(err).Str("base", base).Msg("malformed rate timestamp in cache")
		return domain.RateTable{}, false
	}
	if !ok {
		return domain.RateTable{}, false
	}
	fetched := time.UnixMilli(ts)
	if c.now().Sub(fetched) >= c.ttl {
		return domain.RateTable{}, false
	}
	var rates map[string]float64
	ok, err = c.cache.Get(ctx, ratesKey(base), &rates)
	if err != nil {
		log.Warn().Err(err).Str("base", base).Msg("malformed rate table in cache")
		return domain.RateTable{}, false
	}
	if !ok || len(rates) == 0 {
		return domain.RateTable{}, false
	}
	return domain.RateTable{Base: base, Rates: rates, FetchedAt: fetched, Source: domain.SourceCache}, true
}

func (c *Converter) storeCached(ctx context.Context, t domain.RateTable) {
	if c.cache == nil {
		return
	}
	ttl := int(c.ttl / time.Second)
	if err := c.cache.Set(ctx, ratesKey(t.Base), t.Rates, ttl); err != nil {
		log.Warn().Err(err).Str("base", t.Base).Msg("rate cache write failed")
		return
	}
	if err := c.cache.Set(ctx, stampKey(t.Base), t.FetchedAt.UnixMilli(), ttl); err != nil {
		log.Warn().Err(err).Str("base", t.Base).Msg("rate cache write failed")
	}
}

func rateOr1(rates map[string]float64, code string) float64 {
	if r, ok := rates[code]; ok && r != 0 {
		return r
	}
	return 1
}

// jsRound rounds half up like Math.round.
func jsRound(x float64) float64 { return math.Floor(x + 0.5) }

func copyRates(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func parseAmount(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
