// Package ratequote talks to the open exchange-rate service
// (GET <base-url>/<BASE> → {"result":"success","rates":{...}}).
package ratequote

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tripgenie/internal/adapters/observability"
	"tripgenie/internal/domain"
)

const DefaultBaseURL = "https://open.er-api.com/v6/latest"

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

var ErrNotFound = errors.New("ratequote: unknown base currency")

// Latest returns the current rates against base.
func (c *Client) Latest(ctx context.Context, base string) (domain.RateQuote, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = domain.BaseCurrency
	}
	var q domain.RateQuote
	start := time.Now()
	status, err := c.get(ctx, c.base+"/"+base, &q)
	observability.ObserveExternal("ratequote", "latest", status, time.Since(start))
	if err != nil {
		return domain.RateQuote{}, fmt.Errorf("latest %s: %w", base, err)
	}
	if q.Result != "success" {
		return domain.RateQuote{}, fmt.Errorf("latest %s: result %q: %w", base, q.Result, domain.ErrQuoteFailed)
	}
	if len(q.Rates) == 0 {
		return domain.RateQuote{}, fmt.Errorf("latest %s: empty rates: %w", base, domain.ErrQuoteFailed)
	}
	return q, nil
}

// get performs a rate-limited GET, retrying transport errors, 429 and 5xx
// (honouring Retry-After), and decodes the body into out. It returns the
// last HTTP status seen, or 0 when no response arrived.
func (c *Client) get(ctx context.Context, url string, out any) (int, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return 0, err
	}

	var lastErr error
	status := 0
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "tripgenie/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return status, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return status, ctx.Err()
			}
			return status, lastErr
		}
		status = resp.StatusCode

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return status, fmt.Errorf("decode: %w", err)
			}
			return status, nil

		case http.StatusNotFound:
			resp.Body.Close()
			return status, ErrNotFound

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return status, ctx.Err()
			}
			return status, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return status, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return status, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After as seconds or an HTTP date; 0 when absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
