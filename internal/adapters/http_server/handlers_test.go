package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tripgenie/internal/adapters/auth"
	httpserver "tripgenie/internal/adapters/http_server"
	"tripgenie/internal/app"
	"tripgenie/internal/currency"
	"tripgenie/internal/domain"
)

// ---- fakes ----

type downRates struct{}

func (downRates) Latest(context.Context, string) (domain.RateQuote, error) {
	return domain.RateQuote{}, domain.ErrQuoteFailed
}

type memCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) Set(_ context.Context, key string, v any, _ int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = map[string][]byte{}
	}
	c.m[key] = b
	return nil
}

func (c *memCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
	return nil
}

type stubGen struct {
	mu  sync.Mutex
	it  domain.Itinerary
	err error
}

func (g *stubGen) fail(err error) {
	g.mu.Lock()
	g.err = err
	g.mu.Unlock()
}

func (g *stubGen) Generate(context.Context, domain.TravelPreferences, string) (domain.Itinerary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.it, g.err
}

func (g *stubGen) GenerateFromQuery(context.Context, string, string, string) (domain.Itinerary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.it, g.err
}

type memWishRepo struct {
	mu    sync.Mutex
	items []domain.WishlistItem
}

func (r *memWishRepo) Insert(_ context.Context, it domain.WishlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]domain.WishlistItem{it}, r.items...)
	return nil
}

func (r *memWishRepo) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items {
		if it.ID != id {
			continue
		}
		if it.UserID != userID {
			return domain.ErrForbidden
		}
		r.items = append(r.items[:i], r.items[i+1:]...)
		return nil
	}
	return domain.ErrNotFound
}

func (r *memWishRepo) ListByUser(_ context.Context, userID string) ([]domain.WishlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WishlistItem
	for _, it := range r.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *memWishRepo) FindByTitle(_ context.Context, userID, dest, title string) (domain.WishlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.UserID == userID && it.Destination == dest && it.ItineraryTitle == title {
			return it, nil
		}
	}
	return domain.WishlistItem{}, domain.ErrNotFound
}

// stubVerifier accepts "token-<uid>".
type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, tok string) (*auth.Token, error) {
	if uid, ok := strings.CutPrefix(tok, "token-"); ok && uid != "" {
		return &auth.Token{UID: uid}, nil
	}
	return nil, errors.New("invalid token")
}

// ---- harness ----

type harness struct {
	srv *httptest.Server
	gen *stubGen
}

func newHarness(t *testing.T, withAuth bool) *harness {
	t.Helper()
	conv := currency.NewConverter(downRates{}, &memCache{})
	conv.Initialize(context.Background())

	gen := &stubGen{it: domain.Itinerary{
		Destination: "Paris",
		Days:        []domain.Day{{Day: 1}},
		HTMLContent: "<p>Flight: $1,000 / KSh 130,000</p>",
	}}
	h := &httpserver.Handlers{
		Conv:     conv,
		Planner:  app.NewPlanner(gen, conv),
		Wishlist: app.NewWishlistService(&memWishRepo{}, nil, time.Minute),
	}
	if withAuth {
		h.Verifier = stubVerifier{}
	}
	s := httpserver.New(5 * time.Second)
	s.MountHandlers(h)
	ts := httptest.NewServer(s.Mux())
	t.Cleanup(ts.Close)
	return &harness{srv: ts, gen: gen}
}

func (h *harness) do(t *testing.T, method, path, token, body string, hdr ...string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	return v
}

// ---- tests ----

func TestHealthz_ReportsDegradedRates(t *testing.T) {
	h := newHarness(t, false)
	resp, body := h.do(t, "GET", "/healthz", "", "")
	if resp.StatusCode != 200 {
		t.Fatalf("status %d", resp.StatusCode)
	}
	got := decode[map[string]any](t, body)
	if got["ratesDegraded"] != true {
		t.Fatalf("body: %s", body)
	}
}

func TestExtractPreferences(t *testing.T) {
	h := newHarness(t, false)
	resp, body := h.do(t, "POST", "/v1/preferences/extract", "",
		`{"text":"Family trip of 4 to Paris from London on a budget","explicit":{"departureLocation":"Berlin"}}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	got := decode[domain.TravelPreferences](t, body)
	if got.Destination != "Paris" || got.DepartureLocation != "Berlin" || got.Budget != domain.BudgetBudget {
		t.Fatalf("prefs: %+v", got)
	}
	if got.GroupSize == nil || got.GroupSize.Count != 4 {
		t.Fatalf("group size: %+v", got.GroupSize)
	}

	resp, _ = h.do(t, "POST", "/v1/preferences/extract", "", `not json`)
	if resp.StatusCode != 400 || resp.Header.Get("Content-Type") != "application/problem+json" {
		t.Fatalf("bad body: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestConvertAndFormat(t *testing.T) {
	h := newHarness(t, false)

	resp, body := h.do(t, "GET", "/v1/currencies/convert?amount=100&from=usd&to=KES", "", "")
	if resp.StatusCode != 200 {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	got := decode[map[string]any](t, body)
	if got["result"] != 12900.0 || got["formatted"] != "KSh 12,900" || got["rate"] != 129.0 {
		t.Fatalf("convert: %s", body)
	}

	resp, _ = h.do(t, "GET", "/v1/currencies/convert?amount=100&from=USD&to=XYZ&strict=true", "", "")
	if resp.StatusCode != 400 {
		t.Fatalf("strict unsupported: %d", resp.StatusCode)
	}
	resp, _ = h.do(t, "GET", "/v1/currencies/convert?amount=lots&from=USD&to=KES", "", "")
	if resp.StatusCode != 400 {
		t.Fatalf("bad amount: %d", resp.StatusCode)
	}

	_, body = h.do(t, "GET", "/v1/currencies/format?amount=129000&code=KES", "", "")
	if f := decode[map[string]string](t, body)["formatted"]; f != "KSh 129,000" {
		t.Fatalf("format: %q", f)
	}
}

func TestRewrite(t *testing.T) {
	h := newHarness(t, false)
	resp, body := h.do(t, "POST", "/v1/currencies/rewrite", "", `{"text":"Flight: $1,000 / KSh 130,000","currency":"KES"}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	if got := decode[map[string]string](t, body)["text"]; got != "Flight: KSh 129,000" {
		t.Fatalf("text = %q", got)
	}

	resp, _ = h.do(t, "POST", "/v1/currencies/rewrite", "", `{"text":"$5"}`)
	if resp.StatusCode != 400 {
		t.Fatalf("missing currency: %d", resp.StatusCode)
	}
}

func TestRates_ETag(t *testing.T) {
	h := newHarness(t, false)
	resp, body := h.do(t, "GET", "/v1/currencies/rates", "", "")
	if resp.StatusCode != 200 {
		t.Fatalf("status %d", resp.StatusCode)
	}
	got := decode[map[string]any](t, body)
	if got["source"] != "fallback" || got["base"] != "USD" {
		t.Fatalf("rates: %s", body)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	resp, _ = h.do(t, "GET", "/v1/currencies/rates", "", "", "If-None-Match", etag)
	if resp.StatusCode != http.StatusNotModified {
		t.Fatalf("conditional GET: %d", resp.StatusCode)
	}

	resp, _ = h.do(t, "POST", "/v1/currencies/rates/refresh?base=XYZ", "", "")
	if resp.StatusCode != 400 {
		t.Fatalf("refresh unsupported base: %d", resp.StatusCode)
	}
	resp, body = h.do(t, "POST", "/v1/currencies/rates/refresh", "", "")
	if resp.StatusCode != 200 || decode[map[string]any](t, body)["source"] != "fallback" {
		t.Fatalf("refresh: %d %s", resp.StatusCode, body)
	}
}

func TestSelectedCurrency(t *testing.T) {
	h := newHarness(t, true)

	if resp, _ := h.do(t, "GET", "/v1/me/currency", "", ""); resp.StatusCode != 401 {
		t.Fatalf("no token: %d", resp.StatusCode)
	}
	if resp, _ := h.do(t, "GET", "/v1/me/currency", "garbage", ""); resp.StatusCode != 401 {
		t.Fatalf("bad token: %d", resp.StatusCode)
	}

	_, body := h.do(t, "GET", "/v1/me/currency", "token-u1", "")
	if decode[domain.CurrencyInfo](t, body).Code != "USD" {
		t.Fatalf("default: %s", body)
	}
	if resp, _ := h.do(t, "PUT", "/v1/me/currency", "token-u1", `{"currency":"XYZ"}`); resp.StatusCode != 400 {
		t.Fatalf("unsupported: %d", resp.StatusCode)
	}
	if resp, _ := h.do(t, "PUT", "/v1/me/currency", "token-u1", `{"currency":"kes"}`); resp.StatusCode != 200 {
		t.Fatalf("put: %d", resp.StatusCode)
	}

	_, body = h.do(t, "GET", "/v1/currencies", "token-u1", "")
	list := decode[struct {
		Currencies []domain.CurrencyInfo `json:"currencies"`
		Selected   domain.CurrencyInfo   `json:"selected"`
	}](t, body)
	if list.Selected.Code != "KES" || len(list.Currencies) == 0 {
		t.Fatalf("currencies: %s", body)
	}
	_, body = h.do(t, "GET", "/v1/currencies", "", "")
	if !strings.Contains(string(body), `"selected":{"code":"USD"`) {
		t.Fatalf("anonymous selection: %s", body)
	}

	// plan without explicit currency follows the stored selection
	resp, body := h.do(t, "POST", "/v1/itineraries", "token-u1", `{"preferences":{"destination":"Paris"}}`)
	if resp.StatusCode != 200 {
		t.Fatalf("plan: %d %s", resp.StatusCode, body)
	}
	if got := decode[app.PlanResult](t, body); got.Currency != "KES" || got.Itinerary.HTMLContent != "<p>Flight: KSh 129,000</p>" {
		t.Fatalf("plan result: %+v", got)
	}
}

func TestItineraries(t *testing.T) {
	h := newHarness(t, false)

	resp, body := h.do(t, "POST", "/v1/itineraries", "",
		`{"preferences":{"nlpQuery":"Family trip of 4 to Paris from London on a budget"},"currency":"KES"}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	got := decode[app.PlanResult](t, body)
	if got.Itinerary.HTMLContent != "<p>Flight: KSh 129,000</p>" {
		t.Fatalf("html = %q", got.Itinerary.HTMLContent)
	}
	if got.Preferences.Destination != "Paris" || got.Preferences.GroupSize == nil || got.Preferences.GroupSize.Count != 4 {
		t.Fatalf("prefs: %+v", got.Preferences)
	}

	resp, _ = h.do(t, "POST", "/v1/itineraries", "", `{"preferences":{}}`)
	if resp.StatusCode != 400 {
		t.Fatalf("missing destination: %d", resp.StatusCode)
	}
	resp, _ = h.do(t, "POST", "/v1/itineraries/genie", "", `{"query":""}`)
	if resp.StatusCode != 400 {
		t.Fatalf("empty genie query: %d", resp.StatusCode)
	}

	h.gen.fail(errors.New("model overloaded"))
	resp, body = h.do(t, "POST", "/v1/itineraries/genie", "", `{"query":"a week in Lisbon"}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("generation failure: %d %s", resp.StatusCode, body)
	}
}

func TestWishlist(t *testing.T) {
	h := newHarness(t, true)

	if resp, _ := h.do(t, "GET", "/v1/wishlist", "", ""); resp.StatusCode != 401 {
		t.Fatalf("anonymous list: %d", resp.StatusCode)
	}

	resp, body := h.do(t, "POST", "/v1/wishlist", "token-u1", `{"destination":"Paris","itineraryTitle":"Spring","flightData":{"price":"$450"}}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: %d %s", resp.StatusCode, body)
	}
	item := decode[domain.WishlistItem](t, body)
	if item.ID == "" || item.UserID != "u1" || resp.Header.Get("Location") != "/v1/wishlist/"+item.ID {
		t.Fatalf("added: %+v", item)
	}

	_, body = h.do(t, "GET", "/v1/wishlist", "token-u1", "")
	if list := decode[struct{ Items []domain.WishlistItem }](t, body); len(list.Items) != 1 {
		t.Fatalf("list: %s", body)
	}
	_, body = h.do(t, "GET", "/v1/wishlist/saved?destination=Paris&title=Spring", "token-u1", "")
	if !decode[map[string]bool](t, body)["saved"] {
		t.Fatalf("saved: %s", body)
	}

	if resp, _ := h.do(t, "DELETE", "/v1/wishlist/"+item.ID, "token-u2", ""); resp.StatusCode != 403 {
		t.Fatalf("foreign delete: %d", resp.StatusCode)
	}
	if resp, _ := h.do(t, "DELETE", "/v1/wishlist/"+item.ID, "token-u1", ""); resp.StatusCode != 204 {
		t.Fatalf("delete: %d", resp.StatusCode)
	}
	if resp, _ := h.do(t, "DELETE", "/v1/wishlist/"+item.ID, "token-u1", ""); resp.StatusCode != 404 {
		t.Fatalf("second delete: %d", resp.StatusCode)
	}

	toggle := `{"destination":"Nairobi","itineraryTitle":"Safari"}`
	_, body = h.do(t, "POST", "/v1/wishlist/toggle", "token-u1", toggle)
	if !decode[map[string]any](t, body)["saved"].(bool) {
		t.Fatalf("toggle on: %s", body)
	}
	_, body = h.do(t, "POST", "/v1/wishlist/toggle", "token-u1", toggle)
	if decode[map[string]any](t, body)["saved"].(bool) {
		t.Fatalf("toggle off: %s", body)
	}
}

func TestAuthRoutesNotMountedWithoutVerifier(t *testing.T) {
	h := newHarness(t, false)
	if resp, _ := h.do(t, "GET", "/v1/wishlist", "token-u1", ""); resp.StatusCode != 404 {
		t.Fatalf("wishlist without auth configured: %d", resp.StatusCode)
	}
}
