package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"tripgenie/internal/adapters/auth"
	"tripgenie/internal/app"
	"tripgenie/internal/currency"
	"tripgenie/internal/domain"
	"tripgenie/internal/extract"
)

const maxBodyBytes = 1 << 20

// Handlers wires the use-case services to HTTP. Planner, Wishlist and
// Verifier are optional; their routes are only mounted when set.
type Handlers struct {
	Conv     *currency.Converter
	Planner  *app.Planner
	Wishlist *app.WishlistService
	Verifier auth.TokenVerifier
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.health)

	s.mux.Post("/v1/preferences/extract", h.extractPreferences)

	s.mux.Route("/v1/currencies", func(r chi.Router) {
		r.With(OptionalAuth(h.Verifier)).Get("/", h.listCurrencies)
		r.Get("/rates", h.getRates)
		r.Post("/rates/refresh", h.refreshRates)
		r.Get("/convert", h.convert)
		r.Get("/format", h.format)
		r.Post("/rewrite", h.rewrite)
	})

	if h.Planner != nil {
		s.mux.With(OptionalAuth(h.Verifier)).Post("/v1/itineraries", h.plan)
		s.mux.With(OptionalAuth(h.Verifier)).Post("/v1/itineraries/genie", h.genie)
	}

	if h.Verifier == nil {
		return
	}
	s.mux.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.Verifier))
		r.Get("/v1/me/currency", h.getMyCurrency)
		r.Put("/v1/me/currency", h.putMyCurrency)
		if h.Wishlist != nil {
			r.Get("/v1/wishlist", h.listWishlist)
			r.Post("/v1/wishlist", h.addWishlist)
			r.Post("/v1/wishlist/toggle", h.toggleWishlist)
			r.Get("/v1/wishlist/saved", h.isSaved)
			r.Delete("/v1/wishlist/{id}", h.removeWishlist)
		}
	})
}

// ---- response helpers ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain sentinels onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeProblem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	case errors.Is(err, domain.ErrUnsupportedCurrency):
		writeProblem(w, http.StatusBadRequest, "Unsupported Currency", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrGenerationFailed), errors.Is(err, domain.ErrQuoteFailed):
		writeProblem(w, http.StatusBadGateway, "Upstream Failure", err.Error())
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "unexpected error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeCacheable answers with a weak ETag and honours If-None-Match.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		detail := "request body must be valid JSON"
		if errors.Is(err, io.EOF) {
			detail = "request body is empty"
		}
		writeProblem(w, http.StatusBadRequest, "Invalid Body", detail)
		return false
	}
	return true
}

func parseAmount(w http.ResponseWriter, raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		writeProblem(w, http.StatusBadRequest, "Invalid amount", "amount must be a number")
		return 0, false
	}
	return v, true
}

func uid(r *http.Request) string {
	id, _ := auth.UID(r.Context())
	return id
}

// ---- health & preferences ----

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "ratesDegraded": h.Conv.Degraded()})
}

func (h *Handlers) extractPreferences(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text     string                    `json:"text"`
		Explicit *domain.TravelPreferences `json:"explicit,omitempty"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	out := extract.Extract(in.Text)
	if in.Explicit != nil {
		out = extract.Merge(*in.Explicit, out)
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- currencies ----

func (h *Handlers) listCurrencies(w http.ResponseWriter, r *http.Request) {
	selected := domain.BaseCurrency
	if id := uid(r); id != "" {
		selected = h.Conv.SelectedCurrency(r.Context(), id)
	}
	writeCacheable(w, r, map[string]any{
		"currencies": h.Conv.SupportedCurrencies(),
		"selected":   currency.LookupOrDefault(selected),
	})
}

func (h *Handlers) getRates(w http.ResponseWriter, r *http.Request) {
	t := h.Conv.Rates()
	writeCacheable(w, r, map[string]any{
		"base":      t.Base,
		"rates":     t.Rates,
		"fetchedAt": t.FetchedAt,
		"source":    t.Source,
		"degraded":  t.Source == domain.SourceFallback,
	})
}

func (h *Handlers) refreshRates(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	if base != "" {
		if _, ok := currency.Lookup(base); !ok {
			writeError(w, fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, base))
			return
		}
	}
	src := h.Conv.Refresh(r.Context(), base)
	t := h.Conv.Rates()
	writeJSON(w, http.StatusOK, map[string]any{"base": t.Base, "source": src, "fetchedAt": t.FetchedAt, "degraded": src == domain.SourceFallback})
}

func (h *Handlers) convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, ok := parseAmount(w, q.Get("amount"))
	if !ok {
		return
	}
	from, to := strings.ToUpper(q.Get("from")), strings.ToUpper(q.Get("to"))
	if from == "" || to == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "from and to are required")
		return
	}

	var result float64
	if strict, _ := strconv.ParseBool(q.Get("strict")); strict {
		v, err := h.Conv.ConvertStrict(amount, from, to)
		if err != nil {
			writeError(w, fmt.Errorf("%w: %s -> %s", err, from, to))
			return
		}
		result = v
	} else {
		result = h.Conv.Convert(amount, from, to)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"amount":    amount,
		"from":      from,
		"to":        to,
		"result":    result,
		"rate":      h.Conv.ExchangeRate(from, to),
		"formatted": currency.FormatAmount(result, to),
	})
}

func (h *Handlers) format(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, ok := parseAmount(w, q.Get("amount"))
	if !ok {
		return
	}
	code := q.Get("code")
	if code == "" {
		code = domain.BaseCurrency
	}
	writeJSON(w, http.StatusOK, map[string]string{"formatted": currency.FormatAmount(amount, code)})
}

func (h *Handlers) rewrite(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text     string `json:"text"`
		Currency string `json:"currency"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Currency) == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "currency is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": h.Conv.RewritePricesInText(in.Text, in.Currency)})
}

func (h *Handlers) getMyCurrency(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currency.LookupOrDefault(h.Conv.SelectedCurrency(r.Context(), uid(r))))
}

func (h *Handlers) putMyCurrency(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Currency string `json:"currency"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.Conv.SetSelectedCurrency(r.Context(), uid(r), in.Currency); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, currency.LookupOrDefault(in.Currency))
}

// ---- itineraries ----

// selectedOr falls back to the caller's stored display currency.
func (h *Handlers) selectedOr(r *http.Request, code string) string {
	if code != "" {
		return code
	}
	if id := uid(r); id != "" {
		return h.Conv.SelectedCurrency(r.Context(), id)
	}
	return domain.BaseCurrency
}

func (h *Handlers) plan(w http.ResponseWriter, r *http.Request) {
	var req app.PlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Currency = h.selectedOr(r, req.Currency)
	res, err := h.Planner.Plan(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) genie(w http.ResponseWriter, r *http.Request) {
	var req app.GenieRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Currency = h.selectedOr(r, req.Currency)
	res, err := h.Planner.Genie(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ---- wishlist ----

func (h *Handlers) listWishlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.Wishlist.List(r.Context(), uid(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handlers) addWishlist(w http.ResponseWriter, r *http.Request) {
	var in domain.WishlistItem
	if !decodeJSON(w, r, &in) {
		return
	}
	saved, err := h.Wishlist.Add(r.Context(), uid(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/wishlist/"+saved.ID)
	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handlers) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	var in domain.WishlistItem
	if !decodeJSON(w, r, &in) {
		return
	}
	saved, item, err := h.Wishlist.Toggle(r.Context(), uid(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": saved, "item": item})
}

func (h *Handlers) isSaved(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ok, err := h.Wishlist.IsSaved(r.Context(), uid(r), q.Get("destination"), q.Get("title"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": ok})
}

func (h *Handlers) removeWishlist(w http.ResponseWriter, r *http.Request) {
	if err := h.Wishlist.Remove(r.Context(), uid(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
