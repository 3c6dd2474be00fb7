// Package yahoo fetches daily adjusted close prices from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/folio/date"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// BaseURL is the default chart API root.
const BaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// JSON paths in the chart response.
const (
	resultPath    = "$.chart.result[0]"
	timestampPath = "$.chart.result[0].timestamp"
	adjClosePath  = "$.chart.result[0].indicators.adjclose[0].adjclose"
	offsetPath    = "$.chart.result[0].meta.gmtoffset"
	errorPath     = "$.chart.error.description"
)

// errNotFound is returned for unknown symbols.
var errNotFound = errors.New("404 Not Found")

// Client is a folio.Provider backed by the Yahoo chart API.
type Client struct {
	BaseURL string // defaults to BaseURL
	HTTP    *http.Client
	Limiter *rate.Limiter // nil means unlimited
}

// New returns a client limited to 2 requests per second.
func New() *Client {
	return &Client{
		BaseURL: BaseURL,
		HTTP:    new(http.Client),
		Limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
}

// Prices implements folio.Provider. Unknown symbols are left out of the result.
func (c *Client) Prices(ctx context.Context, symbols []string, r date.Range) (map[string]*date.History[float64], error) {
	res := make(map[string]*date.History[float64], len(symbols))
	for _, sym := range symbols {
		h, err := c.fetch(ctx, sym, r)
		if errors.Is(err, errNotFound) {
			log.Warn().Str("symbol", sym).Msg("unknown symbol, skipped")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cannot fetch %q prices: %w", sym, err)
		}
		res[sym] = h
	}
	return res, nil
}

func (c *Client) fetch(ctx context.Context, symbol string, r date.Range) (*date.History[float64], error) {
	base := c.BaseURL
	if base == "" {
		base = BaseURL
	}
	query := url.Values{
		"period1":  {strconv.FormatInt(r.From.Time().Unix(), 10)},
		"period2":  {strconv.FormatInt(r.To.Add(1).Time().Unix(), 10)},
		"interval": {"1d"},
		"events":   {"div,splits"},
	}
	addr := strings.TrimSuffix(base, "/") + "/" + url.PathEscape(symbol) + "?" + query.Encode()

	jobj, err := c.get(ctx, addr)
	if err != nil {
		return nil, err
	}
	if desc, err := jsonpath.Get(errorPath, jobj); err == nil && desc != nil {
		return nil, fmt.Errorf("yahoo: %v", desc)
	}
	return Decode(jobj, r)
}

func (c *Client) get(ctx context.Context, addr string) (any, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	// the API rejects requests without a user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; folio)")
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	log.Debug().Str("host", req.URL.Host).Str("path", req.URL.Path).Str("status", resp.Status).Msg("fetched")

	var jobj any
	if err := json.NewDecoder(resp.Body).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot decode %v/%v (%v): %w", req.URL.Host, req.URL.Path, resp.Status, err)
	}
	if resp.StatusCode != 200 {
		if desc, err := jsonpath.Get(errorPath, jobj); err == nil && desc != nil {
			if resp.StatusCode == http.StatusNotFound {
				return nil, fmt.Errorf("cannot http GET %v/%v: %v: %w", req.URL.Host, req.URL.Path, desc, errNotFound)
			}
			return nil, fmt.Errorf("cannot http GET %v/%v: %v: %v", req.URL.Host, req.URL.Path, resp.Status, desc)
		}
		return nil, fmt.Errorf("cannot http GET %v/%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	return jobj, nil
}

// Decode extracts the adjusted close prices within r from a decoded chart response.
//
// Timestamps are shifted by the exchange GMT offset before taking their day.
// Null prices are skipped.
func Decode(jobj any, r date.Range) (*date.History[float64], error) {
	result, err := jsonpath.Get(resultPath, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", resultPath, err)
	}
	// a range without data has no timestamp at all.
	if m, ok := result.(map[string]any); ok {
		if _, ok := m["timestamp"]; !ok {
			return new(date.History[float64]), nil
		}
	}
	stamps, err := list(timestampPath, jobj)
	if err != nil {
		return nil, err
	}
	prices, err := list(adjClosePath, jobj)
	if err != nil {
		return nil, err
	}
	if len(stamps) != len(prices) {
		return nil, fmt.Errorf("%d timestamps for %d prices", len(stamps), len(prices))
	}
	var offset float64
	if v, err := jsonpath.Get(offsetPath, jobj); err == nil {
		offset, _ = v.(float64)
	}

	h := new(date.History[float64])
	for i, s := range stamps {
		ts, ok := s.(float64)
		if !ok {
			return nil, fmt.Errorf("timestamp %d is not a number: %v", i, s)
		}
		p, ok := prices[i].(float64)
		if !ok {
			continue
		}
		on := date.FromTime(time.Unix(int64(ts+offset), 0).UTC())
		if r.Contains(on) {
			h.Append(on, p)
		}
	}
	return h, nil
}

// list evaluates path and returns its result as a list.
func list(path string, jobj any) ([]any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	jlist, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("error parsing %q: not a list %T", path, jval)
	}
	return jlist, nil
}
