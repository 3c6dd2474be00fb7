// Package eodhd fetches end of day prices from the EOD Historical Data API.
package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// BaseURL is the default API root.
const BaseURL = "https://eodhd.com/api"

// APIKeyEnv is the environment variable holding the API key.
const APIKeyEnv = "EODHD_API_KEY"

// Client is a folio.Provider backed by eodhd.com.
type Client struct {
	APIKey   string
	BaseURL  string // defaults to BaseURL
	Exchange string // appended to symbols without an exchange, defaults to US
	HTTP     *http.Client
	Limiter  *rate.Limiter // nil means unlimited
}

// New returns a client with a daily disk cache in cacheDir (the temp dir
// if empty), limited to 10 requests per second.
func New(apiKey, cacheDir string) *Client {
	return &Client{
		APIKey:   apiKey,
		BaseURL:  BaseURL,
		Exchange: "US",
		HTTP:     newDailyCachingClient(cacheDir),
		Limiter:  rate.NewLimiter(rate.Limit(10), 1),
	}
}

// Ticker returns the eodhd ticker of symbol, "SYMBOL.EXCHANGE".
func (c *Client) Ticker(symbol string) string {
	if strings.Contains(symbol, ".") || c.Exchange == "" {
		return symbol
	}
	return symbol + "." + c.Exchange
}

func (c *Client) endpoint(path string, query url.Values) string {
	base := c.BaseURL
	if base == "" {
		base = BaseURL
	}
	query.Set("fmt", "json")
	query.Set("api_token", c.APIKey)
	return strings.TrimSuffix(base, "/") + path + "?" + query.Encode()
}

func (c *Client) client() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// Prices implements folio.Provider. Symbols are fetched one by one. Unknown
// tickers are left out of the result.
func (c *Client) Prices(ctx context.Context, symbols []string, r date.Range) (map[string]*date.History[float64], error) {
	res := make(map[string]*date.History[float64], len(symbols))
	for _, sym := range symbols {
		h, err := c.fetchPrices(ctx, c.Ticker(sym), r)
		if errors.Is(err, errNotFound) {
			log.Warn().Str("symbol", sym).Str("ticker", c.Ticker(sym)).Msg("unknown ticker, skipped")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cannot fetch %q prices: %w", sym, err)
		}
		res[sym] = h
	}
	return res, nil
}

// fetchPrices returns the daily adjusted close prices for a given EODHD ticker.
func (c *Client) fetchPrices(ctx context.Context, ticker string, r date.Range) (*date.History[float64], error) {
	// https://eodhd.com/api/eod/MCD.US?api_token=demo&fmt=json&from=2017-01-05&to=2017-02-10
	// [
	//
	//	{
	//		"date": "2024-02-13",
	//		"open": 675.066,
	//		"high": 684.219,
	//		"low": 648.659,
	//		"close": 668.445,
	//		"adjusted_close": 67.705,
	//		"volume": 0
	//	  },
	//
	// bounds are included in the response.
	addr := c.endpoint("/eod/"+url.PathEscape(ticker), url.Values{
		"from": {r.From.String()},
		"to":   {r.To.String()},
	})
	type Info struct {
		Date          date.Date       `json:"date"`
		AdjustedClose decimal.Decimal `json:"adjusted_close"`
	}

	content := make([]Info, 0)
	if err := getJSON(ctx, c.client(), c.Limiter, addr, &content); err != nil {
		return nil, err
	}
	h := new(date.History[float64])
	for _, info := range content {
		h.Append(info.Date, info.AdjustedClose.InexactFloat64())
	}
	return h, nil
}

// SearchResult matches the structure of a single item in the EODHD search API response.
type SearchResult struct {
	Code              string    `json:"Code"`
	Exchange          string    `json:"Exchange"`
	Name              string    `json:"Name"`
	Type              string    `json:"Type"`
	Country           string    `json:"Country"`
	Currency          string    `json:"Currency"`
	ISIN              string    `json:"ISIN"`
	PreviousClose     float64   `json:"previousClose"`
	PreviousCloseDate date.Date `json:"previousCloseDate"`
}

// Ticker returns the eodhd ticker of the result, usable as a symbol.
func (s SearchResult) Ticker() string { return s.Code + "." + s.Exchange }

// Search searches for securities by name, ticker or ISIN.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	addr := c.endpoint("/search/"+url.PathEscape(term), url.Values{})
	var results []SearchResult
	if err := getJSON(ctx, c.client(), c.Limiter, addr, &results); err != nil {
		return nil, err
	}
	return results, nil
}
