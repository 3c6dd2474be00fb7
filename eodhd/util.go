package eodhd

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/folio/date"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// dailyCache is a RoundTripper keeping successful responses on disk until the end of the day.
type dailyCache struct {
	next  http.RoundTripper
	dir   string           // empty means os.TempDir()
	today func() date.Date // nil means date.Today
}

// newDailyCachingClient returns an http.Client caching responses in dir for the day.
func newDailyCachingClient(dir string) *http.Client {
	return &http.Client{Transport: &dailyCache{next: http.DefaultTransport, dir: dir}}
}

// path returns the cache file of req. The day is part of the key, so entries expire at midnight.
func (c *dailyCache) path(req *http.Request) string {
	today := date.Today
	if c.today != nil {
		today = c.today
	}
	sum := sha1.Sum(fmt.Appendf(nil, "%s %s %s", today(), req.Method, req.URL))
	dir := c.dir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("eodhd-%x", sum))
}

func (c *dailyCache) RoundTrip(req *http.Request) (*http.Response, error) {
	file := c.path(req)
	if content, err := os.ReadFile(file); err == nil {
		if resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req); err == nil {
			log.Debug().Str("host", req.URL.Host).Str("path", req.URL.Path).Msg("cache hit")
			return resp, nil
		}
	}

	resp, err := c.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Str("status", resp.Status).Msg("fetched")
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	// DumpResponse reads the body and restores it.
	content, err := httputil.DumpResponse(resp, true)
	if err == nil {
		err = os.WriteFile(file, content, 0o644)
	}
	if err != nil {
		log.Warn().Err(err).Str("file", file).Msg("cannot write to cache, ignored")
	}
	return resp, nil
}

// errNotFound is returned for unknown tickers.
var errNotFound = errors.New("404 Not Found")

// getJSON waits for the limiter, if any, then GETs addr and decodes the JSON body into v.
func getJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, addr string, v any) error {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("cannot http GET %v%v: %w", req.URL.Host, req.URL.Path, errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("cannot decode %v%v: %w", req.URL.Host, req.URL.Path, err)
	}
	return nil
}
