// Package cache stores provider prices in a sqlite database.
//
// Prices are kept in a `prices(symbol, day, adj_close)` table. A
// `coverage(symbol, first, last)` table records the ranges that were fully
// fetched from the upstream provider, so that a request inside a covered range
// never goes to the network again.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/rs/zerolog/log"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS prices(
	symbol TEXT NOT NULL,
	day TEXT NOT NULL,
	adj_close REAL NOT NULL,
	PRIMARY KEY(symbol, day)
);
CREATE TABLE IF NOT EXISTS coverage(
	symbol TEXT NOT NULL,
	first TEXT NOT NULL,
	last TEXT NOT NULL
);
`

// Provider is a folio.Provider serving prices from sqlite, and falling back
// on Upstream for symbols whose range is not covered yet.
type Provider struct {
	Upstream folio.Provider
	db       *sql.DB
	today    func() date.Date
}

// Open opens (or creates) the cache database at path.
func Open(path string, upstream folio.Provider) (*Provider, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open cache %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot init cache %q: %w", path, err)
	}
	return &Provider{Upstream: upstream, db: db, today: date.Today}, nil
}

// Close closes the database.
func (p *Provider) Close() error { return p.db.Close() }

// Prices implements folio.Provider.
func (p *Provider) Prices(ctx context.Context, symbols []string, r date.Range) (map[string]*date.History[float64], error) {
	res := make(map[string]*date.History[float64], len(symbols))
	var missing []string
	for _, sym := range symbols {
		ok, err := p.covered(ctx, sym, r)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, sym)
			continue
		}
		h, err := p.load(ctx, sym, r)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("symbol", sym).Stringer("range", r).Int("prices", h.Len()).Msg("cache hit")
		res[sym] = h
	}
	if len(missing) == 0 {
		return res, nil
	}

	fetched, err := p.Upstream.Prices(ctx, missing, r)
	if err != nil {
		return nil, err
	}
	for _, sym := range missing {
		h := fetched[sym]
		if h == nil {
			h = new(date.History[float64])
		}
		if err := p.store(ctx, sym, r, h); err != nil {
			return nil, err
		}
		res[sym] = h
	}
	return res, nil
}

// covered reports whether a single coverage row includes r.
func (p *Provider) covered(ctx context.Context, symbol string, r date.Range) (bool, error) {
	var n int
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM coverage WHERE symbol=? AND first<=? AND last>=?`,
		symbol, r.From.String(), r.To.String()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("cannot query cache coverage: %w", err)
	}
	return n > 0, nil
}

func (p *Provider) load(ctx context.Context, symbol string, r date.Range) (*date.History[float64], error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT day, adj_close FROM prices WHERE symbol=? AND day>=? AND day<=? ORDER BY day ASC`,
		symbol, r.From.String(), r.To.String())
	if err != nil {
		return nil, fmt.Errorf("cannot query cached prices: %w", err)
	}
	defer rows.Close()
	h := new(date.History[float64])
	for rows.Next() {
		var day string
		var v float64
		if err := rows.Scan(&day, &v); err != nil {
			return nil, err
		}
		on, err := date.Parse(day)
		if err != nil {
			return nil, fmt.Errorf("corrupted cache for %q: %w", symbol, err)
		}
		h.Append(on, v)
	}
	return h, rows.Err()
}

// store saves h and records r as covered, unless r reaches today: today's
// price may not be final yet.
func (p *Provider) store(ctx context.Context, symbol string, r date.Range, h *date.History[float64]) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for on, v := range h.Values() {
		if math.IsNaN(v) {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO prices(symbol, day, adj_close) VALUES(?,?,?)`,
			symbol, on.String(), v); err != nil {
			return fmt.Errorf("cannot cache %q prices: %w", symbol, err)
		}
	}
	if r.To.Before(p.today()) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO coverage(symbol, first, last) VALUES(?,?,?)`,
			symbol, r.From.String(), r.To.String()); err != nil {
			return fmt.Errorf("cannot record %q coverage: %w", symbol, err)
		}
	}
	return tx.Commit()
}
