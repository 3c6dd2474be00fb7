package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/folio/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chart is a trimmed chart response for three days starting on 2011-01-10,
// timestamps are 14:30 UTC, the New York market open.
const chart = `{"chart":{"result":[{
	"meta":{"currency":"USD","symbol":"SPY","gmtoffset":-18000},
	"timestamp":[1294669800,1294756200,1294842600],
	"indicators":{
		"quote":[{"close":[127.1,127.5,128.0]}],
		"adjclose":[{"adjclose":[110.5,null,111.3]}]
	}
}],"error":null}}`

func TestClient_Prices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/SPY", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(chart))
	}))
	defer srv.Close()

	c := New()
	c.BaseURL = srv.URL
	prices, err := c.Prices(context.Background(), []string{"SPY"}, date.Range{From: date.New(2011, 1, 1), To: date.New(2011, 1, 31)})
	require.NoError(t, err)

	h := prices["SPY"]
	require.NotNil(t, h)
	assert.Equal(t, []date.Date{date.New(2011, 1, 10), date.New(2011, 1, 12)}, h.Days(), "null prices are skipped")
	v, ok := h.Get(date.New(2011, 1, 12))
	require.True(t, ok)
	assert.Equal(t, 111.3, v)
}

func TestClient_PricesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid input - interval=1x is not supported"}}}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	_, err := c.Prices(context.Background(), []string{"SPY"}, date.Range{From: date.New(2011, 1, 1), To: date.New(2011, 1, 31)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPY")
	assert.Contains(t, err.Error(), "not supported")
}

func TestClient_PricesUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/NOPE" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
			return
		}
		w.Write([]byte(chart))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	prices, err := c.Prices(context.Background(), []string{"NOPE", "SPY"}, date.Range{From: date.New(2011, 1, 1), To: date.New(2011, 1, 31)})
	require.NoError(t, err)
	assert.NotContains(t, prices, "NOPE")
	assert.Contains(t, prices, "SPY")
}

func TestDecode_Range(t *testing.T) {
	var jobj any = map[string]any{
		"chart": map[string]any{
			"result": []any{map[string]any{
				"meta":       map[string]any{"gmtoffset": -18000.0},
				"timestamp":  []any{1294669800.0, 1294756200.0},
				"indicators": map[string]any{"adjclose": []any{map[string]any{"adjclose": []any{1.0, 2.0}}}},
			}},
		},
	}
	h, err := Decode(jobj, date.Range{From: date.New(2011, 1, 11), To: date.New(2011, 1, 11)})
	require.NoError(t, err)
	assert.Equal(t, []date.Date{date.New(2011, 1, 11)}, h.Days())
}

func TestDecode_NoData(t *testing.T) {
	var jobj any = map[string]any{
		"chart": map[string]any{
			"result": []any{map[string]any{
				"meta": map[string]any{"symbol": "SPY", "gmtoffset": -18000.0},
				"indicators": map[string]any{
					"quote":    []any{map[string]any{}},
					"adjclose": []any{map[string]any{}},
				},
			}},
			"error": nil,
		},
	}
	h, err := Decode(jobj, date.Range{From: date.New(2012, 12, 24), To: date.New(2012, 12, 25)})
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, 0, h.Len())
}
