package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesboard/internal/cache"
	"salesboard/internal/core"
	applog "salesboard/internal/log"
	"salesboard/internal/services"
	"salesboard/internal/store"
	"salesboard/internal/store/memory"
)

func saleOn(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	return &t
}

func fixture() []core.Transaction {
	mk := func(id int64, title string, price float64, sold bool, cat string, d *time.Time) core.Transaction {
		return core.Transaction{ID: id, Title: title, Description: title + " in stock", Price: price, Sold: sold, Category: cat, Image: "https://example.com/img.jpg", DateOfSale: d}
	}
	return []core.Transaction{
		mk(1, "Desk Lamp", 50, true, "A", saleOn(2021, time.March, 2)),
		mk(2, "Office Chair", 150, false, "A", saleOn(2022, time.March, 14)),
		mk(3, "Gaming Laptop", 900, true, "B", saleOn(2023, time.March, 30)),
		mk(4, "Laptop Stand", 250, true, "B", saleOn(2021, time.April, 1)),
	}
}

type fixedSource struct {
	txs []core.Transaction
	err error
}

func (f fixedSource) Name() string { return "fixed" }

func (f fixedSource) Fetch(context.Context) ([]core.Transaction, error) {
	return f.txs, f.err
}

type brokenStore struct{ *memory.Store }

func (brokenStore) QueryByMonth(context.Context, time.Month) ([]core.Transaction, error) {
	return nil, errors.New("disk I/O error")
}

func (brokenStore) QueryByMonthAndText(context.Context, time.Month, core.SearchQuery) ([]core.Transaction, error) {
	return nil, errors.New("disk I/O error")
}

func (brokenStore) Ping(context.Context) error { return errors.New("disk I/O error") }

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelError, Format: "text", Output: io.Discard})
}

func newTestServer(t *testing.T, st store.Store, src fixedSource, opts Options) *Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	lru := cache.NewLRU[[]core.LabeledRecord](12, time.Minute)
	stats := services.NewStatsService(st, lru)
	seeder := services.NewSeedService(st, src, nil)
	seeder.OnSeeded(stats.Invalidate)

	srv := NewServer(":0", Dependencies{Stats: stats, Seeder: seeder, Pinger: st}, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func seededServer(t *testing.T) *Server {
	t.Helper()
	st := memory.New()
	_, err := st.SeedIfEmpty(context.Background(), "test", fixture())
	require.NoError(t, err)
	return newTestServer(t, st, fixedSource{}, Options{})
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestHealthAndReady(t *testing.T) {
	srv := seededServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	broken := newTestServer(t, brokenStore{memory.New()}, fixedSource{}, Options{})
	rr := do(t, broken, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestDataEndpoint(t *testing.T) {
	srv := seededServer(t)

	rr := do(t, srv, http.MethodGet, "/data/March", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	body := decode(t, rr)
	assert.EqualValues(t, 3, body["count"])
	assert.EqualValues(t, 950, body["totalSaleAmount"])
	assert.EqualValues(t, 2, body["totalSoldItems"])
	assert.EqualValues(t, 1, body["totalNotSoldItems"])

	records := body["records"].([]any)
	require.Len(t, records, 3)
	first := records[0].(map[string]any)
	assert.Equal(t, "March", first["monthName"])
	assert.Equal(t, "2021-03-02T12:00:00Z", first["dateOfSale"])
	assert.NotContains(t, first, "title")
	assert.NotContains(t, first, "image")
}

func TestInvalidMonth(t *testing.T) {
	srv := seededServer(t)
	for _, path := range []string{"/data/march", "/bar-chart/Marzo", "/pie-chart/13", "/statistic/MARCH"} {
		rr := do(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
		assert.JSONEq(t, `{"error":"Invalid month name"}`, rr.Body.String(), path)
	}

	rr := do(t, srv, http.MethodPost, "/search/Smarch", `{"searchValue":"lamp"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid month name"}`, rr.Body.String())
}

func TestChartEndpoints(t *testing.T) {
	srv := seededServer(t)

	bar := decode(t, do(t, srv, http.MethodGet, "/bar-chart/March", ""))
	ranges := bar["priceRanges"].(map[string]any)
	assert.Len(t, ranges, core.PriceBucketCount)
	assert.EqualValues(t, 1, ranges["0-100"])
	assert.EqualValues(t, 1, ranges["101-200"])
	assert.EqualValues(t, 1, ranges["801-900"])
	assert.EqualValues(t, 0, ranges["901-above"])
	assert.EqualValues(t, 3, bar["count"])

	pie := decode(t, do(t, srv, http.MethodGet, "/pie-chart/March", ""))
	assert.Equal(t, map[string]any{"A": float64(2), "B": float64(1)}, pie["categoryCounts"])
}

func TestStatisticEmptyMonth(t *testing.T) {
	srv := seededServer(t)

	rr := do(t, srv, http.MethodGet, "/statistic/June", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, []any{}, body["records"])
	assert.EqualValues(t, 0, body["count"])
	assert.EqualValues(t, 0, body["totalSaleAmount"])
	assert.Equal(t, map[string]any{}, body["categoryCounts"])
	for label, n := range body["priceRanges"].(map[string]any) {
		assert.EqualValues(t, 0, n, label)
	}
}

func TestStatisticMatchesIndividualViews(t *testing.T) {
	srv := seededServer(t)

	stat := decode(t, do(t, srv, http.MethodGet, "/statistic/March", ""))
	data := decode(t, do(t, srv, http.MethodGet, "/data/March", ""))
	bar := decode(t, do(t, srv, http.MethodGet, "/bar-chart/March", ""))
	pie := decode(t, do(t, srv, http.MethodGet, "/pie-chart/March", ""))

	assert.Equal(t, data["records"], stat["records"])
	assert.Equal(t, data["totalSaleAmount"], stat["totalSaleAmount"])
	assert.Equal(t, bar["priceRanges"], stat["priceRanges"])
	assert.Equal(t, pie["categoryCounts"], stat["categoryCounts"])
}

func TestSearch(t *testing.T) {
	srv := seededServer(t)

	ids := func(rr *httptest.ResponseRecorder) []int64 {
		t.Helper()
		var recs []detailRecord
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
		out := []int64{}
		for _, r := range recs {
			out = append(out, r.ID)
		}
		return out
	}

	tests := []struct {
		name string
		path string
		body string
		want []int64
	}{
		{name: "text", path: "/search/March", body: `{"searchValue":"LAPTOP"}`, want: []int64{3}},
		{name: "numeric", path: "/search/April", body: `{"searchValue":250}`, want: []int64{4}},
		{name: "numeric string", path: "/search/March", body: `{"searchValue":"150"}`, want: []int64{2}},
		{name: "empty body", path: "/search/March", body: "", want: []int64{1, 2, 3}},
		{name: "blank value is literal", path: "/search/March", body: `{"searchValue":"  "}`, want: []int64{}},
		{name: "leading space kept", path: "/search/March", body: `{"searchValue":" laptop"}`, want: []int64{3}},
		{name: "no match", path: "/search/March", body: `{"searchValue":"piano"}`, want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, tt.want, ids(rr))
		})
	}

	rr := do(t, srv, http.MethodPost, "/search/March", `{"searchValue":"lamp"}`)
	var recs []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	for _, key := range []string{"id", "title", "price", "description", "category", "image", "sold", "dateOfSale", "monthName"} {
		assert.Contains(t, recs[0], key)
	}
}

func TestSearchRejectsMalformedBody(t *testing.T) {
	srv := seededServer(t)
	rr := do(t, srv, http.MethodPost, "/search/March", `{"searchValue":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, rr.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	srv := seededServer(t)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, srv, http.MethodGet, "/search/March", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, srv, http.MethodPost, "/data/March", "").Code)
}

func TestStoreFailureIsInternalError(t *testing.T) {
	srv := newTestServer(t, brokenStore{memory.New()}, fixedSource{}, Options{})

	rr := do(t, srv, http.MethodGet, "/data/March", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "disk")
}

func TestHomeSeedsEmptyStore(t *testing.T) {
	st := memory.New()
	srv := newTestServer(t, st, fixedSource{txs: fixture()}, Options{})

	rr := do(t, srv, http.MethodGet, "/home", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var recs []detailRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	assert.Len(t, recs, 4)
	assert.Equal(t, "Desk Lamp", recs[0].Title)
	assert.Equal(t, "April", recs[3].MonthName)

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	data := decode(t, do(t, srv, http.MethodGet, "/data/March", ""))
	assert.EqualValues(t, 3, data["count"])
}

func TestHomeUpstreamFailure(t *testing.T) {
	upstream := fmt.Errorf("%w: fetch: connection reset", core.ErrUpstreamSeed)
	srv := newTestServer(t, memory.New(), fixedSource{err: upstream}, Options{})

	rr := do(t, srv, http.MethodGet, "/home", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.JSONEq(t, `{"error":"Upstream seed failed"}`, rr.Body.String())
}

func TestSearchRateLimit(t *testing.T) {
	st := memory.New()
	_, err := st.SeedIfEmpty(context.Background(), "test", fixture())
	require.NoError(t, err)
	srv := newTestServer(t, st, fixedSource{}, Options{RateLimitPerMinute: 2})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/search/March", "").Code)
	}
	rr := do(t, srv, http.MethodPost, "/search/March", "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too Many Requests"}`, rr.Body.String())

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/data/March", "").Code)
}

func TestMiddlewareHeaders(t *testing.T) {
	srv := seededServer(t)

	req := httptest.NewRequest(http.MethodGet, "/data/March", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	pre := httptest.NewRequest(http.MethodOptions, "/search/March", nil)
	pre.Header.Set("Origin", "https://dashboard.example.com")
	pre.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, pre)
	assert.Less(t, rr.Code, 300)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestShutdownIsIdempotent(t *testing.T) {
	janitor := cache.NewJanitor()
	janitor.Start(time.Minute)

	st := memory.New()
	stats := services.NewStatsService(st, nil)
	srv := NewServer(":0", Dependencies{
		Stats:   stats,
		Seeder:  services.NewSeedService(st, nil, nil),
		Pinger:  st,
		Janitor: janitor,
	}, Options{Logger: quietLogger()})

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, srv.Shutdown(context.Background()))
}
