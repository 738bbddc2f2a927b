package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/memescope/internal/model"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second})
}

func TestAnalyzePostsCoin(t *testing.T) {
	var gotBody map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/analyze", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = io.WriteString(w, `{"coin":"dogecoin","current_price":0.12,"risk_flags":["speculative"],"market_rank":9}`)
	}))

	a, err := c.Analyze(context.Background(), "dogecoin")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"coin": "dogecoin"}, gotBody)
	want := &model.Analysis{Coin: "dogecoin", CurrentPrice: 0.12, RiskFlags: []string{"speculative"}, MarketRank: 9}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Errorf("Analyze mismatch (-want +got):\n%s", diff)
	}
}

func TestServerErrorIsStatusError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := c.Analyze(context.Background(), "pepe")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 500, se.Code)
	assert.Equal(t, "boom", se.Body)
	assert.Equal(t, "HTTP error! status: 500", err.Error())
	assert.False(t, IsCanceled(err))
}

func TestCancelledRequestIsDistinguishable(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.Analyze(ctx, "pepe")
		errc <- err
	}()

	<-started
	cancel()

	select {
	case err := <-errc:
		require.Error(t, err)
		assert.True(t, IsCanceled(err), "expected cancellation, got %v", err)
		var se *StatusError
		assert.False(t, errors.As(err, &se))
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled request did not return")
	}
}

func TestRemoveFavoriteLowercasesAndEscapes(t *testing.T) {
	var path atomic.Value
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		path.Store(r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.RemoveFavorite(context.Background(), "Shiba Inu"))
	assert.Equal(t, "/api/favorites/shiba%20inu", path.Load())
}

func TestCollections(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/history", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"coin":"pepe","display_name":"Pepe"}]`)
	})
	mux.HandleFunc("GET /api/favorites", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"coin":"dogecoin"}]`)
	})
	mux.HandleFunc("GET /api/portfolio", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":3,"coin":"bonk","amount":1000,"purchase_price":0.5}]`)
	})
	mux.HandleFunc("GET /api/portfolio/performance", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"total_invested":500,"current_value":750,"total_gains":250,"total_gains_percentage":50}`)
	})
	mux.HandleFunc("DELETE /api/portfolio/3", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	h, err := c.History(ctx)
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, "Pepe", h[0].Label())

	f, err := c.Favorites(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dogecoin", f[0].Label())

	p, err := c.Portfolio(ctx)
	require.NoError(t, err)
	require.Len(t, p, 1)
	assert.Equal(t, int64(3), p[0].ID)

	perf, err := c.Performance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, perf.TotalGainsPercentage, 0.001)

	require.NoError(t, c.RemoveHolding(ctx, 3))
}

func TestDecodeErrorIsWrapped(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))

	_, err := c.History(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode /history response")
}

func TestDefaults(t *testing.T) {
	c := New(Options{})
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c = New(Options{BaseURL: "http://example.com/api/"})
	assert.Equal(t, "http://example.com/api", c.BaseURL())
}
