package stubapi

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/memescope/internal/api"
	"github.com/abelbrown/memescope/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, opts Options) *api.Client {
	t.Helper()
	st, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	srv := httptest.NewServer(NewServer(st, opts).Router())
	t.Cleanup(srv.Close)
	return api.New(api.Options{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second})
}

func TestAnalyzeRecordsHistory(t *testing.T) {
	c := newTestServer(t, Options{})
	ctx := context.Background()

	a, err := c.Analyze(ctx, "Pepe")
	require.NoError(t, err)
	assert.Equal(t, "Pepe", a.Coin)
	assert.Positive(t, a.CurrentPrice)
	assert.Len(t, a.PriceHistory, 24)
	assert.Len(t, a.SocialData, 3)
	require.NotNil(t, a.RiskMetrics)
	assert.Equal(t, a.RiskLevel(), a.RiskMetrics.OverallRisk)

	_, err = c.Analyze(ctx, "bonk")
	require.NoError(t, err)
	_, err = c.Analyze(ctx, "pepe")
	require.NoError(t, err)

	hist, err := c.History(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 2, "one entry per coin")
	assert.Equal(t, "pepe", hist[0].Coin)
	assert.Equal(t, "bonk", hist[1].Coin)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	c := newTestServer(t, Options{})
	a1, err := c.Analyze(context.Background(), "wif")
	require.NoError(t, err)
	a2, err := c.Analyze(context.Background(), "WIF")
	require.NoError(t, err)
	assert.Equal(t, a1.CurrentPrice, a2.CurrentPrice)
	assert.Equal(t, a1.RiskFlags, a2.RiskFlags)
}

func TestAnalyzeFailure(t *testing.T) {
	c := newTestServer(t, Options{FailCoins: []string{"rugpull"}})

	_, err := c.Analyze(context.Background(), "rugpull")
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 500, se.Code)
	assert.Equal(t, "HTTP error! status: 500", err.Error())
}

func TestAnalyzeAbortedByClient(t *testing.T) {
	c := newTestServer(t, Options{Delay: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := c.Analyze(ctx, "pepe")
	assert.True(t, api.IsCanceled(err))
}

func TestAnalyzeRequiresCoin(t *testing.T) {
	c := newTestServer(t, Options{})
	_, err := c.Analyze(context.Background(), "  ")
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 400, se.Code)
}

func TestFavoritesLifecycle(t *testing.T) {
	c := newTestServer(t, Options{})
	ctx := context.Background()

	require.NoError(t, c.AddFavorite(ctx, "Shiba Inu"))
	require.NoError(t, c.AddFavorite(ctx, "shiba inu"), "re-adding is idempotent")

	favs, err := c.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "shiba inu", favs[0].Coin)
	assert.Equal(t, "Shiba Inu", favs[0].Label())

	require.NoError(t, c.RemoveFavorite(ctx, "SHIBA INU"))
	favs, err = c.Favorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, favs)

	err = c.RemoveFavorite(ctx, "shiba inu")
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 404, se.Code)
}

func TestPortfolioLifecycle(t *testing.T) {
	c := newTestServer(t, Options{})
	ctx := context.Background()

	h, err := c.AddHolding(ctx, model.HoldingForm{Coin: "doge", Amount: 100, PurchasePrice: 0.05, Notes: "dip"})
	require.NoError(t, err)
	assert.NotZero(t, h.ID)
	assert.Positive(t, h.CurrentPrice)

	_, err = c.AddHolding(ctx, model.HoldingForm{Coin: "bonk", Amount: 1e6, PurchasePrice: 1e-5})
	require.NoError(t, err)

	holdings, err := c.Portfolio(ctx)
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "dip", holdings[0].Notes)
	assert.Positive(t, holdings[0].CurrentPrice)

	perf, err := c.Performance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 100*0.05+1e6*1e-5, perf.TotalInvested, 1e-9)
	assert.Len(t, perf.HoldingsBreakdown, 2)
	assert.Len(t, perf.PerformanceHistory, 7)
	require.NotNil(t, perf.BestPerformer)
	require.NotNil(t, perf.WorstPerformer)
	assert.GreaterOrEqual(t, perf.BestPerformer.GainsPercentage, perf.WorstPerformer.GainsPercentage)

	var share float64
	for _, s := range perf.HoldingsBreakdown {
		share += s.Percentage
	}
	assert.InDelta(t, 100, share, 1e-6)

	require.NoError(t, c.RemoveHolding(ctx, h.ID))
	holdings, err = c.Portfolio(ctx)
	require.NoError(t, err)
	assert.Len(t, holdings, 1)
}

func TestAddHoldingRejectsInvalid(t *testing.T) {
	c := newTestServer(t, Options{})
	_, err := c.AddHolding(context.Background(), model.HoldingForm{Coin: "doge"})
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 400, se.Code)
}

func TestEmptyPerformance(t *testing.T) {
	c := newTestServer(t, Options{})
	perf, err := c.Performance(context.Background())
	require.NoError(t, err)
	assert.Zero(t, perf.TotalInvested)
	assert.Nil(t, perf.BestPerformer)
}
