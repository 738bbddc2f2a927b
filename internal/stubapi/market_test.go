package stubapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/memescope/internal/model"
)

func fixedMarket() *Market {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return NewMarket(func() time.Time { return now })
}

func TestAnalyzeDeterministicPerCoin(t *testing.T) {
	m := fixedMarket()
	a, b := m.Analyze("pepe"), m.Analyze(" PEPE ")
	assert.Equal(t, a.CurrentPrice, b.CurrentPrice)
	assert.Equal(t, a.RiskFlags, b.RiskFlags)
	assert.NotEqual(t, a.CurrentPrice, m.Analyze("bonk").CurrentPrice)
}

func TestAnalyzeShape(t *testing.T) {
	a := fixedMarket().Analyze("wif")
	assert.Len(t, a.PriceHistory, 24)
	assert.Len(t, a.SocialData, len(platforms))
	assert.Positive(t, a.CurrentPrice)
	assert.NotEmpty(t, a.Summary)
	require.NotNil(t, a.RiskMetrics)
	assert.Equal(t, a.RiskLevel(), a.RiskMetrics.OverallRisk)
	for i := 1; i < len(a.PriceHistory); i++ {
		assert.True(t, a.PriceHistory[i].Timestamp.After(a.PriceHistory[i-1].Timestamp))
	}
}

func TestPerformance(t *testing.T) {
	m := fixedMarket()
	holdings := m.Price([]model.Holding{
		{Coin: "pepe", Amount: 1000, PurchasePrice: m.Quote("pepe") / 2},
		{Coin: "bonk", Amount: 1000, PurchasePrice: m.Quote("bonk") * 2},
	})

	p := m.Performance(holdings)
	assert.InDelta(t, p.CurrentValue-p.TotalInvested, p.TotalGains, 1e-12)
	assert.Len(t, p.PerformanceHistory, 7)
	require.Len(t, p.HoldingsBreakdown, 2)
	assert.InDelta(t, 100, p.HoldingsBreakdown[0].Percentage+p.HoldingsBreakdown[1].Percentage, 1e-9)
	require.NotNil(t, p.BestPerformer)
	require.NotNil(t, p.WorstPerformer)
	assert.Equal(t, "pepe", p.BestPerformer.Coin)
	assert.Equal(t, "bonk", p.WorstPerformer.Coin)
	assert.InDelta(t, 100, p.BestPerformer.GainsPercentage, 1e-9)
	assert.InDelta(t, -50, p.WorstPerformer.GainsPercentage, 1e-9)
}

func TestPerformanceEmpty(t *testing.T) {
	p := fixedMarket().Performance(nil)
	assert.Zero(t, p.TotalInvested)
	assert.Zero(t, p.TotalGainsPercentage)
	assert.Nil(t, p.BestPerformer)
	assert.Len(t, p.PerformanceHistory, 7)
	assert.NotNil(t, p.HoldingsBreakdown)
}
