package stubapi

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/abelbrown/memescope/internal/model"
)

var riskFlagPool = []string{
	model.FlagHighVolatility,
	model.FlagSpeculative,
	"low_liquidity",
	"new_token",
	"whale_concentration",
}

var platforms = []string{"twitter", "reddit", "telegram"}

// Market produces deterministic synthetic data per coin. Prices drift
// slowly with time so repeated polls show movement.
type Market struct {
	now func() time.Time
}

// NewMarket creates a Market. A nil now means time.Now.
func NewMarket(now func() time.Time) *Market {
	if now == nil {
		now = time.Now
	}
	return &Market{now: now}
}

func seed(coin string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(model.NormalizeCoin(coin)))
	return h.Sum64()
}

func (m *Market) rng(coin string) *rand.Rand {
	s := seed(coin)
	return rand.New(rand.NewPCG(s, s>>7|1))
}

func basePrice(coin string) float64 {
	s := seed(coin)
	magnitude := float64(s%7) + 1
	mantissa := 1 + float64((s>>8)%1000)/1000
	return mantissa * math.Pow(10, -magnitude)
}

// PriceAt is the synthetic price of coin at t.
func (m *Market) PriceAt(coin string, t time.Time) float64 {
	s := seed(coin)
	phase := float64(s%628) / 100
	wave := math.Sin(float64(t.Unix())/3600 + phase)
	return basePrice(coin) * (1 + 0.08*wave)
}

// Quote is the current price of coin.
func (m *Market) Quote(coin string) float64 {
	return m.PriceAt(coin, m.now())
}

// Analyze builds the analysis payload for coin.
func (m *Market) Analyze(coin string) model.Analysis {
	now := m.now()
	r := m.rng(coin)

	price := m.PriceAt(coin, now)
	prev := m.PriceAt(coin, now.Add(-24*time.Hour))
	supply := float64(r.IntN(900)+100) * 1e9
	volume := price * supply * (0.01 + r.Float64()*0.2)

	var flags []string
	for _, f := range riskFlagPool {
		if r.IntN(3) == 0 {
			flags = append(flags, f)
		}
	}
	if flags == nil {
		flags = []string{}
	}

	history := make([]model.PricePoint, 24)
	for i := range history {
		at := now.Add(time.Duration(i-23) * time.Hour).Truncate(time.Hour)
		history[i] = model.PricePoint{
			Timestamp: at,
			Price:     m.PriceAt(coin, at),
			Volume:    volume / 24 * (0.5 + r.Float64()),
		}
	}

	social := make([]model.SocialStat, len(platforms))
	for i, p := range platforms {
		social[i] = model.SocialStat{
			Platform:  p,
			Mentions:  r.IntN(50000),
			Sentiment: math.Round((r.Float64()*2-1)*100) / 100,
		}
	}

	a := model.Analysis{
		Coin:              coin,
		CurrentPrice:      price,
		PriceChange24h:    (price - prev) / prev * 100,
		SocialTrendScore:  math.Round(r.Float64()*1000) / 10,
		RiskFlags:         flags,
		MarketCapEstimate: money(price * supply),
		Volume24h:         volume,
		HolderCount:       float64(r.IntN(500000) + 1000),
		LiquidityEstimate: []string{"Low", "Medium", "High"}[r.IntN(3)],
		MarketRank:        r.IntN(2000) + 1,
		PriceHistory:      history,
		SocialData:        social,
		RiskMetrics: &model.RiskMetrics{
			VolatilityScore:   float64(r.IntN(100)),
			LiquidityScore:    float64(r.IntN(100)),
			MarketDepthScore:  float64(r.IntN(100)),
			AuditStatus:       []string{"unaudited", "pending", "audited"}[r.IntN(3)],
			SmartContractRisk: float64(r.IntN(100)),
			TeamTransparency:  float64(r.IntN(100)),
		},
	}
	a.RiskMetrics.OverallRisk = a.RiskLevel()
	a.Summary = summarize(a)
	return a
}

func summarize(a model.Analysis) string {
	direction := "down"
	if a.Rising() {
		direction = "up"
	}
	risk := "no notable risk flags"
	if len(a.RiskFlags) > 0 {
		risk = "flags: " + strings.ReplaceAll(strings.Join(a.RiskFlags, ", "), "_", " ")
	}
	return fmt.Sprintf("%s is %s %.1f%% over 24h with a social trend score of %.1f; %s.",
		a.Coin, direction, math.Abs(a.PriceChange24h), a.SocialTrendScore, risk)
}

func money(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.2fK", v/1e3)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// Price fills CurrentPrice on each holding.
func (m *Market) Price(holdings []model.Holding) []model.Holding {
	for i := range holdings {
		holdings[i].CurrentPrice = m.Quote(holdings[i].Coin)
	}
	return holdings
}

// Performance summarizes priced holdings.
func (m *Market) Performance(holdings []model.Holding) model.Performance {
	now := m.now()
	var p model.Performance
	p.PerformanceHistory = []model.ValuePoint{}
	p.HoldingsBreakdown = []model.HoldingShare{}

	for _, h := range holdings {
		p.TotalInvested += h.Amount * h.PurchasePrice
		p.CurrentValue += h.Value()
	}
	p.TotalGains = p.CurrentValue - p.TotalInvested
	if p.TotalInvested > 0 {
		p.TotalGainsPercentage = p.TotalGains / p.TotalInvested * 100
	}

	for _, h := range holdings {
		share := model.HoldingShare{Coin: h.Coin, Value: h.Value()}
		if p.CurrentValue > 0 {
			share.Percentage = share.Value / p.CurrentValue * 100
		}
		p.HoldingsBreakdown = append(p.HoldingsBreakdown, share)

		res := &model.PerformerResult{
			Coin:            h.Coin,
			Gains:           h.Value() - h.Amount*h.PurchasePrice,
			GainsPercentage: h.GainPercent(),
		}
		if p.BestPerformer == nil || res.GainsPercentage > p.BestPerformer.GainsPercentage {
			p.BestPerformer = res
		}
		if p.WorstPerformer == nil || res.GainsPercentage < p.WorstPerformer.GainsPercentage {
			p.WorstPerformer = res
		}
	}

	for day := 6; day >= 0; day-- {
		at := now.Add(-time.Duration(day) * 24 * time.Hour).Truncate(24 * time.Hour)
		var v float64
		for _, h := range holdings {
			v += h.Amount * m.PriceAt(h.Coin, at)
		}
		p.PerformanceHistory = append(p.PerformanceHistory, model.ValuePoint{Date: at, Value: v})
	}
	return p
}
