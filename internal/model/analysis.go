// Package model defines the wire payloads exchanged with the analytics backend.
package model

import (
	"slices"
	"strings"
	"time"
)

// Risk flags the backend attaches to an analysis.
const (
	FlagHighVolatility = "high_volatility"
	FlagSpeculative    = "speculative"
)

// Severity buckets a set of risk flags for display.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarn
	SeverityDanger
)

// Analysis is the payload returned by POST /analyze.
type Analysis struct {
	Coin              string       `json:"coin"`
	CurrentPrice      float64      `json:"current_price"`
	PriceChange24h    float64      `json:"price_change_24h"`
	SocialTrendScore  float64      `json:"social_trend_score"`
	RiskFlags         []string     `json:"risk_flags"`
	Summary           string       `json:"summary"`
	MarketCapEstimate string       `json:"market_cap_estimate"`
	Volume24h         float64      `json:"volume_24h"`
	HolderCount       float64      `json:"holder_count"`
	LiquidityEstimate string       `json:"liquidity_estimate"`
	MarketRank        int          `json:"market_rank"`
	PriceHistory      []PricePoint `json:"price_history"`
	SocialData        []SocialStat `json:"social_data"`
	RiskMetrics       *RiskMetrics `json:"risk_metrics,omitempty"`
}

// PricePoint is one sample of the price chart.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
}

// SocialStat is the per-platform social activity.
type SocialStat struct {
	Platform  string  `json:"platform"`
	Mentions  int     `json:"mentions"`
	Sentiment float64 `json:"sentiment"`
}

// RiskMetrics holds the detailed risk breakdown (scores are 0-100).
type RiskMetrics struct {
	OverallRisk       string  `json:"overall_risk"`
	VolatilityScore   float64 `json:"volatility_score"`
	LiquidityScore    float64 `json:"liquidity_score"`
	MarketDepthScore  float64 `json:"market_depth_score"`
	AuditStatus       string  `json:"audit_status"`
	SmartContractRisk float64 `json:"smart_contract_risk"`
	TeamTransparency  float64 `json:"team_transparency"`
}

// RiskLevel summarizes the number of risk flags as Low, Medium or High.
func (a Analysis) RiskLevel() string {
	switch n := len(a.RiskFlags); {
	case n > 2:
		return "High"
	case n > 1:
		return "Medium"
	default:
		return "Low"
	}
}

// RiskSeverity is SeverityDanger when the coin is both volatile and
// speculative, SeverityWarn when it is either.
func (a Analysis) RiskSeverity() Severity {
	volatile := slices.Contains(a.RiskFlags, FlagHighVolatility)
	speculative := slices.Contains(a.RiskFlags, FlagSpeculative)
	switch {
	case volatile && speculative:
		return SeverityDanger
	case volatile || speculative:
		return SeverityWarn
	default:
		return SeverityOK
	}
}

// Rising reports whether the 24h change is non-negative.
func (a Analysis) Rising() bool {
	return a.PriceChange24h >= 0
}

// NormalizeCoin is the key the backend uses for favorites and history.
func NormalizeCoin(coin string) string {
	return strings.ToLower(strings.TrimSpace(coin))
}
