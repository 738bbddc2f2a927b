package model

import "time"

// Favorite is one entry of GET /favorites.
type Favorite struct {
	Coin        string    `json:"coin"`
	DisplayName string    `json:"display_name,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}

// Label is the name shown for the favorite.
func (f Favorite) Label() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.Coin
}

// HistoryEntry is one entry of GET /history.
type HistoryEntry struct {
	Coin        string    `json:"coin"`
	DisplayName string    `json:"display_name,omitempty"`
	SearchedAt  time.Time `json:"searched_at"`
}

// Label is the name shown for the history entry.
func (h HistoryEntry) Label() string {
	if h.DisplayName != "" {
		return h.DisplayName
	}
	return h.Coin
}

// Holding is one position in GET /portfolio.
type Holding struct {
	ID            int64     `json:"id"`
	Coin          string    `json:"coin"`
	DisplayName   string    `json:"display_name"`
	Amount        float64   `json:"amount"`
	PurchasePrice float64   `json:"purchase_price"`
	PurchaseDate  time.Time `json:"purchase_date"`
	Notes         string    `json:"notes,omitempty"`
	CurrentPrice  float64   `json:"current_price,omitempty"`
}

// price falls back to the purchase price when no quote is available.
func (h Holding) price() float64 {
	if h.CurrentPrice != 0 {
		return h.CurrentPrice
	}
	return h.PurchasePrice
}

// Value is the current market value of the position.
func (h Holding) Value() float64 {
	return h.Amount * h.price()
}

// GainPercent is the change since purchase, in percent.
func (h Holding) GainPercent() float64 {
	if h.PurchasePrice == 0 {
		return 0
	}
	return (h.price() - h.PurchasePrice) / h.PurchasePrice * 100
}

// HoldingForm is the body of POST /portfolio.
type HoldingForm struct {
	Coin          string  `json:"coin"`
	Amount        float64 `json:"amount"`
	PurchasePrice float64 `json:"purchase_price"`
	Notes         string  `json:"notes,omitempty"`
}

// Performance is the payload of GET /portfolio/performance.
type Performance struct {
	TotalInvested        float64          `json:"total_invested"`
	CurrentValue         float64          `json:"current_value"`
	TotalGains           float64          `json:"total_gains"`
	TotalGainsPercentage float64          `json:"total_gains_percentage"`
	PerformanceHistory   []ValuePoint     `json:"performance_history"`
	HoldingsBreakdown    []HoldingShare   `json:"holdings_breakdown"`
	BestPerformer        *PerformerResult `json:"best_performer,omitempty"`
	WorstPerformer       *PerformerResult `json:"worst_performer,omitempty"`
}

// ValuePoint is one sample of the portfolio value chart.
type ValuePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// HoldingShare is a slice of the portfolio allocation.
type HoldingShare struct {
	Coin       string  `json:"coin"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// PerformerResult names the best or worst position.
type PerformerResult struct {
	Coin            string  `json:"coin"`
	Gains           float64 `json:"gains"`
	GainsPercentage float64 `json:"gains_percentage"`
}
