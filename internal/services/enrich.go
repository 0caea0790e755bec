package services

import (
	"github.com/investalk/backend/internal/marketdata"
	"github.com/investalk/backend/internal/models"
)

// NotAvailable marks a market field the external source did not supply.
const NotAvailable = "N/A"

// EnrichedStock is a watchlist entry merged with live market data. It is
// never persisted.
type EnrichedStock struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	ChangePercent float64  `json:"changePercent"`
	EarningsDate  string   `json:"earningsDate"`
	DesiredPrice  *float64 `json:"desiredPrice"`
}

// Merge combines a favorite with a market snapshot. It is total: a nil or
// partial snapshot yields defaults, never an error, and the stored desired
// price always carries through untouched.
func Merge(fav models.FavoriteStock, snapshot *marketdata.Snapshot) EnrichedStock {
	enriched := EnrichedStock{
		Symbol:       fav.Symbol,
		Name:         NotAvailable,
		EarningsDate: NotAvailable,
		DesiredPrice: fav.DesiredPrice,
	}
	if snapshot == nil {
		return enriched
	}

	if snapshot.Name != nil {
		enriched.Name = *snapshot.Name
	}
	if snapshot.Price != nil {
		enriched.Price = *snapshot.Price
	}
	if snapshot.ChangePct != nil {
		enriched.ChangePercent = *snapshot.ChangePct
	}
	if snapshot.EarningsDate != nil {
		enriched.EarningsDate = *snapshot.EarningsDate
	}

	return enriched
}
