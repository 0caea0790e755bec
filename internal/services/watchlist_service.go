package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/investalk/backend/internal/marketdata"
	"github.com/investalk/backend/internal/models"
)

// WatchlistService manages a user's favorite stocks and enriches them with
// live market data on listing.
type WatchlistService struct {
	db          *gorm.DB
	gateway     marketdata.Gateway
	timeout     time.Duration
	concurrency int
}

// NewWatchlistService creates a watchlist service. timeout bounds each
// gateway lookup; concurrency bounds how many run at once.
func NewWatchlistService(db *gorm.DB, gateway marketdata.Gateway, timeout time.Duration, concurrency int) *WatchlistService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if concurrency <= 0 {
		concurrency = 10
	}
	return &WatchlistService{
		db:          db,
		gateway:     gateway,
		timeout:     timeout,
		concurrency: concurrency,
	}
}

// NormalizeSymbol maps a raw ticker to the single stored form. Uniqueness,
// lookups and deletes all go through this, so "aapl " and "AAPL" are the
// same entry.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Add creates a favorite for (user, symbol). The existence check and insert
// run in one transaction so two concurrent adds cannot both succeed; the
// unique index on (user_id, symbol) backstops the check.
func (s *WatchlistService) Add(ctx context.Context, userID uint, symbol string, desiredPrice *float64) (*models.FavoriteStock, error) {
	normalized := NormalizeSymbol(symbol)
	if normalized == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrValidation)
	}

	favorite := models.FavoriteStock{
		UserID:       userID,
		Symbol:       normalized,
		DesiredPrice: desiredPrice,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.FavoriteStock
		err := tx.Where("user_id = ? AND symbol = ?", userID, normalized).First(&existing).Error
		if err == nil {
			return fmt.Errorf("%w: %s is already on the watchlist", ErrConflict, normalized)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %v", ErrStore, err)
		}

		if err := tx.Create(&favorite).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s is already on the watchlist", ErrConflict, normalized)
			}
			return fmt.Errorf("%w: %v", ErrStore, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &favorite, nil
}

// UpdatePrice sets the desired price for an existing (user, symbol) entry.
// Repeated calls with the same price converge to the same state.
func (s *WatchlistService) UpdatePrice(ctx context.Context, userID uint, symbol string, desiredPrice *float64) error {
	normalized := NormalizeSymbol(symbol)
	if normalized == "" {
		return fmt.Errorf("%w: symbol is required", ErrValidation)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var favorite models.FavoriteStock
		err := tx.Where("user_id = ? AND symbol = ?", userID, normalized).First(&favorite).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s is not on the watchlist", ErrNotFound, normalized)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStore, err)
		}

		if err := tx.Model(&favorite).Update("desired_price", desiredPrice).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrStore, err)
		}
		return nil
	})
}

// Remove deletes the (user, symbol) entry. Removing an absent entry reports
// ErrNotFound, which callers may treat as already gone.
func (s *WatchlistService) Remove(ctx context.Context, userID uint, symbol string) error {
	normalized := NormalizeSymbol(symbol)
	if normalized == "" {
		return fmt.Errorf("%w: symbol is required", ErrValidation)
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND symbol = ?", userID, normalized).
		Delete(&models.FavoriteStock{})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrStore, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s is not on the watchlist", ErrNotFound, normalized)
	}

	return nil
}

// List returns the user's watchlist enriched with market data. Snapshots
// are fetched concurrently; a symbol whose lookup fails or times out comes
// back with sentinel fields instead of failing the whole list.
func (s *WatchlistService) List(ctx context.Context, userID uint) ([]EnrichedStock, error) {
	var favorites []models.FavoriteStock
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("symbol").Find(&favorites).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if len(favorites) == 0 {
		return []EnrichedStock{}, nil
	}

	enriched := make([]EnrichedStock, len(favorites))

	// Semaphore for bounded concurrency.
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, favorite := range favorites {
		wg.Add(1)
		go func(i int, favorite models.FavoriteStock) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				enriched[i] = Merge(favorite, nil)
				return
			}

			snapshot, err := s.fetchSnapshot(ctx, favorite.Symbol)
			if err != nil {
				log.Printf("degrading %s to sentinel fields: %v", favorite.Symbol, err)
				snapshot = nil
			}
			enriched[i] = Merge(favorite, snapshot)
		}(i, favorite)
	}

	wg.Wait()

	return enriched, nil
}

// fetchSnapshot looks up one symbol with a per-call timeout and at most one
// retry before giving up.
func (s *WatchlistService) fetchSnapshot(ctx context.Context, symbol string) (*marketdata.Snapshot, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		snapshot, err := s.gateway.Fetch(callCtx, symbol)
		cancel()
		if err == nil {
			return snapshot, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrGateway, lastErr)
}
