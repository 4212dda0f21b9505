package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/minhanh-dev/backend-moda/internal/cache"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

// Querier is the subset of store access the analytics service needs.
type Querier interface {
	SalesDailyRange(ctx context.Context, from, to time.Time) ([]store.SalesDaily, error)
	TopProductsRange(ctx context.Context, from, to time.Time, limit int32) ([]store.TopProduct, error)
	Overview(ctx context.Context, from, to time.Time) (store.OverviewStats, error)
}

// Service computes back-office sales statistics over rolling windows.
type Service struct {
	Q           Querier
	Cache       *cache.Cache
	Log         zerolog.Logger
	DefaultDays int
	Now         func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) window(days int) (time.Time, time.Time) {
	if days < 1 {
		days = s.DefaultDays
	}
	if days < 1 {
		days = 30
	}
	to := s.now().Truncate(24 * time.Hour).Add(24 * time.Hour)
	return to.AddDate(0, 0, -days), to
}

// SalesDaily returns per-day revenue for the last days days.
func (s *Service) SalesDaily(ctx context.Context, days int) ([]store.SalesDaily, error) {
	from, to := s.window(days)
	key := fmt.Sprintf("analytics:sales:%s:%s", from.Format("20060102"), to.Format("20060102"))
	var cached []store.SalesDaily
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := s.Q.SalesDailyRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales daily: %w", err)
	}
	if err := s.Cache.SetJSON(ctx, key, rows); err != nil {
		s.Log.Warn().Err(err).Msg("cache sales daily")
	}
	return rows, nil
}

// TopProducts returns best sellers for the last days days.
func (s *Service) TopProducts(ctx context.Context, days, limit int) ([]store.TopProduct, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	from, to := s.window(days)
	key := fmt.Sprintf("analytics:top:%s:%s:%d", from.Format("20060102"), to.Format("20060102"), limit)
	var cached []store.TopProduct
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := s.Q.TopProductsRange(ctx, from, to, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	if err := s.Cache.SetJSON(ctx, key, rows); err != nil {
		s.Log.Warn().Err(err).Msg("cache top products")
	}
	return rows, nil
}

// Overview returns the headline dashboard counters for the last days days.
func (s *Service) Overview(ctx context.Context, days int) (store.OverviewStats, error) {
	from, to := s.window(days)
	stats, err := s.Q.Overview(ctx, from, to)
	if err != nil {
		return store.OverviewStats{}, fmt.Errorf("overview: %w", err)
	}
	return stats, nil
}
