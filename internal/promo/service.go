package promo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/minhanh-dev/backend-moda/internal/cache"
	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/obs"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

const activeCacheKey = "promo:active"

// Querier is the subset of store access the promotion service needs.
type Querier interface {
	CreatePromotion(ctx context.Context, p store.Promotion) (store.Promotion, error)
	UpdatePromotion(ctx context.Context, p store.Promotion) (store.Promotion, error)
	DeletePromotion(ctx context.Context, id uuid.UUID) error
	GetPromotion(ctx context.Context, id uuid.UUID) (store.Promotion, error)
	CountPromotions(ctx context.Context) (int64, error)
	ListPromotions(ctx context.Context, limit, offset int32) ([]store.Promotion, error)
	ListActivePromotions(ctx context.Context, now time.Time) ([]store.Promotion, error)
}

// Service manages promotions and resolves discounted prices.
type Service struct {
	Q     Querier
	Cache *cache.Cache
	Log   zerolog.Logger
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ActiveSet returns the promotions currently in effect. The set is cached
// briefly so catalog listings do not hit the database on every request.
func (s *Service) ActiveSet(ctx context.Context) ([]store.Promotion, error) {
	now := s.now()
	var cached []store.Promotion
	if ok, err := s.Cache.GetJSON(ctx, activeCacheKey, &cached); err == nil && ok {
		// Re-filter against the current clock: a cached entry may have
		// expired between cache write and read.
		live := cached[:0]
		for _, p := range cached {
			if InEffect(p, now) {
				live = append(live, p)
			}
		}
		return live, nil
	}
	promos, err := s.Q.ListActivePromotions(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list active promotions: %w", err)
	}
	if err := s.Cache.SetJSON(ctx, activeCacheKey, promos); err != nil {
		s.Log.Warn().Err(err).Msg("cache active promotions")
	}
	return promos, nil
}

// PriceFor resolves the current price of one product given its base price.
func (s *Service) PriceFor(ctx context.Context, productID uuid.UUID, basePrice int64) (Applied, error) {
	promos, err := s.ActiveSet(ctx)
	if err != nil {
		return Applied{}, err
	}
	applied := Apply(promos, productID, basePrice, s.now())
	if obs.PromoResolutionTotal != nil {
		result := "identity"
		if applied.Promotion != nil {
			result = "discounted"
		}
		obs.PromoResolutionTotal.WithLabelValues(result).Inc()
	}
	return applied, nil
}

// Input carries the fields accepted on create and update.
type Input struct {
	Name            string      `json:"name" validate:"required,min=2,max=120"`
	ProductIDs      []uuid.UUID `json:"productIds"`
	DiscountPercent int32       `json:"discountPercent" validate:"gte=0,lte=100"`
	StartDate       time.Time   `json:"startDate" validate:"required"`
	EndDate         time.Time   `json:"endDate" validate:"required"`
	Status          string      `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
}

func (in Input) check() error {
	if in.EndDate.Before(in.StartDate) {
		return common.NewAppError("BAD_REQUEST", "endDate must not be before startDate", http.StatusBadRequest, nil)
	}
	return nil
}

// Create stores a new promotion and drops the active-set cache.
func (s *Service) Create(ctx context.Context, in Input) (store.Promotion, error) {
	if err := in.check(); err != nil {
		return store.Promotion{}, err
	}
	created, err := s.Q.CreatePromotion(ctx, store.Promotion{
		Name:            in.Name,
		ProductIDs:      in.ProductIDs,
		DiscountPercent: in.DiscountPercent,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Status:          in.Status,
	})
	if err != nil {
		return store.Promotion{}, fmt.Errorf("create promotion: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

// Update replaces a promotion's fields and drops the active-set cache.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (store.Promotion, error) {
	if err := in.check(); err != nil {
		return store.Promotion{}, err
	}
	updated, err := s.Q.UpdatePromotion(ctx, store.Promotion{
		ID:              id,
		Name:            in.Name,
		ProductIDs:      in.ProductIDs,
		DiscountPercent: in.DiscountPercent,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Status:          in.Status,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Promotion{}, common.NewAppError("NOT_FOUND", "promotion not found", http.StatusNotFound, err)
		}
		return store.Promotion{}, fmt.Errorf("update promotion: %w", err)
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes a promotion and drops the active-set cache.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Q.DeletePromotion(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return common.NewAppError("NOT_FOUND", "promotion not found", http.StatusNotFound, err)
		}
		return fmt.Errorf("delete promotion: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// Get loads one promotion.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (store.Promotion, error) {
	p, err := s.Q.GetPromotion(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Promotion{}, common.NewAppError("NOT_FOUND", "promotion not found", http.StatusNotFound, err)
		}
		return store.Promotion{}, fmt.Errorf("get promotion: %w", err)
	}
	return p, nil
}

// List returns a page of promotions plus the total count.
func (s *Service) List(ctx context.Context, page, limit int) ([]store.Promotion, int64, error) {
	total, err := s.Q.CountPromotions(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count promotions: %w", err)
	}
	rows, err := s.Q.ListPromotions(ctx, int32(limit), int32((page-1)*limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list promotions: %w", err)
	}
	return rows, total, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.Cache.Invalidate(ctx, activeCacheKey); err != nil {
		s.Log.Warn().Err(err).Msg("invalidate promotion cache")
	}
}
