package promo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/minhanh-dev/backend-moda/internal/cache"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

type stubQuerier struct {
	Querier
	active []store.Promotion
	calls  int
}

func (s *stubQuerier) ListActivePromotions(_ context.Context, _ time.Time) ([]store.Promotion, error) {
	s.calls++
	return s.active, nil
}

func TestPriceForUsesWinningPromotion(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	product := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	q := &stubQuerier{active: []store.Promotion{
		promotion("aaaaaaaa-0000-0000-0000-00000000000a", 10, store.PromotionActive, now.Add(-time.Hour), now.Add(time.Hour)),
		promotion("bbbbbbbb-0000-0000-0000-00000000000b", 30, store.PromotionActive, now.Add(-time.Hour), now.Add(time.Hour)),
	}}
	svc := &Service{Q: q, Cache: cache.New(nil, 0), Log: zerolog.Nop(), Now: func() time.Time { return now }}

	applied, err := svc.PriceFor(context.Background(), product, 200_000)
	if err != nil {
		t.Fatalf("PriceFor: %v", err)
	}
	if applied.Promotion == nil || applied.DiscountPercent != 30 {
		t.Fatalf("expected the 30%% promotion to win, got %+v", applied)
	}
	if applied.FinalPrice != 140_000 {
		t.Fatalf("final price = %d, want 140000", applied.FinalPrice)
	}
}

func TestPriceForIdentityWhenNothingApplies(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	q := &stubQuerier{}
	svc := &Service{Q: q, Cache: cache.New(nil, 0), Log: zerolog.Nop(), Now: func() time.Time { return now }}

	applied, err := svc.PriceFor(context.Background(), uuid.New(), 99_000)
	if err != nil {
		t.Fatalf("PriceFor: %v", err)
	}
	if applied.Promotion != nil || applied.FinalPrice != 99_000 {
		t.Fatalf("expected identity pricing, got %+v", applied)
	}
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := &Service{Q: &stubQuerier{}, Cache: cache.New(nil, 0), Log: zerolog.Nop(), Now: func() time.Time { return now }}

	_, err := svc.Create(context.Background(), Input{
		Name:            "flash sale",
		DiscountPercent: 20,
		StartDate:       now,
		EndDate:         now.Add(-time.Hour),
		Status:          store.PromotionActive,
	})
	if err == nil {
		t.Fatal("expected an error for endDate before startDate")
	}
}
