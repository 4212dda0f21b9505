package promo

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/minhanh-dev/backend-moda/internal/store"
)

var (
	testNow    = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	productOne = uuid.MustParse("11111111-1111-1111-1111-111111111111")
)

func promotion(id string, percent int32, status string, start, end time.Time, products ...uuid.UUID) store.Promotion {
	return store.Promotion{
		ID:              uuid.MustParse(id),
		Name:            "promo " + id[:8],
		ProductIDs:      products,
		DiscountPercent: percent,
		StartDate:       start,
		EndDate:         end,
		Status:          status,
	}
}

func TestInEffectRejectsInactiveAndOutOfWindow(t *testing.T) {
	window := promotion("aaaaaaaa-0000-0000-0000-000000000001", 10, store.PromotionActive,
		testNow.Add(-time.Hour), testNow.Add(time.Hour))

	inactive := window
	inactive.Status = store.PromotionInactive
	if InEffect(inactive, testNow) {
		t.Fatal("INACTIVE promotion must never be in effect")
	}

	early := window
	early.StartDate = testNow.Add(time.Minute)
	if InEffect(early, testNow) {
		t.Fatal("promotion before its start date must not be in effect")
	}

	late := window
	late.EndDate = testNow.Add(-time.Minute)
	if InEffect(late, testNow) {
		t.Fatal("promotion past its end date must not be in effect")
	}
}

func TestInEffectBoundariesInclusive(t *testing.T) {
	p := promotion("aaaaaaaa-0000-0000-0000-000000000002", 10, store.PromotionActive,
		testNow, testNow.Add(time.Hour))
	if !InEffect(p, p.StartDate) {
		t.Fatal("promotion must be in effect exactly at its start date")
	}
	if !InEffect(p, p.EndDate) {
		t.Fatal("promotion must be in effect exactly at its end date")
	}
	if InEffect(p, p.EndDate.Add(time.Nanosecond)) {
		t.Fatal("promotion must end right after its end date")
	}
}

func TestResolveHighestPercentWins(t *testing.T) {
	start, end := testNow.Add(-time.Hour), testNow.Add(time.Hour)
	small := promotion("aaaaaaaa-0000-0000-0000-000000000003", 10, store.PromotionActive, start, end)
	big := promotion("bbbbbbbb-0000-0000-0000-000000000004", 25, store.PromotionActive, start, end)

	winner, ok := Resolve([]store.Promotion{small, big}, productOne, testNow)
	if !ok {
		t.Fatal("expected a winner")
	}
	if winner.ID != big.ID {
		t.Fatalf("winner = %s, want the 25%% promotion", winner.ID)
	}
}

func TestResolveTieBreaksOnLowestID(t *testing.T) {
	start, end := testNow.Add(-time.Hour), testNow.Add(time.Hour)
	low := promotion("11111111-0000-0000-0000-000000000005", 20, store.PromotionActive, start, end)
	high := promotion("99999999-0000-0000-0000-000000000006", 20, store.PromotionActive, start, end)

	for _, candidates := range [][]store.Promotion{{low, high}, {high, low}} {
		winner, ok := Resolve(candidates, productOne, testNow)
		if !ok {
			t.Fatal("expected a winner")
		}
		if winner.ID != low.ID {
			t.Fatalf("winner = %s, want lowest id regardless of input order", winner.ID)
		}
	}
}

func TestResolveScopedToProduct(t *testing.T) {
	start, end := testNow.Add(-time.Hour), testNow.Add(time.Hour)
	other := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	scoped := promotion("aaaaaaaa-0000-0000-0000-000000000007", 30, store.PromotionActive, start, end, other)
	storewide := promotion("bbbbbbbb-0000-0000-0000-000000000008", 15, store.PromotionActive, start, end)

	winner, ok := Resolve([]store.Promotion{scoped, storewide}, productOne, testNow)
	if !ok {
		t.Fatal("expected the store-wide promotion to apply")
	}
	if winner.ID != storewide.ID {
		t.Fatalf("winner = %s, want the store-wide promotion", winner.ID)
	}
}

func TestDiscountedPriceRoundsHalfUp(t *testing.T) {
	cases := []struct {
		base    int64
		percent int32
		want    int64
	}{
		{100_000, 20, 80_000},
		{99_999, 15, 84_999}, // 84999.15 rounds down
		{101, 15, 86},        // 85.85 rounds up
		{333, 33, 223},       // 223.11 rounds down
		{100, 0, 100},
		{100, 100, 0},
		{100, -5, 100},
		{100, 120, 0},
	}
	for _, tc := range cases {
		if got := DiscountedPrice(tc.base, tc.percent); got != tc.want {
			t.Errorf("DiscountedPrice(%d, %d) = %d, want %d", tc.base, tc.percent, got, tc.want)
		}
	}
}

func TestApplyNoCandidatesKeepsBasePrice(t *testing.T) {
	got := Apply(nil, productOne, 150_000, testNow)
	if got.Promotion != nil || got.FinalPrice != 150_000 || got.DiscountPercent != 0 {
		t.Fatalf("expected untouched price, got %+v", got)
	}
}
