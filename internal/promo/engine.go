package promo

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minhanh-dev/backend-moda/internal/store"
)

// InEffect reports whether p is live at the given instant. Both window
// boundaries are inclusive.
func InEffect(p store.Promotion, now time.Time) bool {
	if p.Status != store.PromotionActive {
		return false
	}
	return !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// AppliesTo reports whether p targets the product. An empty product list
// means the promotion is store-wide.
func AppliesTo(p store.Promotion, productID uuid.UUID) bool {
	if len(p.ProductIDs) == 0 {
		return true
	}
	for _, id := range p.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Resolve picks the winning promotion for a product among candidates:
// highest discount percent wins, and on equal percent the promotion with
// the lexicographically smaller id wins so the outcome is stable across
// calls. The second return is false when nothing applies.
func Resolve(candidates []store.Promotion, productID uuid.UUID, now time.Time) (store.Promotion, bool) {
	var best store.Promotion
	found := false
	for _, p := range candidates {
		if !InEffect(p, now) || !AppliesTo(p, productID) {
			continue
		}
		if !found || wins(p, best) {
			best = p
			found = true
		}
	}
	return best, found
}

func wins(a, b store.Promotion) bool {
	if a.DiscountPercent != b.DiscountPercent {
		return a.DiscountPercent > b.DiscountPercent
	}
	return strings.Compare(a.ID.String(), b.ID.String()) < 0
}

// DiscountedPrice applies a percentage discount to a base price, rounding
// half up to the nearest minor unit. Percent is clamped to [0, 100].
func DiscountedPrice(basePrice int64, percent int32) int64 {
	if percent <= 0 || basePrice <= 0 {
		return basePrice
	}
	if percent >= 100 {
		return 0
	}
	return (basePrice*int64(100-percent) + 50) / 100
}

// Applied describes the outcome of resolving promotions against one product.
type Applied struct {
	Promotion       *store.Promotion
	DiscountPercent int32
	OriginalPrice   int64
	FinalPrice      int64
}

// Apply resolves the winning promotion for one product and computes the
// resulting price. Every product is priced against the same now so a single
// request sees a consistent promotion set.
func Apply(candidates []store.Promotion, productID uuid.UUID, basePrice int64, now time.Time) Applied {
	out := Applied{OriginalPrice: basePrice, FinalPrice: basePrice}
	winner, ok := Resolve(candidates, productID, now)
	if !ok {
		return out
	}
	out.Promotion = &winner
	out.DiscountPercent = winner.DiscountPercent
	out.FinalPrice = DiscountedPrice(basePrice, winner.DiscountPercent)
	return out
}
