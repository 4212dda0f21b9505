package favorites

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

// Querier is the subset of the store the wishlist needs.
type Querier interface {
	AddFavorite(ctx context.Context, userID, productID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error
	IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]store.FavoriteProduct, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (store.Product, error)
}

// Service manages per-user wishlists.
type Service struct {
	Q Querier
}

// List returns the user's wishlist newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]store.FavoriteProduct, error) {
	return s.Q.ListFavorites(ctx, userID)
}

// Toggle flips the wishlist state for a product and reports the new state.
func (s *Service) Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	if _, err := s.Q.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
		}
		return false, err
	}
	favorited, err := s.Q.IsFavorite(ctx, userID, productID)
	if err != nil {
		return false, err
	}
	if favorited {
		return false, s.Q.RemoveFavorite(ctx, userID, productID)
	}
	return true, s.Q.AddFavorite(ctx, userID, productID)
}

// Check reports whether the product is on the user's wishlist.
func (s *Service) Check(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return s.Q.IsFavorite(ctx, userID, productID)
}
