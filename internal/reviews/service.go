package reviews

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

// Querier is the subset of the store the review feature needs.
type Querier interface {
	UpsertReview(ctx context.Context, r store.Review) (store.Review, error)
	DeleteReview(ctx context.Context, userID, productID uuid.UUID) error
	CountReviews(ctx context.Context, productID uuid.UUID) (int64, error)
	ListReviews(ctx context.Context, productID uuid.UUID, limit, offset int32) ([]store.Review, error)
	ProductRating(ctx context.Context, productID uuid.UUID) (store.RatingSummary, error)
	HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (store.Product, error)
}

// Service manages product reviews. Only verified buyers may review.
type Service struct {
	Q Querier
}

// Input is a review submission.
type Input struct {
	Rating  int32   `json:"rating" validate:"required,gte=1,lte=5"`
	Comment *string `json:"comment"`
}

// Listing is one page of reviews plus the aggregate rating.
type Listing struct {
	Reviews []store.Review      `json:"reviews"`
	Rating  store.RatingSummary `json:"rating"`
}

// Submit creates or replaces the caller's review of the product.
func (s *Service) Submit(ctx context.Context, userID, productID uuid.UUID, in Input) (store.Review, error) {
	if _, err := s.Q.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Review{}, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
		}
		return store.Review{}, err
	}
	purchased, err := s.Q.HasPurchased(ctx, userID, productID)
	if err != nil {
		return store.Review{}, err
	}
	if !purchased {
		return store.Review{}, common.NewAppError("NOT_PURCHASED", "only buyers with a delivered order can review", http.StatusUnprocessableEntity, nil)
	}
	comment := in.Comment
	if comment != nil && strings.TrimSpace(*comment) == "" {
		comment = nil
	}
	return s.Q.UpsertReview(ctx, store.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   comment,
	})
}

// Delete removes the caller's review of the product.
func (s *Service) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.Q.DeleteReview(ctx, userID, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return common.NewAppError("NOT_FOUND", "review not found", http.StatusNotFound, err)
		}
		return err
	}
	return nil
}

// List returns a page of the product's reviews with the aggregate rating.
func (s *Service) List(ctx context.Context, productID uuid.UUID, page, limit int) (Listing, int64, error) {
	total, err := s.Q.CountReviews(ctx, productID)
	if err != nil {
		return Listing{}, 0, err
	}
	rows, err := s.Q.ListReviews(ctx, productID, int32(limit), int32((page-1)*limit))
	if err != nil {
		return Listing{}, 0, err
	}
	rating, err := s.Q.ProductRating(ctx, productID)
	if err != nil {
		return Listing{}, 0, err
	}
	return Listing{Reviews: rows, Rating: rating}, total, nil
}
