package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

type stubQuerier struct {
	product   store.Product
	purchased bool
	saved     *store.Review
}

func (s *stubQuerier) UpsertReview(_ context.Context, r store.Review) (store.Review, error) {
	s.saved = &r
	return r, nil
}

func (s *stubQuerier) DeleteReview(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (s *stubQuerier) CountReviews(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (s *stubQuerier) ListReviews(context.Context, uuid.UUID, int32, int32) ([]store.Review, error) {
	return nil, nil
}

func (s *stubQuerier) ProductRating(context.Context, uuid.UUID) (store.RatingSummary, error) {
	return store.RatingSummary{}, nil
}

func (s *stubQuerier) HasPurchased(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return s.purchased, nil
}

func (s *stubQuerier) GetProductByID(_ context.Context, id uuid.UUID) (store.Product, error) {
	if id != s.product.ID {
		return store.Product{}, store.ErrNotFound
	}
	return s.product, nil
}

func TestSubmitRequiresPurchase(t *testing.T) {
	productID := uuid.New()
	q := &stubQuerier{product: store.Product{ID: productID}, purchased: false}
	svc := &Service{Q: q}

	_, err := svc.Submit(context.Background(), uuid.New(), productID, Input{Rating: 5})
	require.True(t, common.IsAppError(err))
	require.Nil(t, q.saved)
}

func TestSubmitSavesBuyerReview(t *testing.T) {
	productID := uuid.New()
	userID := uuid.New()
	q := &stubQuerier{product: store.Product{ID: productID}, purchased: true}
	svc := &Service{Q: q}

	blank := "   "
	review, err := svc.Submit(context.Background(), userID, productID, Input{Rating: 4, Comment: &blank})
	require.NoError(t, err)
	require.Equal(t, int32(4), review.Rating)
	require.Nil(t, review.Comment)
	require.Equal(t, userID, q.saved.UserID)
}

func TestSubmitUnknownProduct(t *testing.T) {
	q := &stubQuerier{product: store.Product{ID: uuid.New()}, purchased: true}
	svc := &Service{Q: q}

	_, err := svc.Submit(context.Background(), uuid.New(), uuid.New(), Input{Rating: 3})
	require.True(t, common.IsAppError(err))
}
