package favorites

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

type stubQuerier struct {
	products map[uuid.UUID]store.Product
	saved    map[uuid.UUID]bool
}

func (s *stubQuerier) AddFavorite(_ context.Context, _, productID uuid.UUID) error {
	s.saved[productID] = true
	return nil
}

func (s *stubQuerier) RemoveFavorite(_ context.Context, _, productID uuid.UUID) error {
	delete(s.saved, productID)
	return nil
}

func (s *stubQuerier) IsFavorite(_ context.Context, _, productID uuid.UUID) (bool, error) {
	return s.saved[productID], nil
}

func (s *stubQuerier) ListFavorites(context.Context, uuid.UUID) ([]store.FavoriteProduct, error) {
	return nil, nil
}

func (s *stubQuerier) GetProductByID(_ context.Context, id uuid.UUID) (store.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return store.Product{}, store.ErrNotFound
	}
	return p, nil
}

func TestToggleFlipsState(t *testing.T) {
	productID := uuid.New()
	userID := uuid.New()
	q := &stubQuerier{
		products: map[uuid.UUID]store.Product{productID: {ID: productID}},
		saved:    map[uuid.UUID]bool{},
	}
	svc := &Service{Q: q}

	favorited, err := svc.Toggle(context.Background(), userID, productID)
	require.NoError(t, err)
	require.True(t, favorited)
	require.True(t, q.saved[productID])

	favorited, err = svc.Toggle(context.Background(), userID, productID)
	require.NoError(t, err)
	require.False(t, favorited)
	require.False(t, q.saved[productID])
}

func TestToggleUnknownProduct(t *testing.T) {
	q := &stubQuerier{products: map[uuid.UUID]store.Product{}, saved: map[uuid.UUID]bool{}}
	svc := &Service{Q: q}

	_, err := svc.Toggle(context.Background(), uuid.New(), uuid.New())
	require.True(t, common.IsAppError(err))
}
