package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/minhanh-dev/backend-moda/internal/cache"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

type stubQuerier struct {
	Querier
	salesCalls int
	sales      []store.SalesDaily
}

func (s *stubQuerier) SalesDailyRange(context.Context, time.Time, time.Time) ([]store.SalesDaily, error) {
	s.salesCalls++
	return s.sales, nil
}

func TestSalesDailyCachesResult(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	q := &stubQuerier{sales: []store.SalesDaily{{Day: day, Orders: 4, Revenue: 1_200_000}}}
	svc := &Service{
		Q:           q,
		Cache:       cache.New(client, time.Minute),
		Log:         zerolog.Nop(),
		DefaultDays: 30,
		Now:         func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) },
	}

	first, err := svc.SalesDaily(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.SalesDaily(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, q.salesCalls, "second read must come from cache")
}

func TestWindowFallsBackToDefault(t *testing.T) {
	svc := &Service{DefaultDays: 30, Now: func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }}
	from, to := svc.window(0)
	require.Equal(t, 30, int(to.Sub(from).Hours()/24))
}
