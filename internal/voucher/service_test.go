package voucher

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

type stubQuerier struct {
	Querier
	byCode map[string]store.Voucher
}

func (s *stubQuerier) GetVoucherByCode(_ context.Context, code string) (store.Voucher, error) {
	v, ok := s.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return store.Voucher{}, store.ErrNotFound
	}
	return v, nil
}

func newService(vouchers ...store.Voucher) *Service {
	byCode := make(map[string]store.Voucher, len(vouchers))
	for _, v := range vouchers {
		byCode[v.Code] = v
	}
	return &Service{
		Q:   &stubQuerier{byCode: byCode},
		Log: zerolog.Nop(),
		Now: func() time.Time { return engineNow },
	}
}

func TestCheckCaseInsensitiveLookup(t *testing.T) {
	svc := newService(store.Voucher{Code: "SUMMER25", Kind: store.VoucherPercentage, Value: 25})

	got, err := svc.Check(context.Background(), "summer25", 400_000)
	require.NoError(t, err)
	require.Equal(t, int64(100_000), got.DiscountValue)
	require.Equal(t, "SUMMER25", got.Voucher.Code)
}

func TestCheckUnknownCode(t *testing.T) {
	svc := newService()

	_, err := svc.Check(context.Background(), "NOPE", 100_000)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VOUCHER_NOT_FOUND", appErr.Code)
	require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}

func TestCheckMinOrderSurfacesTypedError(t *testing.T) {
	svc := newService(store.Voucher{Code: "BIGSPEND", Kind: store.VoucherFixedAmount, Value: 50_000, MinOrderValue: 300_000})

	_, err := svc.Check(context.Background(), "BIGSPEND", 200_000)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VOUCHER_MIN_ORDER", appErr.Code)
	require.ErrorIs(t, err, ErrMinOrderNotMet)
}

func TestCheckExpired(t *testing.T) {
	past := engineNow.Add(-time.Hour)
	svc := newService(store.Voucher{Code: "OLD", Kind: store.VoucherPercentage, Value: 10, ValidTo: &past})

	_, err := svc.Check(context.Background(), "OLD", 100_000)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VOUCHER_EXPIRED", appErr.Code)
}
