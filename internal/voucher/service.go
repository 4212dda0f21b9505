package voucher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/obs"
	"github.com/minhanh-dev/backend-moda/internal/store"
)

// Querier is the subset of store access the voucher service needs.
type Querier interface {
	CreateVoucher(ctx context.Context, v store.Voucher) (store.Voucher, error)
	UpdateVoucher(ctx context.Context, v store.Voucher) (store.Voucher, error)
	DeleteVoucher(ctx context.Context, id uuid.UUID) error
	GetVoucherByCode(ctx context.Context, code string) (store.Voucher, error)
	CountVouchers(ctx context.Context) (int64, error)
	ListVouchers(ctx context.Context, limit, offset int32) ([]store.Voucher, error)
}

// Service validates voucher codes and manages the voucher catalog.
type Service struct {
	Q   Querier
	Log zerolog.Logger
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Validation is the outcome of a successful voucher check.
type Validation struct {
	Voucher       store.Voucher `json:"voucher"`
	DiscountValue int64         `json:"discountValue"`
}

// Check resolves a code case-insensitively, validates it against the order
// value, and computes the discount. Rejections come back as AppError so
// handlers surface the reason to the caller.
func (s *Service) Check(ctx context.Context, code string, orderValue int64) (Validation, error) {
	v, err := s.Q.GetVoucherByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.count("not_found")
			return Validation{}, common.NewAppError("VOUCHER_NOT_FOUND", "voucher not found", http.StatusNotFound, ErrNotFound)
		}
		return Validation{}, fmt.Errorf("get voucher: %w", err)
	}
	if err := Validate(v, orderValue, s.now()); err != nil {
		s.count("rejected")
		return Validation{}, rejection(err)
	}
	s.count("valid")
	return Validation{Voucher: v, DiscountValue: Discount(v, orderValue)}, nil
}

func rejection(err error) *common.AppError {
	switch {
	case errors.Is(err, ErrInactive):
		return common.NewAppError("VOUCHER_INACTIVE", "voucher is not active yet", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrExpired):
		return common.NewAppError("VOUCHER_EXPIRED", "voucher has expired", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrUsageLimitReached):
		return common.NewAppError("VOUCHER_EXHAUSTED", "voucher usage limit reached", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrMinOrderNotMet):
		return common.NewAppError("VOUCHER_MIN_ORDER", "order value below voucher minimum", http.StatusUnprocessableEntity, err)
	default:
		return common.NewAppError("VOUCHER_INVALID", "voucher cannot be applied", http.StatusUnprocessableEntity, err)
	}
}

func (s *Service) count(result string) {
	if obs.VoucherValidationTotal != nil {
		obs.VoucherValidationTotal.WithLabelValues(result).Inc()
	}
}

// Input carries the fields accepted on create and update.
type Input struct {
	Code          string     `json:"code" validate:"required,min=3,max=40"`
	Kind          string     `json:"discountType" validate:"required,oneof=PERCENTAGE FIXED_AMOUNT"`
	Value         int64      `json:"discountValue" validate:"gt=0"`
	MaxDiscount   int64      `json:"maxDiscount" validate:"gte=0"`
	MinOrderValue int64      `json:"minOrderValue" validate:"gte=0"`
	ValidFrom     *time.Time `json:"validFrom"`
	ValidTo       *time.Time `json:"validTo"`
	UsageLimit    *int32     `json:"usageLimit"`
}

func (in Input) check() error {
	if in.Kind == store.VoucherPercentage && in.Value > 100 {
		return common.NewAppError("BAD_REQUEST", "percentage value must not exceed 100", http.StatusBadRequest, nil)
	}
	if in.ValidFrom != nil && in.ValidTo != nil && in.ValidTo.Before(*in.ValidFrom) {
		return common.NewAppError("BAD_REQUEST", "validTo must not be before validFrom", http.StatusBadRequest, nil)
	}
	return nil
}

func (in Input) model() store.Voucher {
	return store.Voucher{
		Code:          in.Code,
		Kind:          in.Kind,
		Value:         in.Value,
		MaxDiscount:   in.MaxDiscount,
		MinOrderValue: in.MinOrderValue,
		ValidFrom:     in.ValidFrom,
		ValidTo:       in.ValidTo,
		UsageLimit:    in.UsageLimit,
	}
}

// Create stores a new voucher.
func (s *Service) Create(ctx context.Context, in Input) (store.Voucher, error) {
	if err := in.check(); err != nil {
		return store.Voucher{}, err
	}
	created, err := s.Q.CreateVoucher(ctx, in.model())
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return store.Voucher{}, common.NewAppError("CONFLICT", "voucher code already exists", http.StatusConflict, err)
		}
		return store.Voucher{}, fmt.Errorf("create voucher: %w", err)
	}
	return created, nil
}

// Update replaces a voucher's fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (store.Voucher, error) {
	if err := in.check(); err != nil {
		return store.Voucher{}, err
	}
	m := in.model()
	m.ID = id
	updated, err := s.Q.UpdateVoucher(ctx, m)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return store.Voucher{}, common.NewAppError("NOT_FOUND", "voucher not found", http.StatusNotFound, err)
		case errors.Is(err, store.ErrConflict):
			return store.Voucher{}, common.NewAppError("CONFLICT", "voucher code already exists", http.StatusConflict, err)
		}
		return store.Voucher{}, fmt.Errorf("update voucher: %w", err)
	}
	return updated, nil
}

// Delete removes a voucher.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Q.DeleteVoucher(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return common.NewAppError("NOT_FOUND", "voucher not found", http.StatusNotFound, err)
		}
		return fmt.Errorf("delete voucher: %w", err)
	}
	return nil
}

// List returns a page of vouchers plus the total count.
func (s *Service) List(ctx context.Context, page, limit int) ([]store.Voucher, int64, error) {
	total, err := s.Q.CountVouchers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count vouchers: %w", err)
	}
	rows, err := s.Q.ListVouchers(ctx, int32(limit), int32((page-1)*limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list vouchers: %w", err)
	}
	return rows, total, nil
}
