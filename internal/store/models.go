package store

import (
	"time"

	"github.com/google/uuid"
)

// Promotion statuses.
const (
	PromotionActive   = "ACTIVE"
	PromotionInactive = "INACTIVE"
)

// Voucher discount kinds.
const (
	VoucherPercentage  = "PERCENTAGE"
	VoucherFixedAmount = "FIXED_AMOUNT"
)

// Order statuses.
const (
	OrderPendingConfirm = "CHO_XAC_NHAN"
	OrderShipping       = "DANG_GIAO"
	OrderDelivered      = "DA_GIAO_HANG"
	OrderCompleted      = "HOAN_THANH"
	OrderCancelled      = "DA_HUY"
)

// Payment statuses.
const (
	PaymentUnpaid   = "UNPAID"
	PaymentPaid     = "PAID"
	PaymentRefunded = "REFUNDED"
)

// Return request statuses.
const (
	ReturnPending  = "CHO_XU_LY"
	ReturnRefunded = "DA_HOAN_TIEN"
	ReturnCancelled = "DA_HUY"
)

// Brand is a product manufacturer/label.
type Brand struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// Category is a product grouping, optionally nested.
type Category struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	ParentID *uuid.UUID `json:"parentId,omitempty"`
}

// Size is a catalog-wide size option.
type Size struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SortOrder int32     `json:"sortOrder"`
}

// Color is a catalog-wide color option.
type Color struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Hex  string    `json:"hex"`
}

// Product is a sellable item; pricing lives on its variants.
type Product struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	BrandID     *uuid.UUID `json:"brandId,omitempty"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Variant is a color/size combination with its own price and stock.
// The first variant by position carries the product's base price.
type Variant struct {
	ID        uuid.UUID  `json:"id"`
	ProductID uuid.UUID  `json:"productId"`
	ColorID   *uuid.UUID `json:"colorId,omitempty"`
	SizeID    *uuid.UUID `json:"sizeId,omitempty"`
	SKU       *string    `json:"sku,omitempty"`
	Price     int64      `json:"price"`
	Stock     int32      `json:"stock"`
	Position  int32      `json:"position"`
}

// ProductImage is an image attached to a product or one of its variants.
type ProductImage struct {
	ID        uuid.UUID  `json:"id"`
	ProductID uuid.UUID  `json:"productId"`
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	URL       string     `json:"url"`
	Position  int32      `json:"position"`
}

// Promotion is a time-bounded percentage discount, store-wide when
// ProductIDs is empty.
type Promotion struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	ProductIDs      []uuid.UUID `json:"productIds"`
	DiscountPercent int32       `json:"discountPercent"`
	StartDate       time.Time   `json:"startDate"`
	EndDate         time.Time   `json:"endDate"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Voucher is a customer-entered discount code.
type Voucher struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	Kind          string     `json:"discountType"`
	Value         int64      `json:"discountValue"`
	MaxDiscount   int64      `json:"maxDiscount"`
	MinOrderValue int64      `json:"minOrderValue"`
	ValidFrom     *time.Time `json:"validFrom,omitempty"`
	ValidTo       *time.Time `json:"validTo,omitempty"`
	UsageLimit    *int32     `json:"usageLimit,omitempty"`
	UsedCount     int32      `json:"usedCount"`
}

// Cart holds pending line items for a user or anonymous visitor.
type Cart struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             *uuid.UUID `json:"userId,omitempty"`
	AnonID             *string    `json:"anonId,omitempty"`
	AppliedVoucherCode *string    `json:"appliedVoucherCode,omitempty"`
	ExpiresAt          time.Time  `json:"expiresAt"`
}

// CartItem captures a line at the price in effect when it was added.
type CartItem struct {
	ID              uuid.UUID  `json:"id"`
	CartID          uuid.UUID  `json:"cartId"`
	ProductID       uuid.UUID  `json:"productId"`
	VariantID       *uuid.UUID `json:"variantId,omitempty"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Qty             int32      `json:"qty"`
	UnitPrice       int64      `json:"unitPrice"`
	OriginalPrice   int64      `json:"originalPrice"`
	DiscountPercent int32      `json:"discountPercent"`
	Subtotal        int64      `json:"subtotal"`
}

// Order is immutable once placed apart from status transitions.
type Order struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"userId"`
	Status             string    `json:"orderStatus"`
	PaymentStatus      string    `json:"paymentStatus"`
	Currency           string    `json:"currency"`
	Subtotal           int64     `json:"subtotal"`
	Discount           int64     `json:"discount"`
	Tax                int64     `json:"tax"`
	Shipping           int64     `json:"shipping"`
	Total              int64     `json:"total"`
	AppliedVoucherCode *string   `json:"appliedVoucherCode,omitempty"`
	ShippingAddress    []byte    `json:"-"`
	Notes              *string   `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// OrderItem is a frozen order line.
type OrderItem struct {
	ID        uuid.UUID  `json:"id"`
	OrderID   uuid.UUID  `json:"orderId"`
	ProductID uuid.UUID  `json:"productId"`
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug"`
	Qty       int32      `json:"qty"`
	UnitPrice int64      `json:"unitPrice"`
	Subtotal  int64      `json:"subtotal"`
}

// ReturnRequest is a customer request to send back order lines for refund.
type ReturnRequest struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"orderId"`
	UserID      uuid.UUID `json:"userId"`
	Status      string    `json:"status"`
	Reason      *string   `json:"reason,omitempty"`
	TotalRefund int64     `json:"totalRefund"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ReturnItem is a line on a return request.
type ReturnItem struct {
	ID          uuid.UUID  `json:"id"`
	ReturnID    uuid.UUID  `json:"returnId"`
	OrderItemID uuid.UUID  `json:"orderItemId"`
	ProductID   uuid.UUID  `json:"productId"`
	VariantID   *uuid.UUID `json:"variantId,omitempty"`
	Title       string     `json:"title"`
	Qty         int32      `json:"qty"`
	UnitPrice   int64      `json:"unitPrice"`
	Reason      *string    `json:"reason,omitempty"`
}

// SalesDaily is an aggregated revenue row for statistics.
type SalesDaily struct {
	Day     time.Time `json:"day"`
	Orders  int64     `json:"orders"`
	Revenue int64     `json:"revenue"`
}

// TopProduct is an aggregated best-seller row for statistics.
type TopProduct struct {
	ProductID uuid.UUID `json:"productId"`
	Title     string    `json:"title"`
	QtySold   int64     `json:"qtySold"`
	Revenue   int64     `json:"revenue"`
}
