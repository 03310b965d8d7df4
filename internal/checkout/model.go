package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/mateovidal/spinmart-backend/internal/cart"
)

// OrderRecord is the audit snapshot persisted when an order is placed. All
// money columns are in cents so the table never carries floating point.
type OrderRecord struct {
	ID                uuid.UUID   `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID         string      `gorm:"column:session_id;not null" json:"session_id"`
	UserID            *uuid.UUID  `gorm:"column:user_id;type:uuid" json:"user_id,omitempty"`
	CityID            string      `gorm:"column:city_id;not null" json:"city_id"`
	SubtotalCents     int64       `gorm:"column:subtotal_cents;not null" json:"subtotal_cents"`
	FlatDiscountCents int64       `gorm:"column:flat_discount_cents;not null" json:"flat_discount_cents"`
	LoyaltyCents      int64       `gorm:"column:loyalty_cents;not null" json:"loyalty_cents"`
	SpinDiscountCents int64       `gorm:"column:spin_discount_cents;not null" json:"spin_discount_cents"`
	ShippingCents     int64       `gorm:"column:shipping_cents;not null" json:"shipping_cents"`
	GrandTotalCents   int64       `gorm:"column:grand_total_cents;not null" json:"grand_total_cents"`
	Items             []cart.Item `gorm:"column:items;type:jsonb;serializer:json" json:"items"`
	CreatedAt         time.Time   `gorm:"column:created_at" json:"created_at"`
}

func (OrderRecord) TableName() string {
	return "order_records"
}
