package model

import (
	"time"
)

const (
	PaymentMethodCash       = "CASH"
	PaymentMethodCard       = "ONLINE_CARD"
	PaymentMethodMaya       = "ONLINE_MAYA"
	PaymentMethodMayaWallet = "ONLINE_MAYA_WALLET"

	PaymentStatusPending   = "PENDING"
	PaymentStatusPaid      = "PAID"
	PaymentStatusCancelled = "CANCELLED"
	PaymentStatusFailed    = "FAILED"
)

type Payment struct {
	ID                  int64      `gorm:"primaryKey" json:"id"`
	UserID              int64      `gorm:"not null;index" json:"user_id"`
	OfferID             *int64     `gorm:"index" json:"offer_id,omitempty"`
	SubscriptionID      *int64     `gorm:"index" json:"subscription_id,omitempty"`
	PromoID             *int64     `json:"promo_id,omitempty"`
	FirstTimeDiscountID *int64     `json:"first_time_discount_id,omitempty"`
	PaymentCode         *string    `gorm:"size:8;uniqueIndex" json:"payment_code,omitempty"` // 取消后置空，编号可复用
	PaymentMethod       string     `gorm:"size:30;not null;default:CASH" json:"payment_method"`
	Amount              float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status              string     `gorm:"size:20;default:PENDING;index" json:"status"` // PENDING, PAID, CANCELLED, FAILED
	PaymentDate         *time.Time `json:"payment_date,omitempty"`
	GatewayReference    *string    `gorm:"size:100;index" json:"gateway_reference,omitempty"`
	CreatedAt           time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
