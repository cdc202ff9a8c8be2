package model

import (
	"time"
)

const (
	StatementStatusPending   = "PENDING"
	StatementStatusPaid      = "PAID"
	StatementStatusCancelled = "CANCELLED"
)

// BillingStatement 续费账单，每个订阅每个计费周期只生成一条
type BillingStatement struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	UserID         int64     `gorm:"not null;index" json:"user_id"`
	SubscriptionID int64     `gorm:"not null;index" json:"subscription_id"`
	StatementDate  time.Time `gorm:"not null" json:"statement_date"`
	PeriodStart    time.Time `gorm:"not null" json:"period_start"`
	PeriodEnd      time.Time `gorm:"not null" json:"period_end"`
	Amount         float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status         string    `gorm:"size:20;default:PENDING;index" json:"status"` // PENDING, PAID, CANCELLED
	DueDate        time.Time `gorm:"not null" json:"due_date"`
	PaymentID      *int64    `gorm:"index" json:"payment_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (BillingStatement) TableName() string {
	return "billing_statements"
}
