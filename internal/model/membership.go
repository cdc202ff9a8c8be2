package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	DurationTypeMonth = "MONTH"
	DurationTypeYear  = "YEAR"

	BillingTypeOneTime   = "ONE_TIME"
	BillingTypeRecurring = "RECURRING"

	SubscriptionStatusActive    = "ACTIVE"
	SubscriptionStatusExpired   = "EXPIRED"
	SubscriptionStatusCancelled = "CANCELLED"
)

var (
	ErrInvalidSubscriptionRange = errors.New("会员开始日期必须早于结束日期")
	ErrSubscriptionAlreadyOver  = errors.New("会员结束日期不能早于当前时间")
)

type MembershipOffer struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Price         float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	DurationType  string    `gorm:"size:10;not null" json:"duration_type"` // MONTH, YEAR
	DurationValue int       `gorm:"not null;default:1" json:"duration_value"`
	BillingType   string    `gorm:"size:20;not null;default:ONE_TIME" json:"billing_type"` // ONE_TIME, RECURRING
	// 不能带列默认值：GORM 会把零值 false 从 INSERT 里省掉，下架状态就写不进去
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

func (MembershipOffer) TableName() string {
	return "membership_offers"
}

// PeriodEnd 按套餐周期推进日期
func (o *MembershipOffer) PeriodEnd(from time.Time) time.Time {
	if o.DurationType == DurationTypeYear {
		return from.AddDate(o.DurationValue, 0, 0)
	}
	return from.AddDate(0, o.DurationValue, 0)
}

type Promo struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	DiscountPercent float64   `gorm:"type:decimal(5,2);not null" json:"discount_percent"`
	StartsAt        time.Time `gorm:"not null" json:"starts_at"`
	EndsAt          time.Time `gorm:"not null" json:"ends_at"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Promo) TableName() string {
	return "promos"
}

// ValidAt 活动是否在指定时间可用
func (p *Promo) ValidAt(t time.Time) bool {
	return p.IsActive && !t.Before(p.StartsAt) && t.Before(p.EndsAt)
}

type FirstTimeDiscount struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	DiscountPercent float64   `gorm:"type:decimal(5,2);not null" json:"discount_percent"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

func (FirstTimeDiscount) TableName() string {
	return "first_time_discounts"
}

type MembershipSubscription struct {
	ID                  int64     `gorm:"primaryKey" json:"id"`
	UserID              int64     `gorm:"not null;index" json:"user_id"`
	OfferID             int64     `gorm:"not null;index" json:"offer_id"`
	PromoID             *int64    `gorm:"index" json:"promo_id,omitempty"`
	FirstTimeDiscountID *int64    `json:"first_time_discount_id,omitempty"`
	PricePaid           float64   `gorm:"type:decimal(10,2);not null" json:"price_paid"`
	StartDate           time.Time `gorm:"not null" json:"start_date"`
	EndDate             time.Time `gorm:"not null;index" json:"end_date"`
	Status              string    `gorm:"size:20;default:ACTIVE;index" json:"status"` // ACTIVE, EXPIRED, CANCELLED
	IsRecurring         bool      `gorm:"default:false" json:"is_recurring"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (MembershipSubscription) TableName() string {
	return "membership_subscriptions"
}

// BeforeSave ACTIVE 状态的记录不允许带着过期的 end_date 落库：
// 已有记录自动转为 EXPIRED，新记录直接拒绝
func (s *MembershipSubscription) BeforeSave(tx *gorm.DB) error {
	if s.StartDate.IsZero() && s.EndDate.IsZero() {
		return nil
	}
	if !s.StartDate.Before(s.EndDate) {
		return ErrInvalidSubscriptionRange
	}
	if s.Status == SubscriptionStatusActive && s.EndDate.Before(time.Now()) {
		if s.ID == 0 {
			return ErrSubscriptionAlreadyOver
		}
		s.Status = SubscriptionStatusExpired
	}
	return nil
}
