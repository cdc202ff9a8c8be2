package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/gym_go_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *model.MembershipSubscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepository) GetByID(id int64) (*model.MembershipSubscription, error) {
	var sub model.MembershipSubscription
	err := r.db.Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) Update(sub *model.MembershipSubscription) error {
	return r.db.Save(sub).Error
}

func (r *SubscriptionRepository) ListByUser(userID int64) ([]*model.MembershipSubscription, error) {
	var subs []*model.MembershipSubscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepository) GetActiveByUser(userID int64) (*model.MembershipSubscription, error) {
	var sub model.MembershipSubscription
	err := r.db.Where("user_id = ? AND status = ?", userID, model.SubscriptionStatusActive).
		Order("end_date DESC").First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListRenewalCandidates 到期日落在 [from, to] 的自动续费订阅
func (r *SubscriptionRepository) ListRenewalCandidates(from, to time.Time) ([]*model.MembershipSubscription, error) {
	var subs []*model.MembershipSubscription
	err := r.db.Where("status = ? AND is_recurring = ?", model.SubscriptionStatusActive, true).
		Where("end_date >= ? AND end_date <= ?", from, to).
		Order("end_date ASC").
		Find(&subs).Error
	return subs, err
}

// ExpireOverdue 把已过期的 ACTIVE 订阅批量转为 EXPIRED，返回影响行数。
// 跑完一遍后再跑一次找不到候选行，天然幂等。
func (r *SubscriptionRepository) ExpireOverdue(now time.Time) (int64, error) {
	result := r.db.Model(&model.MembershipSubscription{}).
		Where("status = ? AND end_date < ?", model.SubscriptionStatusActive, now).
		Update("status", model.SubscriptionStatusExpired)
	return result.RowsAffected, result.Error
}

// CreateWithPayment 购买会员：订阅 + 待支付记录一个事务落库。
// consumeFirstTimeDiscount 为 true 时在同一事务里核销用户的首购优惠，
// 任何一步失败整体回滚，优惠不会被白白用掉。
func (r *SubscriptionRepository) CreateWithPayment(sub *model.MembershipSubscription, payment *model.Payment, consumeFirstTimeDiscount bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		payment.SubscriptionID = &sub.ID
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		if consumeFirstTimeDiscount {
			return tx.Model(&model.User{}).Where("id = ?", sub.UserID).
				Update("first_time_discount_used", true).Error
		}
		return nil
	})
}
