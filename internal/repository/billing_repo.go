package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/gym_go_server/internal/model"
)

type BillingRepository struct {
	db *gorm.DB
}

func NewBillingRepository(db *gorm.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

func (r *BillingRepository) GetByID(id int64) (*model.BillingStatement, error) {
	var stmt model.BillingStatement
	err := r.db.Where("id = ?", id).First(&stmt).Error
	if err != nil {
		return nil, err
	}
	return &stmt, nil
}

func (r *BillingRepository) ListByUser(userID int64) ([]*model.BillingStatement, error) {
	var stmts []*model.BillingStatement
	err := r.db.Where("user_id = ?", userID).Order("statement_date DESC").Find(&stmts).Error
	return stmts, err
}

// HasPendingForSubscription 幂等守卫：该订阅是否已有未支付账单
func (r *BillingRepository) HasPendingForSubscription(subscriptionID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.BillingStatement{}).
		Where("subscription_id = ? AND status = ?", subscriptionID, model.StatementStatusPending).
		Count(&count).Error
	return count > 0, err
}

// CreateWithPayment 账单 + 待支付记录一个事务落库，并互相关联。
// 事务内再查一次 PENDING 账单，防止两次扫描重复生成。
func (r *BillingRepository) CreateWithPayment(stmt *model.BillingStatement, payment *model.Payment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.BillingStatement{}).
			Where("subscription_id = ? AND status = ?", stmt.SubscriptionID, model.StatementStatusPending).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrDuplicatedKey
		}

		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		stmt.PaymentID = &payment.ID
		return tx.Create(stmt).Error
	})
}

// GetBySubscriptionPending 查询订阅当前的未支付账单
func (r *BillingRepository) GetBySubscriptionPending(subscriptionID int64) (*model.BillingStatement, error) {
	var stmt model.BillingStatement
	err := r.db.Where("subscription_id = ? AND status = ?", subscriptionID, model.StatementStatusPending).
		First(&stmt).Error
	if err != nil {
		return nil, err
	}
	return &stmt, nil
}

// MarkPaidByPayment 支付确认后同步账单状态
func (r *BillingRepository) MarkPaidByPayment(paymentID int64) error {
	return r.db.Model(&model.BillingStatement{}).
		Where("payment_id = ? AND status = ?", paymentID, model.StatementStatusPending).
		Update("status", model.StatementStatusPaid).Error
}
