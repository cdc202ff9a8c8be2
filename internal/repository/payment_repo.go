package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/gym_go_server/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(payment *model.Payment) error {
	return r.db.Create(payment).Error
}

func (r *PaymentRepository) GetByID(id int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByCode(code string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Where("payment_code = ?", code).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByGatewayReference(reference string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Where("gateway_reference = ?", reference).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Payment{}).Where("payment_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *PaymentRepository) ListByUser(userID int64, page, pageSize int) ([]*model.Payment, int64, error) {
	var items []*model.Payment
	var total int64

	q := r.db.Model(&model.Payment{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

func (r *PaymentRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Payment{}).Where("id = ?", id).Updates(fields).Error
}

// CancelStale 取消超期未支付的记录并清空付款编号（编号可被重新分配）
func (r *PaymentRepository) CancelStale(cutoff time.Time) (int64, error) {
	result := r.db.Model(&model.Payment{}).
		Where("status = ? AND created_at < ?", model.PaymentStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":       model.PaymentStatusCancelled,
			"payment_code": nil,
		})
	return result.RowsAffected, result.Error
}

// CountStale 统计将被 CancelStale 命中的行数（dry-run 用）
func (r *PaymentRepository) CountStale(cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Payment{}).
		Where("status = ? AND created_at < ?", model.PaymentStatusPending, cutoff).
		Count(&count).Error
	return count, err
}
