package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/gym_go_server/internal/model"
)

type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) Create(offer *model.MembershipOffer) error {
	return r.db.Create(offer).Error
}

func (r *OfferRepository) GetByID(id int64) (*model.MembershipOffer, error) {
	var offer model.MembershipOffer
	err := r.db.Where("id = ?", id).First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *OfferRepository) ListActive() ([]*model.MembershipOffer, error) {
	var offers []*model.MembershipOffer
	err := r.db.Where("is_active = ?", true).Order("price ASC").Find(&offers).Error
	return offers, err
}

func (r *OfferRepository) GetPromoByID(id int64) (*model.Promo, error) {
	var promo model.Promo
	err := r.db.Where("id = ?", id).First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// GetActiveFirstTimeDiscount 当前启用的首购优惠（最多一个生效）
func (r *OfferRepository) GetActiveFirstTimeDiscount() (*model.FirstTimeDiscount, error) {
	var discount model.FirstTimeDiscount
	err := r.db.Where("is_active = ?", true).Order("created_at DESC").First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}
