package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/gym_go_server/config"
	"github.com/qs3c/gym_go_server/internal/model"
	"github.com/qs3c/gym_go_server/internal/model/dto"
	"github.com/qs3c/gym_go_server/internal/repository"
)

var (
	ErrOfferNotFound      = errors.New("会员套餐不存在")
	ErrOfferInactive      = errors.New("会员套餐已下架")
	ErrPromoNotApplicable = errors.New("优惠活动不在有效期内")
	ErrInvalidPayMethod   = errors.New("无效的支付方式")
)

var validMethods = map[string]bool{
	model.PaymentMethodCash:       true,
	model.PaymentMethodCard:       true,
	model.PaymentMethodMaya:       true,
	model.PaymentMethodMayaWallet: true,
}

type MembershipService struct {
	offerRepo        *repository.OfferRepository
	subscriptionRepo *repository.SubscriptionRepository
	userRepo         *repository.UserRepository
	paymentService   *PaymentService
	cfg              *config.Config
}

func NewMembershipService(
	offerRepo *repository.OfferRepository,
	subscriptionRepo *repository.SubscriptionRepository,
	userRepo *repository.UserRepository,
	paymentService *PaymentService,
	cfg *config.Config,
) *MembershipService {
	return &MembershipService{
		offerRepo:        offerRepo,
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		paymentService:   paymentService,
		cfg:              cfg,
	}
}

func (s *MembershipService) ListOffers() ([]*model.MembershipOffer, error) {
	return s.offerRepo.ListActive()
}

func (s *MembershipService) ListByUser(userID int64) ([]*model.MembershipSubscription, error) {
	return s.subscriptionRepo.ListByUser(userID)
}

// Purchase 购买会员：算价（活动优惠、首购优惠）→ 创建订阅 + 待支付记录
func (s *MembershipService) Purchase(userID int64, req *dto.PurchaseRequest) (*dto.PurchaseResponse, error) {
	if !validMethods[req.PaymentMethod] {
		return nil, ErrInvalidPayMethod
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	offer, err := s.offerRepo.GetByID(req.OfferID)
	if err != nil {
		return nil, ErrOfferNotFound
	}
	if !offer.IsActive {
		return nil, ErrOfferInactive
	}

	now := time.Now()
	price := offer.Price

	var promoID *int64
	if req.PromoID != nil {
		promo, err := s.offerRepo.GetPromoByID(*req.PromoID)
		if err != nil {
			return nil, ErrPromoNotApplicable
		}
		if !promo.ValidAt(now) {
			return nil, ErrPromoNotApplicable
		}
		price -= offer.Price * promo.DiscountPercent / 100
		promoID = &promo.ID
	}

	var discountID *int64
	if !user.FirstTimeDiscountUsed {
		discount, err := s.offerRepo.GetActiveFirstTimeDiscount()
		if err == nil {
			price -= offer.Price * discount.DiscountPercent / 100
			discountID = &discount.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if price < 0 {
		price = 0
	}

	code, err := s.paymentService.GeneratePaymentCode()
	if err != nil {
		return nil, err
	}

	startDate := truncateToDate(now)
	endDate := offer.PeriodEnd(startDate)

	sub := &model.MembershipSubscription{
		UserID:              userID,
		OfferID:             offer.ID,
		PromoID:             promoID,
		FirstTimeDiscountID: discountID,
		PricePaid:           price,
		StartDate:           startDate,
		EndDate:             endDate,
		Status:              model.SubscriptionStatusActive,
		IsRecurring:         offer.BillingType == model.BillingTypeRecurring,
	}
	payment := &model.Payment{
		UserID:              userID,
		OfferID:             &offer.ID,
		PromoID:             promoID,
		FirstTimeDiscountID: discountID,
		PaymentCode:         &code,
		PaymentMethod:       req.PaymentMethod,
		Amount:              price,
		Status:              model.PaymentStatusPending,
	}

	if err := s.subscriptionRepo.CreateWithPayment(sub, payment, discountID != nil); err != nil {
		return nil, err
	}

	return &dto.PurchaseResponse{
		SubscriptionID: sub.ID,
		PaymentID:      payment.ID,
		PaymentCode:    code,
		PricePaid:      price,
		StartDate:      sub.StartDate.Format("2006-01-02"),
		EndDate:        sub.EndDate.Format("2006-01-02"),
	}, nil
}
