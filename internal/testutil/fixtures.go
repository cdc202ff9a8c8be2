package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/gym_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	seq := time.Now().UnixNano()
	email := fmt.Sprintf("test_%d@example.com", seq)
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", seq%1000000),
		Email:        &email,
		PasswordHash: &passwordHash,
		FullName:     "测试用户",
		Role:         model.RoleMember,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithFirstTimeDiscountUsed 标记首次优惠已用
func WithFirstTimeDiscountUsed() func(*model.User) {
	return func(u *model.User) {
		u.FirstTimeDiscountUsed = true
	}
}

// TestFacilitySettings 创建场馆配置（单行表）
func TestFacilitySettings(t *testing.T, db *gorm.DB, opts ...func(*model.FacilitySetting)) *model.FacilitySetting {
	t.Helper()

	settings := &model.FacilitySetting{
		NumberOfCourts:            2,
		MinimumReservationMinutes: 60,
		AdvanceBookingDays:        7,
	}

	for _, opt := range opts {
		opt(settings)
	}

	if err := db.Create(settings).Error; err != nil {
		t.Fatalf("Failed to create test facility settings: %v", err)
	}

	return settings
}

// WithCourts 设置场地数
func WithCourts(n int) func(*model.FacilitySetting) {
	return func(s *model.FacilitySetting) {
		s.NumberOfCourts = n
	}
}

// TestOpenSchedule 创建一周七天都营业的时间表
func TestOpenSchedule(t *testing.T, db *gorm.DB, openTime, closeTime string) {
	t.Helper()

	for day := 0; day < 7; day++ {
		open := openTime
		close := closeTime
		schedule := &model.FacilitySchedule{
			DayOfWeek: day,
			IsOpen:    true,
			OpenTime:  &open,
			CloseTime: &close,
		}
		if err := db.Create(schedule).Error; err != nil {
			t.Fatalf("Failed to create test schedule for day %d: %v", day, err)
		}
	}
}

// TestReservation 创建测试预约
func TestReservation(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.CourtReservation)) *model.CourtReservation {
	t.Helper()

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	reservation := &model.CourtReservation{
		UserID:          userID,
		Category:        model.ReservationCategoryBadminton,
		CourtNumber:     1,
		StartTime:       start,
		DurationMinutes: 60,
		Status:          model.ReservationStatusConfirmed,
	}

	for _, opt := range opts {
		opt(reservation)
	}

	if err := db.Create(reservation).Error; err != nil {
		t.Fatalf("Failed to create test reservation: %v", err)
	}

	return reservation
}

// WithCourt 设置场地编号
func WithCourt(court int) func(*model.CourtReservation) {
	return func(r *model.CourtReservation) {
		r.CourtNumber = court
	}
}

// WithSlot 设置开始时间和时长
func WithSlot(start time.Time, minutes int) func(*model.CourtReservation) {
	return func(r *model.CourtReservation) {
		r.StartTime = start
		r.DurationMinutes = minutes
	}
}

// WithReservationStatus 设置预约状态
func WithReservationStatus(status string) func(*model.CourtReservation) {
	return func(r *model.CourtReservation) {
		r.Status = status
	}
}

// TestOffer 创建测试会员套餐
func TestOffer(t *testing.T, db *gorm.DB, opts ...func(*model.MembershipOffer)) *model.MembershipOffer {
	t.Helper()

	offer := &model.MembershipOffer{
		Name:          fmt.Sprintf("测试套餐 %d", time.Now().UnixNano()%10000),
		Price:         1000,
		DurationType:  model.DurationTypeMonth,
		DurationValue: 1,
		BillingType:   model.BillingTypeRecurring,
		IsActive:      true,
	}

	for _, opt := range opts {
		opt(offer)
	}

	if err := db.Create(offer).Error; err != nil {
		t.Fatalf("Failed to create test offer: %v", err)
	}

	return offer
}

// WithPrice 设置套餐价格
func WithPrice(price float64) func(*model.MembershipOffer) {
	return func(o *model.MembershipOffer) {
		o.Price = price
	}
}

// WithBillingType 设置计费方式
func WithBillingType(billingType string) func(*model.MembershipOffer) {
	return func(o *model.MembershipOffer) {
		o.BillingType = billingType
	}
}

// WithDuration 设置套餐周期
func WithDuration(durationType string, value int) func(*model.MembershipOffer) {
	return func(o *model.MembershipOffer) {
		o.DurationType = durationType
		o.DurationValue = value
	}
}

// WithOfferInactive 下架套餐
func WithOfferInactive() func(*model.MembershipOffer) {
	return func(o *model.MembershipOffer) {
		o.IsActive = false
	}
}

// TestSubscription 创建测试会员订阅
func TestSubscription(t *testing.T, db *gorm.DB, userID, offerID int64, opts ...func(*model.MembershipSubscription)) *model.MembershipSubscription {
	t.Helper()

	now := time.Now()
	sub := &model.MembershipSubscription{
		UserID:      userID,
		OfferID:     offerID,
		PricePaid:   1000,
		StartDate:   now.AddDate(0, -1, 0),
		EndDate:     now.AddDate(0, 1, 0),
		Status:      model.SubscriptionStatusActive,
		IsRecurring: true,
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithDates 设置订阅起止日期
func WithDates(start, end time.Time) func(*model.MembershipSubscription) {
	return func(s *model.MembershipSubscription) {
		s.StartDate = start
		s.EndDate = end
	}
}

// WithSubscriptionStatus 设置订阅状态
func WithSubscriptionStatus(status string) func(*model.MembershipSubscription) {
	return func(s *model.MembershipSubscription) {
		s.Status = status
	}
}

// WithRecurring 设置是否自动续费
func WithRecurring(recurring bool) func(*model.MembershipSubscription) {
	return func(s *model.MembershipSubscription) {
		s.IsRecurring = recurring
	}
}

// TestPayment 创建测试支付记录
func TestPayment(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Payment)) *model.Payment {
	t.Helper()

	code := fmt.Sprintf("T%07d", time.Now().UnixNano()%10000000)
	payment := &model.Payment{
		UserID:        userID,
		PaymentCode:   &code,
		PaymentMethod: model.PaymentMethodCash,
		Amount:        1000,
		Status:        model.PaymentStatusPending,
	}

	for _, opt := range opts {
		opt(payment)
	}

	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}

	return payment
}

// WithPaymentStatus 设置支付状态
func WithPaymentStatus(status string) func(*model.Payment) {
	return func(p *model.Payment) {
		p.Status = status
	}
}

// WithPaymentCode 设置付款编号
func WithPaymentCode(code string) func(*model.Payment) {
	return func(p *model.Payment) {
		p.PaymentCode = &code
	}
}

// WithCreatedAt 设置创建时间（测试过期清理用）
func WithCreatedAt(at time.Time) func(*model.Payment) {
	return func(p *model.Payment) {
		p.CreatedAt = at
	}
}
