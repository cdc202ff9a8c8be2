package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/gym_go_server/internal/model"
	"github.com/qs3c/gym_go_server/internal/testutil"
)

func TestSubscriptionRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	offer := testutil.TestOffer(t, db)

	now := time.Now()
	sub := &model.MembershipSubscription{
		UserID:      user.ID,
		OfferID:     offer.ID,
		PricePaid:   1000,
		StartDate:   now,
		EndDate:     now.AddDate(0, 1, 0),
		Status:      model.SubscriptionStatusActive,
		IsRecurring: true,
	}

	err := repo.Create(sub)
	require.NoError(t, err)
	assert.NotZero(t, sub.ID)
}

func TestSubscriptionRepository_Create_RejectsInvalidRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	offer := testutil.TestOffer(t, db)

	now := time.Now()
	sub := &model.MembershipSubscription{
		UserID:    user.ID,
		OfferID:   offer.ID,
		StartDate: now.AddDate(0, 1, 0),
		EndDate:   now,
		Status:    model.SubscriptionStatusActive,
	}

	err := repo.Create(sub)
	assert.ErrorIs(t, err, model.ErrInvalidSubscriptionRange)
}

func TestSubscriptionRepository_Create_RejectsAlreadyExpiredActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	offer := testutil.TestOffer(t, db)

	now := time.Now()
	sub := &model.MembershipSubscription{
		UserID:    user.ID,
		OfferID:   offer.ID,
		StartDate: now.AddDate(0, -2, 0),
		EndDate:   now.AddDate(0, -1, 0),
		Status:    model.SubscriptionStatusActive,
	}

	err := repo.Create(sub)
	assert.ErrorIs(t, err, model.ErrSubscriptionAlreadyOver)
}

func TestSubscriptionRepository_Update_CoercesExpiredActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	offer := testutil.TestOffer(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, offer.ID)

	// 已落库的记录把 end_date 改到过去，保存时自动转 EXPIRED
	sub.EndDate = time.Now().AddDate(0, 0, -1)
	err := repo.Update(sub)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusExpired, sub.Status)
}

func TestSubscriptionRepository_ListRenewalCandidates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	offer := testutil.TestOffer(t, db)

	now := time.Now()

	// 3天后到期的自动续费订阅：命中
	hit := testutil.TestSubscription(t, db, user.ID, offer.ID,
		testutil.WithDates(now.AddDate(0, -1, 0), now.AddDate(0, 0, 3)),
	)
	// 30天后到期：窗口外
	testutil.TestSubscription(t, db, user.ID, offer.ID,
		testutil.WithDates(now.AddDate(0, -1, 0), now.AddDate(0, 0, 30)),
	)
	// 3天后到期但不自动续费：跳过
	testutil.TestSubscription(t, db, user.ID, offer.ID,
		testutil.WithDates(now.AddDate(0, -1, 0), now.AddDate(0, 0, 3).Add(time.Hour)),
		testutil.WithRecurring(false),
	)
	// 已取消：跳过
	testutil.TestSubscription(t, db, user.ID, offer.ID,
		testutil.WithDates(now.AddDate(0, -1, 0), now.AddDate(0, 0, 3).Add(2*time.Hour)),
		testutil.WithSubscriptionStatus(model.SubscriptionStatusCancelled),
	)

	candidates, err := repo.ListRenewalCandidates(now, now.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, hit.ID, candidates[0].ID)
}

func TestSubscriptionRepository_ExpireOverdue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	offer := testutil.TestOffer(t, db)

	now := time.Now()

	// 已过期的 ACTIVE 订阅（直接绕过 hook 写入过期状态）
	overdue := testutil.TestSubscription(t, db, user.ID, offer.ID)
	require.NoError(t, db.Model(overdue).UpdateColumn("end_date", now.AddDate(0, 0, -1)).Error)

	// 未到期的不受影响
	active := testutil.TestSubscription(t, db, user.ID, offer.ID)

	n, err := repo.ExpireOverdue(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := repo.GetByID(overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusExpired, found.Status)

	found, err = repo.GetByID(active.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusActive, found.Status)

	// 幂等：第二次扫描没有候选
	n, err = repo.ExpireOverdue(now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSubscriptionRepository_CreateWithPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	offer := testutil.TestOffer(t, db)

	now := time.Now()
	sub := &model.MembershipSubscription{
		UserID:      user.ID,
		OfferID:     offer.ID,
		PricePaid:   1000,
		StartDate:   now,
		EndDate:     now.AddDate(0, 1, 0),
		Status:      model.SubscriptionStatusActive,
		IsRecurring: true,
	}
	code := "ABCD1234"
	payment := &model.Payment{
		UserID:        user.ID,
		OfferID:       &offer.ID,
		PaymentCode:   &code,
		PaymentMethod: model.PaymentMethodCash,
		Amount:        1000,
		Status:        model.PaymentStatusPending,
	}

	err := repo.CreateWithPayment(sub, payment, false)
	require.NoError(t, err)
	assert.NotZero(t, sub.ID)
	assert.NotZero(t, payment.ID)
	require.NotNil(t, payment.SubscriptionID)
	assert.Equal(t, sub.ID, *payment.SubscriptionID)

	// 没有核销首购优惠
	var found model.User
	require.NoError(t, db.First(&found, user.ID).Error)
	assert.False(t, found.FirstTimeDiscountUsed)
}

func TestSubscriptionRepository_CreateWithPayment_ConsumesFirstTimeDiscount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	offer := testutil.TestOffer(t, db)

	now := time.Now()
	sub := &model.MembershipSubscription{
		UserID:    user.ID,
		OfferID:   offer.ID,
		PricePaid: 900,
		StartDate: now,
		EndDate:   now.AddDate(0, 1, 0),
		Status:    model.SubscriptionStatusActive,
	}
	code := "FTDC0001"
	payment := &model.Payment{
		UserID:        user.ID,
		OfferID:       &offer.ID,
		PaymentCode:   &code,
		PaymentMethod: model.PaymentMethodCash,
		Amount:        900,
		Status:        model.PaymentStatusPending,
	}

	require.NoError(t, repo.CreateWithPayment(sub, payment, true))

	var found model.User
	require.NoError(t, db.First(&found, user.ID).Error)
	assert.True(t, found.FirstTimeDiscountUsed)
}

func TestSubscriptionRepository_CreateWithPayment_RollbackKeepsDiscount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	offer := testutil.TestOffer(t, db)

	now := time.Now()
	// 开始晚于结束，落库被 hook 拒绝，整个事务回滚
	sub := &model.MembershipSubscription{
		UserID:    user.ID,
		OfferID:   offer.ID,
		StartDate: now.AddDate(0, 1, 0),
		EndDate:   now,
		Status:    model.SubscriptionStatusActive,
	}
	code := "FTDC0002"
	payment := &model.Payment{
		UserID:        user.ID,
		OfferID:       &offer.ID,
		PaymentCode:   &code,
		PaymentMethod: model.PaymentMethodCash,
		Amount:        900,
		Status:        model.PaymentStatusPending,
	}

	err := repo.CreateWithPayment(sub, payment, true)
	require.Error(t, err)

	// 购买失败时首购优惠不能被核销
	var found model.User
	require.NoError(t, db.First(&found, user.ID).Error)
	assert.False(t, found.FirstTimeDiscountUsed)
}

func TestSubscriptionRepository_GetActiveByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	offer := testutil.TestOffer(t, db)

	testutil.TestSubscription(t, db, user.ID, offer.ID,
		testutil.WithSubscriptionStatus(model.SubscriptionStatusCancelled),
	)
	active := testutil.TestSubscription(t, db, user.ID, offer.ID)

	found, err := repo.GetActiveByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, found.ID)
}
