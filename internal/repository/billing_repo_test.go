package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/gym_go_server/internal/model"
	"github.com/qs3c/gym_go_server/internal/testutil"
)

func billingFixture(t *testing.T, db *gorm.DB) (*model.User, *model.MembershipSubscription) {
	t.Helper()
	user := testutil.TestUser(t, db)
	offer := testutil.TestOffer(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, offer.ID)
	return user, sub
}

func newStatement(user *model.User, sub *model.MembershipSubscription) (*model.BillingStatement, *model.Payment) {
	now := time.Now()
	code := "BILL0001"
	payment := &model.Payment{
		UserID:         user.ID,
		SubscriptionID: &sub.ID,
		PaymentCode:    &code,
		PaymentMethod:  model.PaymentMethodCash,
		Amount:         1000,
		Status:         model.PaymentStatusPending,
	}
	stmt := &model.BillingStatement{
		UserID:         user.ID,
		SubscriptionID: sub.ID,
		StatementDate:  now,
		PeriodStart:    sub.EndDate,
		PeriodEnd:      sub.EndDate.AddDate(0, 1, 0),
		Amount:         1000,
		Status:         model.StatementStatusPending,
		DueDate:        sub.EndDate,
	}
	return stmt, payment
}

func TestBillingRepository_CreateWithPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewBillingRepository(db)
	user, sub := billingFixture(t, db)
	stmt, payment := newStatement(user, sub)

	err := repo.CreateWithPayment(stmt, payment)
	require.NoError(t, err)
	assert.NotZero(t, stmt.ID)
	assert.NotZero(t, payment.ID)
	require.NotNil(t, stmt.PaymentID)
	assert.Equal(t, payment.ID, *stmt.PaymentID)
}

func TestBillingRepository_CreateWithPayment_RejectsDuplicatePending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewBillingRepository(db)
	user, sub := billingFixture(t, db)

	stmt1, payment1 := newStatement(user, sub)
	require.NoError(t, repo.CreateWithPayment(stmt1, payment1))

	// 同一订阅已有 PENDING 账单，事务内守卫拒绝第二份
	stmt2, payment2 := newStatement(user, sub)
	code2 := "BILL0002"
	payment2.PaymentCode = &code2
	err := repo.CreateWithPayment(stmt2, payment2)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// 支付记录也不应残留
	var count int64
	require.NoError(t, db.Model(&model.Payment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBillingRepository_HasPendingForSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewBillingRepository(db)
	user, sub := billingFixture(t, db)

	exists, err := repo.HasPendingForSubscription(sub.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	stmt, payment := newStatement(user, sub)
	require.NoError(t, repo.CreateWithPayment(stmt, payment))

	exists, err = repo.HasPendingForSubscription(sub.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestBillingRepository_MarkPaidByPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewBillingRepository(db)
	user, sub := billingFixture(t, db)

	stmt, payment := newStatement(user, sub)
	require.NoError(t, repo.CreateWithPayment(stmt, payment))

	err := repo.MarkPaidByPayment(payment.ID)
	require.NoError(t, err)

	found, err := repo.GetByID(stmt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatementStatusPaid, found.Status)

	// 账单已结清后该订阅可以再次生成账单
	exists, err := repo.HasPendingForSubscription(sub.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
