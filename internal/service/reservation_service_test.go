package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/gym_go_server/config"
	"github.com/qs3c/gym_go_server/internal/model"
	"github.com/qs3c/gym_go_server/internal/model/dto"
	"github.com/qs3c/gym_go_server/internal/repository"
	"github.com/qs3c/gym_go_server/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		Facility: config.FacilityConfig{
			NumberOfCourts:            2,
			MinimumReservationMinutes: 60,
			AdvanceBookingDays:        7,
		},
		Billing: config.BillingConfig{
			RenewalLeadDays:  5,
			StalePaymentDays: 15,
		},
	}
}

func setupReservationService(t *testing.T, db *gorm.DB) *ReservationService {
	t.Helper()

	cfg := testConfig()
	facilityService := NewFacilityService(repository.NewFacilityRepository(db), cfg)
	return NewReservationService(repository.NewReservationRepository(db), facilityService, nil, cfg)
}

func tomorrowAt(t *testing.T, hour int) time.Time {
	t.Helper()
	base := time.Now().AddDate(0, 0, 1)
	return time.Date(base.Year(), base.Month(), base.Day(), hour, 0, 0, 0, time.Local)
}

func bookingRequest(start time.Time, minutes, court int) *dto.CreateReservationRequest {
	return &dto.CreateReservationRequest{
		CourtNumber:     court,
		StartTime:       start.Format(time.RFC3339),
		DurationMinutes: minutes,
	}
}

func TestReservationService_Book(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupReservationService(t, db)
	testutil.TestOpenSchedule(t, db, "08:00", "22:00")
	user := testutil.TestUser(t, db)

	start := tomorrowAt(t, 10)
	res, err := svc.Book(user.ID, bookingRequest(start, 90, 0))
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Equal(t, 1, res.CourtNumber)
	assert.Equal(t, model.ReservationStatusConfirmed, res.Status)
	assert.WithinDuration(t, start.Add(90*time.Minute), res.EndTime, time.Second)
}

func TestReservationService_Book_CapacityFull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupReservationService(t, db)
	testutil.TestOpenSchedule(t, db, "08:00", "22:00")
	u1 := testutil.TestUser(t, db)
	u2 := testutil.TestUser(t, db)
	u3 := testutil.TestUser(t, db)

	// 两个场地都被 08:00-12:00 占满
	start := tomorrowAt(t, 8)
	_, err := svc.Book(u1.ID, bookingRequest(start, 240, 0))
	require.NoError(t, err)
	_, err = svc.Book(u2.ID, bookingRequest(start, 240, 0))
	require.NoError(t, err)

	// 第三个人同时段进不来
	_, err = svc.Book(u3.ID, bookingRequest(tomorrowAt(t, 10), 60, 0))
	assert.ErrorIs(t, err, ErrNoCourtAvailable)

	// 12:00 开始首尾相接，可以预约
	res, err := svc.Book(u3.ID, bookingRequest(tomorrowAt(t, 12), 60, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, res.CourtNumber)
}

func TestReservationService_Book_MemberOverlapAcrossCourts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupReservationService(t, db)
	testutil.TestOpenSchedule(t, db, "08:00", "22:00")
	user := testutil.TestUser(t, db)

	_, err := svc.Book(user.ID, bookingRequest(tomorrowAt(t, 10), 60, 1))
	require.NoError(t, err)

	// 同一会员换场地也不允许时段重叠
	_, err = svc.Book(user.ID, bookingRequest(tomorrowAt(t, 10), 60, 2))
	assert.ErrorIs(t, err, ErrMemberTimeConflict)

	// 首尾相接不算重叠
	_, err = svc.Book(user.ID, bookingRequest(tomorrowAt(t, 11), 60, 0))
	require.NoError(t, err)
}

func TestReservationService_Book_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupReservationService(t, db)
	testutil.TestOpenSchedule(t, db, "08:00", "22:00")
	user := testutil.TestUser(t, db)

	// 无效时间格式
	_, err := svc.Book(user.ID, &dto.CreateReservationRequest{StartTime: "明天上午", DurationMinutes: 60})
	assert.ErrorIs(t, err, ErrInvalidStartTime)

	// 场地编号超出范围
	_, err = svc.Book(user.ID, bookingRequest(tomorrowAt(t, 10), 60, 3))
	assert.ErrorIs(t, err, ErrInvalidCourtNumber)

	// 低于最短时长
	_, err = svc.Book(user.ID, bookingRequest(tomorrowAt(t, 10), 30, 0))
	assert.ErrorIs(t, err, ErrDurationTooShort)

	// 非 30 分钟整数倍
	_, err = svc.Book(user.ID, bookingRequest(tomorrowAt(t, 10), 75, 0))
	assert.ErrorIs(t, err, ErrDurationNotAligned)
}

func TestReservationService_Book_BookingWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupReservationService(t, db)
	testutil.TestOpenSchedule(t, db, "08:00", "22:00")
	user := testutil.TestUser(t, db)

	// 昨天
	past := tomorrowAt(t, 10).AddDate(0, 0, -2)
	_, err := svc.Book(user.ID, bookingRequest(past, 60, 0))
	assert.ErrorIs(t, err, ErrOutsideBookingWindow)

	// 8天后（窗口是今天起7天，两端都含）
	tooFar := tomorrowAt(t, 10).AddDate(0, 0, 7)
	_, err = svc.Book(user.ID, bookingRequest(tooFar, 60, 0))
	assert.ErrorIs(t, err, ErrOutsideBookingWindow)

	// 正好第7天可以
	lastDay := tomorrowAt(t, 10).AddDate(0, 0, 6)
	_, err = svc.Book(user.ID, bookingRequest(lastDay, 60, 0))
	require.NoError(t, err)
}

func TestReservationService_Book_OpenHours(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupReservationService(t, db)
	testutil.TestOpenSchedule(t, db, "08:00", "22:00")
	user := testutil.TestUser(t, db)

	// 早于开门时间
	_, err := svc.Book(user.ID, bookingRequest(tomorrowAt(t, 7), 60, 0))
	assert.ErrorIs(t, err, ErrOutsideOpenHours)

	// 跨越关门时间
	_, err = svc.Book(user.ID, bookingRequest(tomorrowAt(t, 21), 120, 0))
	assert.ErrorIs(t, err, ErrOutsideOpenHours)

	// 正好压着关门时间
	_, err = svc.Book(user.ID, bookingRequest(tomorrowAt(t, 21), 60, 0))
	require.NoError(t, err)
}

func TestReservationService_Book_FacilityClosed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupReservationService(t, db)
	// 不设置任何营业时间
	user := testutil.TestUser(t, db)

	_, err := svc.Book(user.ID, bookingRequest(tomorrowAt(t, 10), 60, 0))
	assert.ErrorIs(t, err, ErrFacilityClosed)
}

func TestReservationService_CheckAvailability(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupReservationService(t, db)
	testutil.TestOpenSchedule(t, db, "08:00", "22:00")
	user := testutil.TestUser(t, db)

	_, err := svc.Book(user.ID, bookingRequest(tomorrowAt(t, 10), 60, 1))
	require.NoError(t, err)

	resp, err := svc.CheckAvailability(&dto.AvailabilityRequest{
		StartTime:       tomorrowAt(t, 10).Format(time.RFC3339),
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, resp.FreeCourts)
}

func TestReservationService_Cancel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupReservationService(t, db)
	testutil.TestOpenSchedule(t, db, "08:00", "22:00")
	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)

	res, err := svc.Book(user.ID, bookingRequest(tomorrowAt(t, 10), 60, 0))
	require.NoError(t, err)

	// 其他会员不能取消
	err = svc.Cancel(other.ID, res.ID, "不是我的", false)
	assert.ErrorIs(t, err, ErrReservationNotOwner)

	// 管理员可以
	err = svc.Cancel(other.ID, res.ID, "场地维修", true)
	require.NoError(t, err)

	// 取消后时段释放，别人可以再订
	_, err = svc.Book(other.ID, bookingRequest(tomorrowAt(t, 10), 60, res.CourtNumber))
	require.NoError(t, err)
}

func TestReservationService_Cancel_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupReservationService(t, db)
	user := testutil.TestUser(t, db)

	err := svc.Cancel(user.ID, 99999, "", false)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}
