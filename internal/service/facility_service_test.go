package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/gym_go_server/internal/model/dto"
	"github.com/qs3c/gym_go_server/internal/repository"
	"github.com/qs3c/gym_go_server/internal/testutil"
)

func setupFacilityService(t *testing.T, db *gorm.DB) *FacilityService {
	t.Helper()
	return NewFacilityService(repository.NewFacilityRepository(db), testConfig())
}

func intPtr(n int) *int {
	return &n
}

func strPtr(s string) *string {
	return &s
}

func TestFacilityService_Settings_CreatesFromDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupFacilityService(t, db)

	settings, err := svc.Settings()
	require.NoError(t, err)
	assert.Equal(t, 2, settings.NumberOfCourts)
	assert.Equal(t, 60, settings.MinimumReservationMinutes)
	assert.Equal(t, 7, settings.AdvanceBookingDays)

	// 第二次读取拿到同一条记录
	again, err := svc.Settings()
	require.NoError(t, err)
	assert.Equal(t, settings.ID, again.ID)
}

func TestFacilityService_UpdateSettings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupFacilityService(t, db)

	updated, err := svc.UpdateSettings(&dto.UpdateSettingsRequest{
		NumberOfCourts:            intPtr(4),
		MinimumReservationMinutes: intPtr(30),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.NumberOfCourts)
	assert.Equal(t, 30, updated.MinimumReservationMinutes)
	// 未提交的字段保持原值
	assert.Equal(t, 7, updated.AdvanceBookingDays)
}

func TestFacilityService_UpdateSettings_InvalidMinDuration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupFacilityService(t, db)

	_, err := svc.UpdateSettings(&dto.UpdateSettingsRequest{
		MinimumReservationMinutes: intPtr(45),
	})
	assert.ErrorIs(t, err, ErrInvalidMinDuration)
}

func TestFacilityService_UpsertSchedule(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupFacilityService(t, db)

	err := svc.UpsertSchedule(&dto.UpsertScheduleRequest{
		DayOfWeek: 1,
		IsOpen:    true,
		OpenTime:  strPtr("08:00"),
		CloseTime: strPtr("22:00"),
	})
	require.NoError(t, err)

	// 同一天再次设置是覆盖，不是新增
	err = svc.UpsertSchedule(&dto.UpsertScheduleRequest{
		DayOfWeek: 1,
		IsOpen:    true,
		OpenTime:  strPtr("09:00"),
		CloseTime: strPtr("21:00"),
	})
	require.NoError(t, err)

	schedules, err := svc.ListSchedules()
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "09:00", *schedules[0].OpenTime)
}

func TestFacilityService_UpsertSchedule_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupFacilityService(t, db)

	err := svc.UpsertSchedule(&dto.UpsertScheduleRequest{DayOfWeek: 7, IsOpen: false})
	assert.ErrorIs(t, err, ErrInvalidScheduleDay)

	// 营业日缺时间
	err = svc.UpsertSchedule(&dto.UpsertScheduleRequest{DayOfWeek: 1, IsOpen: true})
	assert.ErrorIs(t, err, ErrScheduleTimeNeeded)

	// 时间格式不对
	err = svc.UpsertSchedule(&dto.UpsertScheduleRequest{
		DayOfWeek: 1,
		IsOpen:    true,
		OpenTime:  strPtr("8点"),
		CloseTime: strPtr("22:00"),
	})
	assert.ErrorIs(t, err, ErrScheduleTimeNeeded)

	// 休息日可以不带时间
	err = svc.UpsertSchedule(&dto.UpsertScheduleRequest{DayOfWeek: 0, IsOpen: false})
	require.NoError(t, err)
}

func TestFacilityService_CheckOpen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupFacilityService(t, db)
	testutil.TestOpenSchedule(t, db, "08:00", "22:00")

	base := time.Now().AddDate(0, 0, 1)
	at := func(hour int) time.Time {
		return time.Date(base.Year(), base.Month(), base.Day(), hour, 0, 0, 0, time.Local)
	}

	assert.NoError(t, svc.CheckOpen(at(8), at(10)))
	assert.NoError(t, svc.CheckOpen(at(20), at(22)))
	assert.ErrorIs(t, svc.CheckOpen(at(7), at(9)), ErrOutsideOpenHours)
	assert.ErrorIs(t, svc.CheckOpen(at(21), at(23)), ErrOutsideOpenHours)
}

func TestFacilityService_CheckOpen_ClosedDay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupFacilityService(t, db)

	// 没有时间表等同于不营业
	start := time.Now().AddDate(0, 0, 1)
	err := svc.CheckOpen(start, start.Add(time.Hour))
	assert.ErrorIs(t, err, ErrFacilityClosed)

	// 标记为休息日
	require.NoError(t, svc.UpsertSchedule(&dto.UpsertScheduleRequest{
		DayOfWeek: int(start.Weekday()),
		IsOpen:    false,
	}))
	err = svc.CheckOpen(start, start.Add(time.Hour))
	assert.ErrorIs(t, err, ErrFacilityClosed)
}
