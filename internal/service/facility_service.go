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
	ErrFacilityClosed     = errors.New("当天场馆不营业")
	ErrOutsideOpenHours   = errors.New("预约时段超出营业时间")
	ErrInvalidScheduleDay = errors.New("无效的星期")
	ErrScheduleTimeNeeded = errors.New("营业日必须同时设置开始和结束时间")
	ErrInvalidMinDuration = errors.New("最短预约时长必须是 30/60/90/120 之一")
)

// 最短预约时长的可选值（分钟）
var allowedMinDurations = []int{30, 60, 90, 120}

const wallClockLayout = "15:04"

type FacilityService struct {
	facilityRepo *repository.FacilityRepository
	cfg          *config.Config
}

func NewFacilityService(facilityRepo *repository.FacilityRepository, cfg *config.Config) *FacilityService {
	return &FacilityService{
		facilityRepo: facilityRepo,
		cfg:          cfg,
	}
}

// Settings 读取单行配置，首次访问用配置文件的缺省值创建。
// 每次操作都重新读库，不做进程内缓存。
func (s *FacilityService) Settings() (*model.FacilitySetting, error) {
	return s.facilityRepo.GetOrCreateSettings(&model.FacilitySetting{
		NumberOfCourts:            s.cfg.Facility.NumberOfCourts,
		MinimumReservationMinutes: s.cfg.Facility.MinimumReservationMinutes,
		AdvanceBookingDays:        s.cfg.Facility.AdvanceBookingDays,
	})
}

// UpdateSettings 合并更新单行配置
func (s *FacilityService) UpdateSettings(req *dto.UpdateSettingsRequest) (*model.FacilitySetting, error) {
	setting, err := s.Settings()
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.NumberOfCourts != nil && *req.NumberOfCourts >= 1 {
		fields["number_of_courts"] = *req.NumberOfCourts
	}
	if req.MinimumReservationMinutes != nil {
		valid := false
		for _, d := range allowedMinDurations {
			if *req.MinimumReservationMinutes == d {
				valid = true
				break
			}
		}
		if !valid {
			return nil, ErrInvalidMinDuration
		}
		fields["minimum_reservation_minutes"] = *req.MinimumReservationMinutes
	}
	if req.AdvanceBookingDays != nil && *req.AdvanceBookingDays >= 1 {
		fields["advance_booking_days"] = *req.AdvanceBookingDays
	}

	if len(fields) > 0 {
		if err := s.facilityRepo.UpdateSettings(setting.ID, fields); err != nil {
			return nil, err
		}
	}
	return s.Settings()
}

func (s *FacilityService) ListSchedules() ([]*model.FacilitySchedule, error) {
	return s.facilityRepo.ListSchedules()
}

// UpsertSchedule 设置某个星期的营业时间
func (s *FacilityService) UpsertSchedule(req *dto.UpsertScheduleRequest) error {
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return ErrInvalidScheduleDay
	}
	if req.IsOpen {
		if req.OpenTime == nil || req.CloseTime == nil {
			return ErrScheduleTimeNeeded
		}
		if _, err := time.Parse(wallClockLayout, *req.OpenTime); err != nil {
			return ErrScheduleTimeNeeded
		}
		if _, err := time.Parse(wallClockLayout, *req.CloseTime); err != nil {
			return ErrScheduleTimeNeeded
		}
	}

	return s.facilityRepo.UpsertSchedule(&model.FacilitySchedule{
		DayOfWeek: req.DayOfWeek,
		IsOpen:    req.IsOpen,
		OpenTime:  req.OpenTime,
		CloseTime: req.CloseTime,
	})
}

// CheckOpen 校验 [start, end) 是否完整落在当天营业时段内
func (s *FacilityService) CheckOpen(start, end time.Time) error {
	schedule, err := s.facilityRepo.GetScheduleByDay(int(start.Weekday()))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFacilityClosed
		}
		return err
	}
	if !schedule.Available() {
		return ErrFacilityClosed
	}

	openClock, err := time.Parse(wallClockLayout, *schedule.OpenTime)
	if err != nil {
		return ErrFacilityClosed
	}
	closeClock, err := time.Parse(wallClockLayout, *schedule.CloseTime)
	if err != nil {
		return ErrFacilityClosed
	}

	y, m, d := start.Date()
	openAt := time.Date(y, m, d, openClock.Hour(), openClock.Minute(), 0, 0, start.Location())
	closeAt := time.Date(y, m, d, closeClock.Hour(), closeClock.Minute(), 0, 0, start.Location())

	if start.Before(openAt) || end.After(closeAt) {
		return ErrOutsideOpenHours
	}
	return nil
}
