package model

import (
	"time"
)

// FacilitySetting 场馆全局配置（单行表，永远只有一条记录）
type FacilitySetting struct {
	ID                        int64     `gorm:"primaryKey" json:"id"`
	NumberOfCourts            int       `gorm:"not null;default:2" json:"number_of_courts"`
	MinimumReservationMinutes int       `gorm:"not null;default:60" json:"minimum_reservation_minutes"` // 30, 60, 90, 120
	AdvanceBookingDays        int       `gorm:"not null;default:7" json:"advance_booking_days"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

func (FacilitySetting) TableName() string {
	return "facility_settings"
}

// FacilitySchedule 每周营业时间，day_of_week 0-6（周日为 0）
type FacilitySchedule struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	DayOfWeek int       `gorm:"uniqueIndex;not null" json:"day_of_week"` // 0-6
	IsOpen    bool      `gorm:"default:false" json:"is_open"`
	OpenTime  *string   `gorm:"size:5" json:"open_time,omitempty"`  // "08:00"
	CloseTime *string   `gorm:"size:5" json:"close_time,omitempty"` // "22:00"
	UpdatedAt time.Time `json:"updated_at"`
}

func (FacilitySchedule) TableName() string {
	return "facility_schedules"
}

// Available 只有 is_open 且开闭店时间都已设置才算营业
func (s *FacilitySchedule) Available() bool {
	return s.IsOpen && s.OpenTime != nil && s.CloseTime != nil
}
