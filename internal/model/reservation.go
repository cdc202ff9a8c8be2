package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	ReservationCategoryGym       = "GYM"
	ReservationCategoryBadminton = "BADMINTON_COURT"

	ReservationStatusPending   = "PENDING"
	ReservationStatusConfirmed = "CONFIRMED"
	ReservationStatusCancelled = "CANCELLED"
	ReservationStatusCompleted = "COMPLETED"
)

var ErrInvalidTimeRange = errors.New("开始时间必须早于结束时间")

type CourtReservation struct {
	ID                 int64      `gorm:"primaryKey" json:"id"`
	UserID             int64      `gorm:"not null;index" json:"user_id"`
	Category           string     `gorm:"size:30;not null;default:BADMINTON_COURT" json:"category"` // GYM, BADMINTON_COURT
	CourtNumber        int        `gorm:"not null;index" json:"court_number"`
	ReservationDate    time.Time  `gorm:"not null;index" json:"reservation_date"`
	StartTime          time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime            time.Time  `gorm:"not null" json:"end_time"`
	DurationMinutes    int        `gorm:"not null" json:"duration_minutes"`
	Status             string     `gorm:"size:20;default:CONFIRMED;index" json:"status"` // PENDING, CONFIRMED, CANCELLED, COMPLETED
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"size:255" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (CourtReservation) TableName() string {
	return "court_reservations"
}

// BeforeSave 派生字段永远由 start_time + duration 重新计算，不信任调用方传入的值。
// map 形式的批量 Updates 会带着零值模型走到这里，直接放行。
func (r *CourtReservation) BeforeSave(tx *gorm.DB) error {
	if r.StartTime.IsZero() {
		return nil
	}
	if r.DurationMinutes > 0 {
		r.EndTime = r.StartTime.Add(time.Duration(r.DurationMinutes) * time.Minute)
	}
	if !r.EndTime.After(r.StartTime) {
		return ErrInvalidTimeRange
	}
	y, m, d := r.StartTime.Date()
	r.ReservationDate = time.Date(y, m, d, 0, 0, 0, 0, r.StartTime.Location())
	return nil
}

// IsActive CANCELLED 和 COMPLETED 之外的预约才参与冲突检测
func (r *CourtReservation) IsActive() bool {
	return r.Status != ReservationStatusCancelled && r.Status != ReservationStatusCompleted
}
