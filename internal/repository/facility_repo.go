package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/gym_go_server/internal/model"
)

type FacilityRepository struct {
	db *gorm.DB
}

func NewFacilityRepository(db *gorm.DB) *FacilityRepository {
	return &FacilityRepository{db: db}
}

// GetOrCreateSettings 单行配置表：取第一条，不存在则用缺省值创建
func (r *FacilityRepository) GetOrCreateSettings(defaults *model.FacilitySetting) (*model.FacilitySetting, error) {
	var setting model.FacilitySetting
	err := r.db.Where("1 = 1").Attrs(
		model.FacilitySetting{
			NumberOfCourts:            defaults.NumberOfCourts,
			MinimumReservationMinutes: defaults.MinimumReservationMinutes,
			AdvanceBookingDays:        defaults.AdvanceBookingDays,
		},
	).FirstOrCreate(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// UpdateSettings 合并更新到已有的单行记录，永远不会产生第二条
func (r *FacilityRepository) UpdateSettings(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.FacilitySetting{}).Where("id = ?", id).Updates(fields).Error
}

func (r *FacilityRepository) GetScheduleByDay(dayOfWeek int) (*model.FacilitySchedule, error) {
	var schedule model.FacilitySchedule
	err := r.db.Where("day_of_week = ?", dayOfWeek).First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *FacilityRepository) ListSchedules() ([]*model.FacilitySchedule, error) {
	var schedules []*model.FacilitySchedule
	err := r.db.Order("day_of_week ASC").Find(&schedules).Error
	return schedules, err
}

// UpsertSchedule 按 day_of_week 覆盖写入
func (r *FacilityRepository) UpsertSchedule(schedule *model.FacilitySchedule) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day_of_week"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_open", "open_time", "close_time", "updated_at"}),
	}).Create(schedule).Error
}
