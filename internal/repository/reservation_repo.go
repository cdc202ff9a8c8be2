package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/gym_go_server/internal/model"
)

var (
	// ErrNoCourtFree 容量冲突：请求的时段所有场地都已被占用
	ErrNoCourtFree = errors.New("no court free")
	// ErrMemberOverlap 会员自身冲突：同一会员在该时段已有预约（不分场地）
	ErrMemberOverlap = errors.New("member has overlapping reservation")
)

// 参与冲突检测的状态（CANCELLED、COMPLETED 不算）
var activeStatuses = []string{model.ReservationStatusPending, model.ReservationStatusConfirmed}

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) GetByID(id int64) (*model.CourtReservation, error) {
	var res model.CourtReservation
	err := r.db.Where("id = ?", id).First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepository) ListByUser(userID int64, page, pageSize int) ([]*model.CourtReservation, int64, error) {
	var items []*model.CourtReservation
	var total int64

	q := r.db.Model(&model.CourtReservation{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("start_time DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// overlapQuery 严格半开区间相交：existing.start < end AND existing.end > start。
// 首尾相接（existing.end == start）不算冲突。
func overlapQuery(tx *gorm.DB, start, end time.Time, excludeID int64) *gorm.DB {
	q := tx.Model(&model.CourtReservation{}).
		Where("status IN ?", activeStatuses).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID > 0 {
		q = q.Where("id != ?", excludeID)
	}
	return q
}

// CountOverlapping 指定场地上与 [start, end) 相交的有效预约数
func (r *ReservationRepository) CountOverlapping(courtNumber int, start, end time.Time, excludeID int64) (int64, error) {
	var count int64
	err := overlapQuery(r.db, start, end, excludeID).
		Where("court_number = ?", courtNumber).
		Count(&count).Error
	return count, err
}

// findFreeCourt 在事务内寻找可用场地。
// courtNumber > 0 表示调用方指定了场地；为 0 时按编号从小到大找第一个空闲的。
func (r *ReservationRepository) findFreeCourt(tx *gorm.DB, courtNumber, numberOfCourts int, start, end time.Time, excludeID int64) (int, error) {
	candidates := []int{courtNumber}
	if courtNumber == 0 {
		candidates = candidates[:0]
		for c := 1; c <= numberOfCourts; c++ {
			candidates = append(candidates, c)
		}
	}

	for _, c := range candidates {
		var count int64
		err := overlapQuery(tx, start, end, excludeID).
			Where("court_number = ?", c).
			Count(&count).Error
		if err != nil {
			return 0, err
		}
		if count == 0 {
			return c, nil
		}
	}
	return 0, ErrNoCourtFree
}

// checkConflict 准入规则的唯一实现：先找空闲场地，再查会员自身冲突。
// 只读检测和落库路径都走这里，规则只维护一份。
func (r *ReservationRepository) checkConflict(tx *gorm.DB, userID int64, courtNumber, numberOfCourts int, start, end time.Time, excludeID int64) (int, error) {
	court, err := r.findFreeCourt(tx, courtNumber, numberOfCourts, start, end, excludeID)
	if err != nil {
		return 0, err
	}

	var userCount int64
	err = overlapQuery(tx, start, end, excludeID).
		Where("user_id = ?", userID).
		Count(&userCount).Error
	if err != nil {
		return 0, err
	}
	if userCount > 0 {
		return 0, ErrMemberOverlap
	}
	return court, nil
}

// CheckConflict 只读的冲突检测：返回可分配的场地编号。
// 容量不足返回 ErrNoCourtFree，会员自身时段冲突返回 ErrMemberOverlap。
func (r *ReservationRepository) CheckConflict(userID int64, courtNumber, numberOfCourts int, start, end time.Time, excludeID int64) (int, error) {
	return r.checkConflict(r.db, userID, courtNumber, numberOfCourts, start, end, excludeID)
}

// ListFreeCourts 返回 [start, end) 时段所有空闲场地编号
func (r *ReservationRepository) ListFreeCourts(numberOfCourts int, start, end time.Time) ([]int, error) {
	free := make([]int, 0, numberOfCourts)
	for c := 1; c <= numberOfCourts; c++ {
		count, err := r.CountOverlapping(c, start, end, 0)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			free = append(free, c)
		}
	}
	return free, nil
}

// CreateIfFree 在一个加锁事务内完成检测 + 写入，
// 两个并发请求抢同一场地同一时段时只会有一个成功。
func (r *ReservationRepository) CreateIfFree(res *model.CourtReservation, numberOfCourts int, excludeID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 锁住可能冲突的行，避免两次 check 都看到空闲。
		// SQLite 不支持 FOR UPDATE，但它本身就是单写者，不加锁也安全。
		locked := tx
		if tx.Dialector.Name() != "sqlite" {
			locked = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var existing model.CourtReservation
		err := locked.
			Where("status IN ?", activeStatuses).
			Where("start_time < ? AND end_time > ?", res.EndTime, res.StartTime).
			Take(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		court, err := r.checkConflict(tx, res.UserID, res.CourtNumber, numberOfCourts, res.StartTime, res.EndTime, excludeID)
		if err != nil {
			return err
		}

		res.CourtNumber = court
		return tx.Create(res).Error
	})
}

// Cancel 取消预约并记录时间和原因。重复取消会刷新 cancelled_at。
func (r *ReservationRepository) Cancel(id int64, reason string, cancelledAt time.Time) error {
	return r.db.Model(&model.CourtReservation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":              model.ReservationStatusCancelled,
		"cancelled_at":        cancelledAt,
		"cancellation_reason": reason,
	}).Error
}

// CompletePast 将已过结束时间的有效预约标记为 COMPLETED
func (r *ReservationRepository) CompletePast(now time.Time) (int64, error) {
	result := r.db.Model(&model.CourtReservation{}).
		Where("status IN ?", activeStatuses).
		Where("end_time < ?", now).
		Update("status", model.ReservationStatusCompleted)
	return result.RowsAffected, result.Error
}
