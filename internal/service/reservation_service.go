package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/qs3c/gym_go_server/config"
	"github.com/qs3c/gym_go_server/internal/model"
	"github.com/qs3c/gym_go_server/internal/model/dto"
	"github.com/qs3c/gym_go_server/internal/pkg/queue"
	"github.com/qs3c/gym_go_server/internal/repository"
)

var (
	ErrNoCourtAvailable     = errors.New("该时段暂无可用场地")
	ErrMemberTimeConflict   = errors.New("您在该时段已有预约")
	ErrSlotUnavailable      = errors.New("该时段刚被预订，请重试")
	ErrOutsideBookingWindow = errors.New("只能预约今天起可预约天数内的时段")
	ErrDurationTooShort     = errors.New("低于最短预约时长")
	ErrDurationNotAligned   = errors.New("预约时长必须是 30 分钟的整数倍")
	ErrInvalidCourtNumber   = errors.New("无效的场地编号")
	ErrInvalidStartTime     = errors.New("无效的开始时间")
	ErrReservationNotFound  = errors.New("预约不存在")
	ErrReservationNotOwner  = errors.New("无权操作此预约")
)

type ReservationService struct {
	reservationRepo *repository.ReservationRepository
	facilityService *FacilityService
	notifyQueue     *queue.Queue
	cfg             *config.Config
}

func NewReservationService(
	reservationRepo *repository.ReservationRepository,
	facilityService *FacilityService,
	notifyQueue *queue.Queue,
	cfg *config.Config,
) *ReservationService {
	return &ReservationService{
		reservationRepo: reservationRepo,
		facilityService: facilityService,
		notifyQueue:     notifyQueue,
		cfg:             cfg,
	}
}

// Book 创建预约。校验顺序：时间窗口 → 时长 → 营业时间 → 冲突检测 → 落库。
// 检测和写入在一个加锁事务内完成，抢同一时段的并发请求只会成功一个。
func (s *ReservationService) Book(userID int64, req *dto.CreateReservationRequest) (*model.CourtReservation, error) {
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, ErrInvalidStartTime
	}

	settings, err := s.facilityService.Settings()
	if err != nil {
		return nil, err
	}

	if req.CourtNumber < 0 || req.CourtNumber > settings.NumberOfCourts {
		return nil, ErrInvalidCourtNumber
	}
	if req.DurationMinutes < settings.MinimumReservationMinutes {
		return nil, ErrDurationTooShort
	}
	if req.DurationMinutes%30 != 0 {
		return nil, ErrDurationNotAligned
	}

	// 预约日期必须在 [今天, 今天+advance_booking_days]，两端都含
	now := time.Now()
	today := truncateToDate(now)
	resDate := truncateToDate(start)
	lastDay := today.AddDate(0, 0, settings.AdvanceBookingDays)
	if resDate.Before(today) || resDate.After(lastDay) {
		return nil, ErrOutsideBookingWindow
	}

	end := start.Add(time.Duration(req.DurationMinutes) * time.Minute)
	if err := s.facilityService.CheckOpen(start, end); err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = model.ReservationCategoryBadminton
	}

	reservation := &model.CourtReservation{
		UserID:          userID,
		Category:        category,
		CourtNumber:     req.CourtNumber,
		StartTime:       start,
		DurationMinutes: req.DurationMinutes,
		Status:          model.ReservationStatusConfirmed,
	}
	reservation.EndTime = end

	if err := s.createWithRetry(reservation, settings.NumberOfCourts); err != nil {
		return nil, err
	}

	// 通知失败只记日志，绝不回滚已成立的预约
	s.enqueueNotification(&queue.NotificationMessage{
		Type:          queue.TypeReservationConfirmed,
		UserID:        userID,
		ReservationID: reservation.ID,
	})

	return reservation, nil
}

// createWithRetry 并发落败时透明重试一次，仍失败则提示稍后再试
func (s *ReservationService) createWithRetry(reservation *model.CourtReservation, numberOfCourts int) error {
	err := s.reservationRepo.CreateIfFree(reservation, numberOfCourts, 0)
	if err == nil {
		return nil
	}
	if mapped := mapConflictErr(err); mapped != nil {
		return mapped
	}

	// 非业务错误多半是并发抢锁失败，重跑一次 check-then-insert
	err = s.reservationRepo.CreateIfFree(reservation, numberOfCourts, 0)
	if err == nil {
		return nil
	}
	if mapped := mapConflictErr(err); mapped != nil {
		return mapped
	}
	log.Printf("reservation insert retry failed: %v", err)
	return ErrSlotUnavailable
}

func mapConflictErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNoCourtFree):
		return ErrNoCourtAvailable
	case errors.Is(err, repository.ErrMemberOverlap):
		return ErrMemberTimeConflict
	}
	return nil
}

// CheckAvailability 查询某时段的空闲场地
func (s *ReservationService) CheckAvailability(req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, ErrInvalidStartTime
	}
	end := start.Add(time.Duration(req.DurationMinutes) * time.Minute)
	if !end.After(start) {
		return nil, ErrInvalidStartTime
	}

	settings, err := s.facilityService.Settings()
	if err != nil {
		return nil, err
	}

	free, err := s.reservationRepo.ListFreeCourts(settings.NumberOfCourts, start, end)
	if err != nil {
		return nil, err
	}
	return &dto.AvailabilityResponse{FreeCourts: free}, nil
}

// Cancel 取消预约。重复取消会刷新取消时间，调用方需要先检查状态。
func (s *ReservationService) Cancel(userID int64, reservationID int64, reason string, isAdmin bool) error {
	reservation, err := s.reservationRepo.GetByID(reservationID)
	if err != nil {
		return ErrReservationNotFound
	}
	if reservation.UserID != userID && !isAdmin {
		return ErrReservationNotOwner
	}

	return s.reservationRepo.Cancel(reservationID, reason, time.Now())
}

func (s *ReservationService) ListByUser(userID int64, page, pageSize int) ([]*model.CourtReservation, int64, error) {
	return s.reservationRepo.ListByUser(userID, page, pageSize)
}

func (s *ReservationService) enqueueNotification(msg *queue.NotificationMessage) {
	if s.notifyQueue == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.notifyQueue.Push(ctx, msg); err != nil {
		log.Printf("Failed to enqueue %s notification for user %d: %v", msg.Type, msg.UserID, err)
	}
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
