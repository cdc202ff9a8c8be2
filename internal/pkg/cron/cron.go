package cron

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/qs3c/gym_go_server/internal/repository"
	"github.com/qs3c/gym_go_server/internal/service"
)

type Service struct {
	billingService  *service.BillingService
	paymentService  *service.PaymentService
	reservationRepo *repository.ReservationRepository
	stopChan        chan struct{}
}

func NewService(
	billingService *service.BillingService,
	paymentService *service.PaymentService,
	reservationRepo *repository.ReservationRepository,
) *Service {
	return &Service{
		billingService:  billingService,
		paymentService:  paymentService,
		reservationRepo: reservationRepo,
		stopChan:        make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailyBilling()
	go s.runReservationSweep()
	log.Println("Cron service started (daily billing + reservation sweep)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runDailyBilling 每日计费任务：先过期再生成账单，再清理过期未付
func (s *Service) runDailyBilling() {
	now := time.Now()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.runBillingCycle()
			timer.Reset(24 * time.Hour)
		}
	}
}

// runBillingCycle 执行一轮完整的计费周期
func (s *Service) runBillingCycle() {
	log.Println("Starting daily billing cycle...")

	expired, err := s.billingService.ExpireSubscriptions()
	if err != nil {
		log.Printf("Billing cycle: failed to expire subscriptions: %v", err)
	} else if expired > 0 {
		log.Printf("Billing cycle: %d subscriptions expired", expired)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	created, err := s.billingService.GenerateStatements(ctx)
	if err != nil {
		if errors.Is(err, service.ErrBillingAlreadyRunning) {
			log.Println("Billing cycle: another instance is running, skipped")
		} else {
			log.Printf("Billing cycle: failed to generate statements: %v", err)
		}
	} else if created > 0 {
		log.Printf("Billing cycle: %d statements created", created)
	}

	cancelled, err := s.paymentService.CancelStalePending()
	if err != nil {
		log.Printf("Billing cycle: failed to cancel stale payments: %v", err)
	} else if cancelled > 0 {
		log.Printf("Billing cycle: %d stale payments cancelled", cancelled)
	}

	log.Println("Daily billing cycle completed")
}

// runReservationSweep 每小时把已结束的预约标记为 COMPLETED
func (s *Service) runReservationSweep() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			completed, err := s.reservationRepo.CompletePast(time.Now())
			if err != nil {
				log.Printf("Reservation sweep failed: %v", err)
			} else if completed > 0 {
				log.Printf("Reservation sweep: %d reservations completed", completed)
			}
		}
	}
}

// RunNow 立即执行一轮计费周期（用于测试或手动触发）
func (s *Service) RunNow() {
	log.Println("Manual billing cycle triggered...")
	s.runBillingCycle()
}
