package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/qs3c/gym_go_server/config"
	"github.com/qs3c/gym_go_server/internal/model"
	"github.com/qs3c/gym_go_server/internal/pkg/lock"
	"github.com/qs3c/gym_go_server/internal/pkg/queue"
	"github.com/qs3c/gym_go_server/internal/repository"
)

var ErrBillingAlreadyRunning = errors.New("计费任务正在运行")

const billingLockName = "billing_cycle"

type BillingService struct {
	subscriptionRepo *repository.SubscriptionRepository
	billingRepo      *repository.BillingRepository
	offerRepo        *repository.OfferRepository
	paymentService   *PaymentService
	locker           *lock.Locker
	notifyQueue      *queue.Queue
	cfg              *config.Config
}

func NewBillingService(
	subscriptionRepo *repository.SubscriptionRepository,
	billingRepo *repository.BillingRepository,
	offerRepo *repository.OfferRepository,
	paymentService *PaymentService,
	locker *lock.Locker,
	notifyQueue *queue.Queue,
	cfg *config.Config,
) *BillingService {
	return &BillingService{
		subscriptionRepo: subscriptionRepo,
		billingRepo:      billingRepo,
		offerRepo:        offerRepo,
		paymentService:   paymentService,
		locker:           locker,
		notifyQueue:      notifyQueue,
		cfg:              cfg,
	}
}

// GenerateStatements 扫描即将到期的自动续费订阅，为每个订阅生成
// 恰好一份账单 + 待支付记录。单个订阅失败只记日志，批次继续。
// 返回本次生成的账单数。
func (s *BillingService) GenerateStatements(ctx context.Context) (int, error) {
	// 全局互斥：同一时间只允许一个计费实例在跑
	if s.locker != nil {
		ok, err := s.locker.Acquire(ctx, billingLockName, 30*time.Minute)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrBillingAlreadyRunning
		}
		defer func() {
			if err := s.locker.Release(ctx, billingLockName); err != nil {
				log.Printf("Failed to release billing lock: %v", err)
			}
		}()
	}

	now := time.Now()
	windowEnd := now.AddDate(0, 0, s.cfg.Billing.RenewalLeadDays)

	candidates, err := s.subscriptionRepo.ListRenewalCandidates(now, windowEnd)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, sub := range candidates {
		if err := s.generateForSubscription(sub, now); err != nil {
			if errors.Is(err, errStatementExists) {
				continue
			}
			log.Printf("Billing: subscription %d failed: %v", sub.ID, err)
			continue
		}
		created++
	}

	return created, nil
}

var errStatementExists = errors.New("pending statement already exists")

func (s *BillingService) generateForSubscription(sub *model.MembershipSubscription, now time.Time) error {
	// 幂等守卫：已有未支付账单就跳过，重复扫描不会重复生成
	exists, err := s.billingRepo.HasPendingForSubscription(sub.ID)
	if err != nil {
		return err
	}
	if exists {
		return errStatementExists
	}

	offer, err := s.offerRepo.GetByID(sub.OfferID)
	if err != nil {
		return err
	}

	code, err := s.paymentService.GeneratePaymentCode()
	if err != nil {
		return err
	}

	periodStart := sub.EndDate
	periodEnd := offer.PeriodEnd(periodStart)

	payment := &model.Payment{
		UserID:         sub.UserID,
		OfferID:        &sub.OfferID,
		SubscriptionID: &sub.ID,
		PaymentCode:    &code,
		PaymentMethod:  model.PaymentMethodCash,
		Amount:         offer.Price,
		Status:         model.PaymentStatusPending,
	}
	stmt := &model.BillingStatement{
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		StatementDate:  now,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		Amount:         offer.Price,
		Status:         model.StatementStatusPending,
		DueDate:        sub.EndDate,
	}

	if err := s.billingRepo.CreateWithPayment(stmt, payment); err != nil {
		return err
	}

	// 续费通知在事务提交之后发，失败只记日志
	s.notify(&queue.NotificationMessage{
		Type:        queue.TypeBillingStatement,
		UserID:      sub.UserID,
		StatementID: stmt.ID,
		PaymentID:   payment.ID,
	})
	return nil
}

// ExpireSubscriptions 把过了 end_date 的 ACTIVE 订阅转为 EXPIRED，返回影响行数
func (s *BillingService) ExpireSubscriptions() (int64, error) {
	return s.subscriptionRepo.ExpireOverdue(time.Now())
}

// CountRenewalCandidates dry-run 用：统计当前扫描会命中多少订阅
func (s *BillingService) CountRenewalCandidates() (int, error) {
	now := time.Now()
	candidates, err := s.subscriptionRepo.ListRenewalCandidates(now, now.AddDate(0, 0, s.cfg.Billing.RenewalLeadDays))
	if err != nil {
		return 0, err
	}

	n := 0
	for _, sub := range candidates {
		exists, err := s.billingRepo.HasPendingForSubscription(sub.ID)
		if err != nil {
			return 0, err
		}
		if !exists {
			n++
		}
	}
	return n, nil
}

func (s *BillingService) notify(msg *queue.NotificationMessage) {
	if s.notifyQueue == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.notifyQueue.Push(ctx, msg); err != nil {
		log.Printf("Failed to enqueue %s notification for user %d: %v", msg.Type, msg.UserID, err)
	}
}
