package worker

import (
	"context"
	"fmt"
	"log"

	"github.com/qs3c/gym_go_server/config"
	"github.com/qs3c/gym_go_server/internal/model"
	"github.com/qs3c/gym_go_server/internal/pkg/email"
	"github.com/qs3c/gym_go_server/internal/pkg/queue"
	"github.com/qs3c/gym_go_server/internal/repository"
)

// Notifier 消费通知队列并发送邮件。
// 至少一次投递：发送失败只记日志，不回投队列。
type Notifier struct {
	userRepo        *repository.UserRepository
	reservationRepo *repository.ReservationRepository
	billingRepo     *repository.BillingRepository
	paymentRepo     *repository.PaymentRepository
	emailService    *email.Service
	cfg             *config.Config
}

func NewNotifier(
	userRepo *repository.UserRepository,
	reservationRepo *repository.ReservationRepository,
	billingRepo *repository.BillingRepository,
	paymentRepo *repository.PaymentRepository,
	emailService *email.Service,
	cfg *config.Config,
) *Notifier {
	return &Notifier{
		userRepo:        userRepo,
		reservationRepo: reservationRepo,
		billingRepo:     billingRepo,
		paymentRepo:     paymentRepo,
		emailService:    emailService,
		cfg:             cfg,
	}
}

// Handle 处理一条通知消息
func (n *Notifier) Handle(ctx context.Context, msg *queue.NotificationMessage) error {
	user, err := n.userRepo.GetByID(msg.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user %d: %w", msg.UserID, err)
	}
	if user.Email == nil {
		log.Printf("Notification %s skipped: user %d has no email", msg.Type, msg.UserID)
		return nil
	}

	switch msg.Type {
	case queue.TypeReservationConfirmed:
		return n.sendReservationConfirmed(user, msg.ReservationID)
	case queue.TypeBillingStatement:
		return n.sendRenewalNotice(user, msg.StatementID, msg.PaymentID)
	case queue.TypePaymentReceipt:
		return n.sendPaymentReceipt(user, msg.PaymentID)
	default:
		log.Printf("Unknown notification type: %s", msg.Type)
		return nil
	}
}

func (n *Notifier) sendReservationConfirmed(user *model.User, reservationID int64) error {
	reservation, err := n.reservationRepo.GetByID(reservationID)
	if err != nil {
		return fmt.Errorf("failed to get reservation %d: %w", reservationID, err)
	}
	return n.emailService.SendReservationConfirmed(
		*user.Email, user.Username,
		reservation.CourtNumber, reservation.StartTime, reservation.EndTime,
	)
}

func (n *Notifier) sendRenewalNotice(user *model.User, statementID, paymentID int64) error {
	stmt, err := n.billingRepo.GetByID(statementID)
	if err != nil {
		return fmt.Errorf("failed to get statement %d: %w", statementID, err)
	}

	code := ""
	if payment, err := n.paymentRepo.GetByID(paymentID); err == nil && payment.PaymentCode != nil {
		code = *payment.PaymentCode
	}

	return n.emailService.SendRenewalNotice(*user.Email, user.Username, stmt.Amount, stmt.DueDate, code)
}

func (n *Notifier) sendPaymentReceipt(user *model.User, paymentID int64) error {
	payment, err := n.paymentRepo.GetByID(paymentID)
	if err != nil {
		return fmt.Errorf("failed to get payment %d: %w", paymentID, err)
	}

	code := ""
	if payment.PaymentCode != nil {
		code = *payment.PaymentCode
	}
	paidAt := payment.UpdatedAt
	if payment.PaymentDate != nil {
		paidAt = *payment.PaymentDate
	}

	return n.emailService.SendPaymentReceipt(*user.Email, user.Username, code, payment.Amount, paidAt)
}
