package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/qs3c/gym_go_server/config"
	"github.com/qs3c/gym_go_server/internal/model"
	"github.com/qs3c/gym_go_server/internal/model/dto"
	"github.com/qs3c/gym_go_server/internal/pkg/gateway"
	"github.com/qs3c/gym_go_server/internal/pkg/queue"
	"github.com/qs3c/gym_go_server/internal/repository"
)

var (
	ErrPaymentNotFound     = errors.New("支付记录不存在")
	ErrPaymentNotPending   = errors.New("支付记录不是待支付状态")
	ErrPaymentNotOwner     = errors.New("无权操作此支付记录")
	ErrInvalidOnlineMethod = errors.New("无效的在线支付方式")
	ErrGatewayUnavailable  = errors.New("支付网关暂时不可用")
)

const (
	paymentCodeLength  = 8
	paymentCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var onlineMethods = map[string]bool{
	model.PaymentMethodCard:       true,
	model.PaymentMethodMaya:       true,
	model.PaymentMethodMayaWallet: true,
}

type PaymentService struct {
	paymentRepo   *repository.PaymentRepository
	billingRepo   *repository.BillingRepository
	gatewayClient *gateway.Client
	notifyQueue   *queue.Queue
	cfg           *config.Config
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	billingRepo *repository.BillingRepository,
	gatewayClient *gateway.Client,
	notifyQueue *queue.Queue,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		paymentRepo:   paymentRepo,
		billingRepo:   billingRepo,
		gatewayClient: gatewayClient,
		notifyQueue:   notifyQueue,
		cfg:           cfg,
	}
}

// GeneratePaymentCode 生成 8 位大写字母数字付款编号。
// 碰撞概率很低，但循环必须保证唯一，而不是只试一次。
func (s *PaymentService) GeneratePaymentCode() (string, error) {
	for {
		code, err := randomCode(paymentCodeLength)
		if err != nil {
			return "", err
		}
		exists, err := s.paymentRepo.ExistsByCode(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

func randomCode(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random code: %w", err)
	}
	for i, b := range bytes {
		bytes[i] = paymentCodeCharset[int(b)%len(paymentCodeCharset)]
	}
	return string(bytes), nil
}

// CancelStalePending 取消创建超过 stale_payment_days 天仍未支付的记录，
// 同时清空付款编号释放编号空间。每日定时执行，重复执行无副作用。
func (s *PaymentService) CancelStalePending() (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.Billing.StalePaymentDays)
	return s.paymentRepo.CancelStale(cutoff)
}

// CountStalePending dry-run 用
func (s *PaymentService) CountStalePending() (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.Billing.StalePaymentDays)
	return s.paymentRepo.CountStale(cutoff)
}

// ConfirmCash 前台现金收款：PENDING → PAID，并同步关联账单
func (s *PaymentService) ConfirmCash(paymentID int64) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Status != model.PaymentStatusPending {
		return nil, ErrPaymentNotPending
	}

	now := time.Now()
	err = s.paymentRepo.UpdateFields(paymentID, map[string]interface{}{
		"status":       model.PaymentStatusPaid,
		"payment_date": now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.billingRepo.MarkPaidByPayment(paymentID); err != nil {
		log.Printf("Failed to mark statement paid for payment %d: %v", paymentID, err)
	}

	s.notifyReceipt(payment.UserID, paymentID)
	return s.paymentRepo.GetByID(paymentID)
}

// Checkout 发起在线支付，返回网关跳转地址
func (s *PaymentService) Checkout(ctx context.Context, userID int64, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if !onlineMethods[req.Method] {
		return nil, ErrInvalidOnlineMethod
	}
	if s.gatewayClient == nil {
		return nil, ErrGatewayUnavailable
	}

	payment, err := s.paymentRepo.GetByID(req.PaymentID)
	if err != nil {
		return nil, ErrPaymentNotFound
	}
	if payment.UserID != userID {
		return nil, ErrPaymentNotOwner
	}
	if payment.Status != model.PaymentStatusPending {
		return nil, ErrPaymentNotPending
	}

	description := "会员费"
	if payment.PaymentCode != nil {
		description = "会员费 " + *payment.PaymentCode
	}

	result, err := s.gatewayClient.Checkout(ctx, payment.Amount, description)
	if err != nil {
		log.Printf("Gateway checkout failed for payment %d: %v", payment.ID, err)
		return nil, ErrGatewayUnavailable
	}

	err = s.paymentRepo.UpdateFields(payment.ID, map[string]interface{}{
		"payment_method":    req.Method,
		"gateway_reference": result.Reference,
	})
	if err != nil {
		return nil, err
	}

	return &dto.CheckoutResponse{
		CheckoutURL: result.CheckoutURL,
		Reference:   result.Reference,
	}, nil
}

// VerifyOnline 网关回调/查询：按引用号落定支付结果
func (s *PaymentService) VerifyOnline(ctx context.Context, reference string) (*model.Payment, error) {
	if s.gatewayClient == nil {
		return nil, ErrGatewayUnavailable
	}

	payment, err := s.paymentRepo.GetByGatewayReference(reference)
	if err != nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Status != model.PaymentStatusPending {
		return payment, nil // 已落定，重复回调直接返回
	}

	status, err := s.gatewayClient.Verify(ctx, reference)
	if err != nil {
		return nil, ErrGatewayUnavailable
	}

	switch status {
	case gateway.StatusPaid:
		now := time.Now()
		err = s.paymentRepo.UpdateFields(payment.ID, map[string]interface{}{
			"status":       model.PaymentStatusPaid,
			"payment_date": now,
		})
		if err != nil {
			return nil, err
		}
		if err := s.billingRepo.MarkPaidByPayment(payment.ID); err != nil {
			log.Printf("Failed to mark statement paid for payment %d: %v", payment.ID, err)
		}
		s.notifyReceipt(payment.UserID, payment.ID)
	case gateway.StatusFailed:
		err = s.paymentRepo.UpdateFields(payment.ID, map[string]interface{}{
			"status": model.PaymentStatusFailed,
		})
		if err != nil {
			return nil, err
		}
	}

	return s.paymentRepo.GetByID(payment.ID)
}

func (s *PaymentService) ListByUser(userID int64, page, pageSize int) ([]*model.Payment, int64, error) {
	return s.paymentRepo.ListByUser(userID, page, pageSize)
}

func (s *PaymentService) notifyReceipt(userID, paymentID int64) {
	if s.notifyQueue == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.notifyQueue.Push(ctx, &queue.NotificationMessage{
		Type:      queue.TypePaymentReceipt,
		UserID:    userID,
		PaymentID: paymentID,
	})
	if err != nil {
		log.Printf("Failed to enqueue receipt notification for payment %d: %v", paymentID, err)
	}
}
