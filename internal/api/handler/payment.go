package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/gym_go_server/internal/api/middleware"
	"github.com/qs3c/gym_go_server/internal/model/dto"
	"github.com/qs3c/gym_go_server/internal/pkg/response"
	"github.com/qs3c/gym_go_server/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// List 我的支付记录
// GET /api/v1/payments
func (h *PaymentHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.paymentService.ListByUser(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// ConfirmCash 前台确认现金收款（管理员）
// POST /api/v1/admin/payments/:id/confirm
func (h *PaymentHandler) ConfirmCash(c *gin.Context) {
	paymentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的支付ID")
		return
	}

	payment, err := h.paymentService.ConfirmCash(paymentID)
	if err != nil {
		switch err {
		case service.ErrPaymentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrPaymentNotPending:
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "收款成功", payment)
}

// Checkout 发起在线支付
// POST /api/v1/payments/checkout
func (h *PaymentHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.paymentService.Checkout(c.Request.Context(), userID, &req)
	if err != nil {
		switch err {
		case service.ErrPaymentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrPaymentNotOwner:
			response.PermissionError(c, err.Error())
		case service.ErrPaymentNotPending, service.ErrInvalidOnlineMethod:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, err.Error())
		}
		return
	}

	response.Success(c, resp)
}

// VerifyCallback 网关支付结果回调
// GET /api/v1/payments/verify
func (h *PaymentHandler) VerifyCallback(c *gin.Context) {
	var req dto.VerifyCallbackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	payment, err := h.paymentService.VerifyOnline(c.Request.Context(), req.Reference)
	if err != nil {
		switch err {
		case service.ErrPaymentNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, payment)
}
