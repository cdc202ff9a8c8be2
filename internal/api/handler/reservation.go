package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/gym_go_server/internal/api/middleware"
	"github.com/qs3c/gym_go_server/internal/model/dto"
	"github.com/qs3c/gym_go_server/internal/pkg/response"
	"github.com/qs3c/gym_go_server/internal/service"
)

type ReservationHandler struct {
	reservationService *service.ReservationService
}

func NewReservationHandler(reservationService *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
	}
}

// Create 创建预约
// POST /api/v1/reservations
func (h *ReservationHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	reservation, err := h.reservationService.Book(userID, &req)
	if err != nil {
		switch err {
		case service.ErrNoCourtAvailable:
			response.CourtsFullError(c, err.Error())
		case service.ErrMemberTimeConflict:
			response.MemberOverlapError(c, err.Error())
		case service.ErrSlotUnavailable:
			response.SlotTakenError(c, err.Error())
		case service.ErrOutsideBookingWindow,
			service.ErrDurationTooShort,
			service.ErrDurationNotAligned,
			service.ErrInvalidCourtNumber,
			service.ErrInvalidStartTime,
			service.ErrFacilityClosed,
			service.ErrOutsideOpenHours:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "预约成功", reservation)
}

// List 我的预约列表
// GET /api/v1/reservations
func (h *ReservationHandler) List(c *gin.Context) {
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

	items, total, err := h.reservationService.ListByUser(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Cancel 取消预约
// POST /api/v1/reservations/:id/cancel
func (h *ReservationHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	reservationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的预约ID")
		return
	}

	var req dto.CancelReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	err = h.reservationService.Cancel(userID, reservationID, req.Reason, middleware.IsAdmin(c))
	if err != nil {
		switch err {
		case service.ErrReservationNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrReservationNotOwner:
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "已取消", nil)
}

// Availability 查询空闲场地
// GET /api/v1/reservations/availability
func (h *ReservationHandler) Availability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.reservationService.CheckAvailability(&req)
	if err != nil {
		switch err {
		case service.ErrInvalidStartTime:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}
