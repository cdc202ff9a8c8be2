package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/gym_go_server/internal/model/dto"
	"github.com/qs3c/gym_go_server/internal/pkg/response"
	"github.com/qs3c/gym_go_server/internal/service"
)

type FacilityHandler struct {
	facilityService *service.FacilityService
}

func NewFacilityHandler(facilityService *service.FacilityService) *FacilityHandler {
	return &FacilityHandler{
		facilityService: facilityService,
	}
}

// GetSettings 场馆配置
// GET /api/v1/facility/settings
func (h *FacilityHandler) GetSettings(c *gin.Context) {
	settings, err := h.facilityService.Settings()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, settings)
}

// UpdateSettings 更新场馆配置（管理员）
// PUT /api/v1/admin/facility/settings
func (h *FacilityHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	settings, err := h.facilityService.UpdateSettings(&req)
	if err != nil {
		switch err {
		case service.ErrInvalidMinDuration:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "配置已更新", settings)
}

// ListSchedules 每周营业时间
// GET /api/v1/facility/schedules
func (h *FacilityHandler) ListSchedules(c *gin.Context) {
	schedules, err := h.facilityService.ListSchedules()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, schedules)
}

// UpsertSchedule 设置某个星期的营业时间（管理员）
// PUT /api/v1/admin/facility/schedules
func (h *FacilityHandler) UpsertSchedule(c *gin.Context) {
	var req dto.UpsertScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.facilityService.UpsertSchedule(&req); err != nil {
		switch err {
		case service.ErrInvalidScheduleDay, service.ErrScheduleTimeNeeded:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "营业时间已更新", nil)
}
