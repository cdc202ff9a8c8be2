package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/gym_go_server/internal/api/middleware"
	"github.com/qs3c/gym_go_server/internal/model/dto"
	"github.com/qs3c/gym_go_server/internal/pkg/response"
	"github.com/qs3c/gym_go_server/internal/service"
)

type MembershipHandler struct {
	membershipService *service.MembershipService
}

func NewMembershipHandler(membershipService *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
	}
}

// ListOffers 会员套餐列表
// GET /api/v1/offers
func (h *MembershipHandler) ListOffers(c *gin.Context) {
	offers, err := h.membershipService.ListOffers()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, offers)
}

// Purchase 购买会员
// POST /api/v1/memberships
func (h *MembershipHandler) Purchase(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.membershipService.Purchase(userID, &req)
	if err != nil {
		switch err {
		case service.ErrOfferNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrOfferInactive, service.ErrPromoNotApplicable, service.ErrInvalidPayMethod:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "购买成功，请完成支付", resp)
}

// List 我的会员记录
// GET /api/v1/memberships
func (h *MembershipHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	subs, err := h.membershipService.ListByUser(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, subs)
}
