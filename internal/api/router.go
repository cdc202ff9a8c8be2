package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/gym_go_server/config"
	"github.com/qs3c/gym_go_server/internal/api/handler"
	"github.com/qs3c/gym_go_server/internal/api/middleware"
)

type Router struct {
	authHandler        *handler.AuthHandler
	reservationHandler *handler.ReservationHandler
	membershipHandler  *handler.MembershipHandler
	paymentHandler     *handler.PaymentHandler
	facilityHandler    *handler.FacilityHandler
	cfg                *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	reservationHandler *handler.ReservationHandler,
	membershipHandler *handler.MembershipHandler,
	paymentHandler *handler.PaymentHandler,
	facilityHandler *handler.FacilityHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:        authHandler,
		reservationHandler: reservationHandler,
		membershipHandler:  membershipHandler,
		paymentHandler:     paymentHandler,
		facilityHandler:    facilityHandler,
		cfg:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 公开接口 - 套餐、场馆信息、网关回调
		api.GET("/offers", r.membershipHandler.ListOffers)
		api.GET("/facility/settings", r.facilityHandler.GetSettings)
		api.GET("/facility/schedules", r.facilityHandler.ListSchedules)
		api.GET("/payments/verify", r.paymentHandler.VerifyCallback)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 预约
			reservations := authenticated.Group("/reservations")
			{
				reservations.POST("", r.reservationHandler.Create)
				reservations.GET("", r.reservationHandler.List)
				reservations.GET("/availability", r.reservationHandler.Availability)
				reservations.POST("/:id/cancel", r.reservationHandler.Cancel)
			}

			// 会员
			memberships := authenticated.Group("/memberships")
			{
				memberships.POST("", r.membershipHandler.Purchase)
				memberships.GET("", r.membershipHandler.List)
			}

			// 支付
			payments := authenticated.Group("/payments")
			{
				payments.GET("", r.paymentHandler.List)
				payments.POST("/checkout", r.paymentHandler.Checkout)
			}
		}

		// 管理员接口
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.AdminOnly())
		{
			admin.PUT("/facility/settings", r.facilityHandler.UpdateSettings)
			admin.PUT("/facility/schedules", r.facilityHandler.UpsertSchedule)
			admin.POST("/payments/:id/confirm", r.paymentHandler.ConfirmCash)
		}
	}

	return engine
}
