package main

import (
	"fmt"
	"log"

	"github.com/qs3c/gym_go_server/config"
	"github.com/qs3c/gym_go_server/internal/api"
	"github.com/qs3c/gym_go_server/internal/api/handler"
	"github.com/qs3c/gym_go_server/internal/database"
	"github.com/qs3c/gym_go_server/internal/pkg/cron"
	"github.com/qs3c/gym_go_server/internal/pkg/gateway"
	"github.com/qs3c/gym_go_server/internal/pkg/lock"
	"github.com/qs3c/gym_go_server/internal/pkg/queue"
	"github.com/qs3c/gym_go_server/internal/repository"
	"github.com/qs3c/gym_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 Queue、分布式锁、支付网关
	notifyQueue := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	locker := lock.NewLocker(rdb)
	gatewayClient := gateway.NewClient(&cfg.Gateway)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	facilityRepo := repository.NewFacilityRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, cfg)
	facilityService := service.NewFacilityService(facilityRepo, cfg)
	reservationService := service.NewReservationService(reservationRepo, facilityService, notifyQueue, cfg)
	paymentService := service.NewPaymentService(paymentRepo, billingRepo, gatewayClient, notifyQueue, cfg)
	membershipService := service.NewMembershipService(offerRepo, subscriptionRepo, userRepo, paymentService, cfg)
	billingService := service.NewBillingService(subscriptionRepo, billingRepo, offerRepo, paymentService, locker, notifyQueue, cfg)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	reservationHandler := handler.NewReservationHandler(reservationService)
	membershipHandler := handler.NewMembershipHandler(membershipService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	facilityHandler := handler.NewFacilityHandler(facilityService)

	// 启动定时任务
	cronService := cron.NewService(billingService, paymentService, reservationRepo)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		reservationHandler,
		membershipHandler,
		paymentHandler,
		facilityHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
