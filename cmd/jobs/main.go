package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/qs3c/gym_go_server/config"
	"github.com/qs3c/gym_go_server/internal/database"
	"github.com/qs3c/gym_go_server/internal/pkg/lock"
	"github.com/qs3c/gym_go_server/internal/pkg/queue"
	"github.com/qs3c/gym_go_server/internal/repository"
	"github.com/qs3c/gym_go_server/internal/service"
)

var (
	expireSubscriptions = flag.Bool("expire-subscriptions", false, "Expire subscriptions past their end date")
	generateStatements  = flag.Bool("generate-statements", false, "Generate renewal billing statements")
	cancelStalePayments = flag.Bool("cancel-stale-payments", false, "Cancel pending payments past the stale cutoff")
	completePast        = flag.Bool("complete-reservations", false, "Mark past reservations as completed")
	dryRun              = flag.Bool("dry-run", false, "Report what would be done without writing")
)

func main() {
	flag.Parse()

	if !*expireSubscriptions && !*generateStatements && !*cancelStalePayments && !*completePast {
		log.Println("No job selected, nothing to do")
		flag.Usage()
		os.Exit(2)
	}

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 连接数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	// 连接 Redis（计费锁和通知队列需要）
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}

	notifyQueue := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	locker := lock.NewLocker(rdb)

	subscriptionRepo := repository.NewSubscriptionRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	paymentService := service.NewPaymentService(paymentRepo, billingRepo, nil, notifyQueue, cfg)
	billingService := service.NewBillingService(subscriptionRepo, billingRepo, offerRepo, paymentService, locker, notifyQueue, cfg)

	failed := false

	if *expireSubscriptions {
		if *dryRun {
			log.Println("[dry-run] expire-subscriptions: skipped (would expire ACTIVE subscriptions past end date)")
		} else {
			n, err := billingService.ExpireSubscriptions()
			if err != nil {
				log.Printf("expire-subscriptions failed: %v", err)
				failed = true
			} else {
				log.Printf("expire-subscriptions: %d subscriptions expired", n)
			}
		}
	}

	if *generateStatements {
		if *dryRun {
			n, err := billingService.CountRenewalCandidates()
			if err != nil {
				log.Printf("generate-statements (dry-run) failed: %v", err)
				failed = true
			} else {
				log.Printf("[dry-run] generate-statements: %d statements would be created", n)
			}
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			n, err := billingService.GenerateStatements(ctx)
			cancel()
			if err != nil {
				log.Printf("generate-statements failed: %v", err)
				failed = true
			} else {
				log.Printf("generate-statements: %d statements created", n)
			}
		}
	}

	if *cancelStalePayments {
		if *dryRun {
			n, err := paymentService.CountStalePending()
			if err != nil {
				log.Printf("cancel-stale-payments (dry-run) failed: %v", err)
				failed = true
			} else {
				log.Printf("[dry-run] cancel-stale-payments: %d payments would be cancelled", n)
			}
		} else {
			n, err := paymentService.CancelStalePending()
			if err != nil {
				log.Printf("cancel-stale-payments failed: %v", err)
				failed = true
			} else {
				log.Printf("cancel-stale-payments: %d payments cancelled", n)
			}
		}
	}

	if *completePast {
		if *dryRun {
			log.Println("[dry-run] complete-reservations: skipped (would mark past reservations COMPLETED)")
		} else {
			n, err := reservationRepo.CompletePast(time.Now())
			if err != nil {
				log.Printf("complete-reservations failed: %v", err)
				failed = true
			} else {
				log.Printf("complete-reservations: %d reservations completed", n)
			}
		}
	}

	if failed {
		os.Exit(1)
	}
	log.Println("All jobs completed")
}
