package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exampay/internal/config"
	"exampay/internal/handler"
	"exampay/internal/infrastructure/cache"
	"exampay/internal/infrastructure/database"
	"exampay/internal/infrastructure/mq"
	"exampay/internal/job"
	"exampay/internal/model"
	"exampay/internal/repository"
	"exampay/pkg/idgen"
)

func main() {
	cfg := config.LoadConfig("config/config.yaml")

	idgen.Init(1)

	db := database.InitMySQL(&cfg.MySQL)

	redisClient := cache.InitRedis(&cfg.Redis)

	producer := mq.InitKafka(&cfg.Kafka)
	defer producer.Close()

	// Seed the plan catalog on a fresh deployment.
	planRepo := repository.NewPlanRepository(db)
	if err := planRepo.Seed(context.Background(), defaultPlans()); err != nil {
		log.Fatalf("failed to seed plans: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outboxSender := job.NewOutboxSender(db, producer, cfg)
	go outboxSender.Start(ctx)

	orderTimeoutJob := job.NewOrderTimeoutJob(db)
	go orderTimeoutJob.Start(ctx)

	router := handler.SetupRouter(db, redisClient, cfg)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("server listening on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	// Stop background jobs first, then drain in-flight requests.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	log.Println("server stopped")
}

func defaultPlans() []*model.Plan {
	return []*model.Plan{
		{ID: "monthly", Name: "Monthly access", Amount: 4990000, DurationDays: 30, Active: true},
		{ID: "quarterly", Name: "Quarterly access", Amount: 12900000, DurationDays: 90, Active: true},
		{ID: "yearly", Name: "Yearly access", Amount: 44900000, DurationDays: 365, Active: true},
	}
}
