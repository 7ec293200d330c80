package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepwise/config"
	"prepwise/internal/cache"
	"prepwise/internal/event"
	"prepwise/internal/repository"
	"prepwise/internal/scheduler"
	"prepwise/internal/service"
	"prepwise/internal/transport/rest"
	"prepwise/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// RabbitMQ is optional: without it grading requests are simply not
	// queued and essays stay provisional until the broker returns.
	var publisher event.Publisher
	if p, err := event.NewRabbitPublisher(cfg.RabbitURL); err != nil {
		log.Printf("Warning: RabbitMQ unavailable, grading requests disabled: %v", err)
	} else {
		publisher = p
		defer publisher.Close()
		log.Println("Connected to RabbitMQ")
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	questionRepo := repository.NewQuestionRepo(db)
	attemptRepo := repository.NewAttemptRepo(db)
	assessmentRepo := repository.NewAssessmentRepo(db)
	sessionRepo := repository.NewSessionRepo(db)

	// Initialize caches
	catalogCache := cache.NewCatalogCache(rdb)
	insightCache := cache.NewInsightCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	insightSvc := service.NewInsightService(questionRepo, attemptRepo, assessmentRepo, sessionRepo, catalogCache, insightCache)
	sessionSvc := service.NewSessionService(sessionRepo, questionRepo, attemptRepo, catalogCache, insightCache, publisher)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)

	// Background grading sweep
	sched := scheduler.New(sessionRepo, attemptRepo, assessmentRepo, questionRepo, publisher)
	sched.Start()
	defer sched.Stop()

	// Create router with container
	container := &rest.Container{
		AuthService:    authSvc,
		SessionService: sessionSvc,
		InsightService: insightSvc,
		WSHub:          wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  GET  /v1/sessions/current")
		log.Println("  PUT  /v1/sessions/{id}/progress")
		log.Println("  POST /v1/sessions/{id}/complete")
		log.Println("  POST /v1/sessions/{id}/responses")
		log.Println("  GET  /v1/insights/diagnostic")
		log.Println("  GET  /v1/insights/practice/{testNumber}")
		log.Println("  GET  /v1/insights/drills")
		log.Println("  WS   /v1/ws")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
