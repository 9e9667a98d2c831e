package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memberportal/internal/cache"
	"memberportal/internal/catalog"
	"memberportal/internal/config"
	"memberportal/internal/event"
	"memberportal/internal/repository"
	"memberportal/internal/service"
	"memberportal/internal/submit"
	"memberportal/internal/transport/rest"
	"memberportal/internal/transport/ws"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	cfg := config.Load()

	// Catalogs
	registry, err := catalog.LoadDir(cfg.CatalogDir)
	if err != nil {
		log.Fatal("Failed to load catalogs:", err)
	}
	log.Printf("Loaded %d catalog(s): %v", len(registry.IDs()), registry.IDs())

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

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Event exchange (optional)
	var publisher *event.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = event.NewPublisher(cfg.AMQPURL, cfg.EventExchange)
		if err != nil {
			log.Fatal("Failed to connect to AMQP:", err)
		}
		defer publisher.Close()
		log.Println("Connected to AMQP")
	} else {
		log.Println("Warning: AMQP_URL not set, events disabled")
	}

	// WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Repositories and caches
	submissionRepo := repository.NewSubmissionRepo(db)
	progressCache := cache.NewProgressCache(rdb)
	completedCache := cache.NewCompletedCache(rdb)

	// Services
	authSvc := service.NewAuthService(cfg)
	pipeline := submit.NewPipeline(cfg.SubmitURL)
	telemetry := service.NewTelemetryService(cfg.TelemetryURL)
	flowSvc := service.NewFlowService(registry, progressCache, completedCache, pipeline, telemetry, publisher)
	submissionSvc := service.NewSubmissionService(submissionRepo, publisher)
	adminSvc := service.NewAdminService(submissionRepo)

	container := &rest.Container{
		AuthService:       authSvc,
		FlowService:       flowSvc,
		SubmissionService: submissionSvc,
		AdminService:      adminSvc,
		WSHub:             wsHub,
		AdminToken:        cfg.AdminToken,
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
		log.Println("  GET  /v1/surveys")
		log.Println("  POST /v1/surveys/{surveyId}/session")
		log.Println("  POST /v1/surveys/{surveyId}/session/answers")
		log.Println("  POST /v1/surveys/{surveyId}/session/back")
		log.Println("  GET  /v1/surveys/{surveyId}/session/completed")
		log.Println("  POST /v1/submissions")
		log.Println("  GET  /v1/admin/dashboard")
		log.Println("  WS   /v1/ws/surveys/{surveyId}")

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
