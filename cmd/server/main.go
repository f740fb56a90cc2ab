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

	"gobag/internal/cache"
	"gobag/internal/config"
	"gobag/internal/repository"
	"gobag/internal/service"
	"gobag/internal/transport/rest"
	"gobag/internal/transport/ws"
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

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.Database)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	listRepo := repository.NewItemListRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	teamRepo := repository.NewTeamRepo(db)
	participantRepo := repository.NewParticipantRepo(db)

	// Initialize caches
	codeCache := cache.NewCodeCache(rdb)
	resultsCache := cache.NewResultsCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService()
	listSvc := service.NewItemListService(listRepo, sessionRepo)
	migrationSvc := service.NewMigrationService(sessionRepo, listRepo)
	sessionSvc := service.NewSessionService(sessionRepo, teamRepo, participantRepo, listRepo, codeCache, resultsCache)
	resolverSvc := service.NewResolverService(sessionRepo, teamRepo, listRepo, codeCache)
	submissionSvc := service.NewSubmissionService(teamRepo, participantRepo, sessionRepo)
	aggSvc := service.NewAggregationService(sessionRepo, listRepo, teamRepo, participantRepo, resultsCache)
	statusSvc := service.NewStatusService(mongoClient)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	submissionSvc.SetBroadcaster(wsHub)
	aggSvc.SetBroadcaster(wsHub)

	// Make sure the default item list exists before serving requests
	seedCtx, seedCancel := context.WithTimeout(ctx, 10*time.Second)
	defer seedCancel()
	if _, err := listSvc.EnsureDefault(seedCtx); err != nil {
		log.Fatal("Failed to ensure default item list:", err)
	}

	// Create router with container
	container := &rest.Container{
		AuthService:       authSvc,
		ResolverService:   resolverSvc,
		SessionService:    sessionSvc,
		ItemListService:   listSvc,
		MigrationService:  migrationSvc,
		SubmissionService: submissionSvc,
		AggregationSvc:    aggSvc,
		StatusService:     statusSvc,
		WSHub:             wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/auth/anonymous")
		log.Println("  POST /v1/join")
		log.Println("  POST/GET /v1/sessions")
		log.Println("  POST/GET /v1/lists")
		log.Println("  GET  /v1/sessions/{id}/results")
		log.Println("  WS  /v1/ws/sessions/{id}/dashboard")
		log.Println("  WS  /v1/ws/sessions/{id}/teams/{teamId}")

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
