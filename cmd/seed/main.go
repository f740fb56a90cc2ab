package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gobag/internal/cache"
	"gobag/internal/config"
	"gobag/internal/model"
	"gobag/internal/repository"
	"gobag/internal/service"
)

// Seeds the default item list and a demo lesson session with four teams.
func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.Database)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to ping Redis: %v", err)
	}

	listRepo := repository.NewItemListRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	teamRepo := repository.NewTeamRepo(db)
	participantRepo := repository.NewParticipantRepo(db)

	codeCache := cache.NewCodeCache(rdb)
	resultsCache := cache.NewResultsCache(rdb)

	listSvc := service.NewItemListService(listRepo, sessionRepo)
	sessionSvc := service.NewSessionService(sessionRepo, teamRepo, participantRepo, listRepo, codeCache, resultsCache)

	list, err := listSvc.EnsureDefault(ctx)
	if err != nil {
		log.Fatalf("Failed to seed default item list: %v", err)
	}
	log.Printf("Default item list %q ready (%d items)", list.Name, len(list.Items))

	session, teams, err := sessionSvc.CreateSession(ctx, "防災訓練デモ", model.SessionLesson, list.ID, 4)
	if err != nil {
		log.Fatalf("Failed to seed demo session: %v", err)
	}

	fmt.Printf("Seeded session %s (code %s)\n", session.ID, session.AccessCode)
	for _, t := range teams {
		fmt.Printf("  team %d: code %s\n", t.TeamNumber, t.AccessCode)
	}
}
