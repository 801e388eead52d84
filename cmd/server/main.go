// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/brokeio/brokeio/internal/auth"
	"github.com/brokeio/brokeio/internal/cache"
	"github.com/brokeio/brokeio/internal/catalog"
	"github.com/brokeio/brokeio/internal/database"
	"github.com/brokeio/brokeio/internal/handlers"
	"github.com/brokeio/brokeio/internal/middleware"
	"github.com/brokeio/brokeio/internal/models"
	"github.com/brokeio/brokeio/internal/registry"
)

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	cat := catalog.New()
	if err := cat.AddBoard(catalog.ClassicBoard()); err != nil {
		log.Fatalf("register classic board: %v", err)
	}

	// Postgres is optional: without it sessions live only in memory.
	var repo registry.Persister
	if os.Getenv("DATABASE_URL") != "" || os.Getenv("PG_HOST") != "" {
		pool, err := database.Connect(context.Background())
		if err != nil {
			log.Fatalf("database connect: %v", err)
		}
		defer pool.Close()
		repo = database.NewRepo(pool)
		logger.Info("postgres persistence enabled")
	}

	reg := registry.New(cat, repo)
	reg.Cards = catalog.StandardCards()

	// Redis is optional as well: without it action records stay in memory.
	if os.Getenv("REDIS_ADDR") != "" {
		queue, err := cache.Connect(context.Background())
		if err != nil {
			log.Fatalf("redis connect: %v", err)
		}
		defer queue.Close()
		reg.Publish = func(rec models.ActionRecord) {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := queue.PublishAction(ctx, rec); err != nil {
					logger.WithError(err).Warn("action publish failed")
				}
			}()
		}
		logger.Info("redis action queue enabled")
	}

	srv := handlers.NewServer(reg, logger)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			reg.Sweep(30*time.Minute, 24*time.Hour)
		}
	}()

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, middleware.LogMiddleware(logger)(srv.Routes())); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
