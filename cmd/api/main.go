package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/passbi/routecore/internal/cache"
	"github.com/passbi/routecore/internal/config"
	"github.com/passbi/routecore/internal/db"
	"github.com/passbi/routecore/internal/dgvi"
	"github.com/passbi/routecore/internal/greenness"
	"github.com/passbi/routecore/internal/httpapi"
	"github.com/passbi/routecore/internal/pathsolver"
	"github.com/passbi/routecore/internal/planner"
	"github.com/passbi/routecore/internal/spatialstore"
	"github.com/passbi/routecore/internal/transitfeed"
)

func main() {
	log.Println("Starting routecore API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pool, err := db.Get(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("database connection established")

	if _, err := cache.Get(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.Close()
	log.Println("redis connection established")

	store := spatialstore.New(pool)
	if _, err := store.RefreshGraph(context.Background()); err != nil {
		log.Fatalf("Failed to load road graph: %v", err)
	}
	log.Println("road graph loaded into memory")

	solver := pathsolver.New(store)
	eval := dgvi.New(store)
	feed := transitfeed.New(cfg.TransitFeedURL, cfg.APIDelay, cfg.FeedCallTimeout)
	green := greenness.New(cfg.GreennessServiceURL, cfg.GreennessCallTimeout)
	pl := planner.New(store, solver, eval, feed, cfg)
	handlers := httpapi.New(store, eval, pl, green, cfg)

	app := fiber.New(fiber.Config{
		AppName:      "routecore API",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.PlanDeadline + 10*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: httpapi.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	httpapi.RegisterRoutes(app, handlers)

	addr := fmt.Sprintf(":%s", cfg.APIPort)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
	}()

	log.Printf("server listening on http://localhost%s", addr)
	log.Printf("plan routes: POST http://localhost%s/v1/plan-routes", addr)
	log.Printf("health check: http://localhost%s/health", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
