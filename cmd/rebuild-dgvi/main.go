package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/passbi/routecore/internal/config"
	"github.com/passbi/routecore/internal/db"
	"github.com/passbi/routecore/internal/dgvi"
	"github.com/passbi/routecore/internal/spatialstore"
)

func main() {
	month := flag.String("month", "", "month to rebuild, format YYYY-MM")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	if *month == "" {
		log.Fatal("usage: rebuild-dgvi -month=YYYY-MM")
	}

	log.Println("routecore - DGVI Rebuild Tool")
	log.Println("=============================")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("connecting to database...")
	pool, err := db.Get(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("database connected")

	ctx := context.Background()
	store := spatialstore.New(pool)

	var roadCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM road_edge").Scan(&roadCount); err != nil {
		log.Fatalf("Failed to count road edges: %v", err)
	}

	var beforeCount int
	_ = pool.QueryRow(ctx, "SELECT COUNT(*) FROM road_dgvi WHERE month = $1", *month).Scan(&beforeCount)

	log.Printf("database statistics for %s:", *month)
	log.Printf("   road edges: %d", roadCount)
	log.Printf("   existing dgvi rows: %d", beforeCount)

	if roadCount == 0 {
		log.Fatal("No road edges found. Load the road graph first.")
	}

	if !*yes {
		fmt.Println()
		fmt.Printf("This will recompute and normalize DGVI for every road edge in %s.\n", *month)
		fmt.Print("Continue? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			log.Println("rebuild cancelled")
			os.Exit(0)
		}
	}

	fmt.Println()
	log.Println("starting DGVI rebuild...")
	start := time.Now()

	eval := dgvi.New(store)
	if err := eval.RebuildMonth(ctx, *month); err != nil {
		log.Fatalf("Failed to rebuild DGVI: %v", err)
	}

	duration := time.Since(start)

	stats, err := store.DGVIStats(ctx, *month)
	if err != nil {
		log.Printf("failed to read post-rebuild stats: %v", err)
	} else {
		fmt.Println()
		log.Println("DGVI rebuild completed")
		log.Printf("   duration: %v", duration)
		log.Printf("   rows: %d", stats.Count)
		log.Printf("   normalized range: [%.3f, %.3f]", stats.MinNorm, stats.MaxNorm)
		log.Printf("   normalized average: %.3f", stats.AvgNorm)
	}
}
