// jobpulse board-service
//
// Backend for the job board dashboard:
//   - mirrors postings from the upstream scraper API on a cron schedule
//   - serves paginated job pages, purging invalid documents on read
//   - serves the full collection and filtered analytics over it
//   - computes memoized AI resume/job match scores
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jobpulse/board-service/internal/api"
	"jobpulse/board-service/internal/cache"
	"jobpulse/board-service/internal/config"
	"jobpulse/board-service/internal/db"
	"jobpulse/board-service/internal/ingest"
	"jobpulse/board-service/internal/jobstore"
	"jobpulse/board-service/internal/match"
	"jobpulse/board-service/internal/scheduler"
	"jobpulse/board-service/internal/scraper"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	if err := godotenv.Load(); err != nil {
		log.Println("[board-service] No .env file — using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[board-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[board-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("[board-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[board-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[board-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[board-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[board-service] Redis connected ✓")

	// ── Services ─────────────────────────────────────────────────────────────
	store := jobstore.New(pool)
	cursors := ingest.NewRedisCursorStore(rdb, "jobs_cursor", cache.DatasetTTL)
	pager := ingest.NewService(store, cursors)
	pageCache := cache.NewRedis(rdb)

	scorer := match.NewService(
		match.NewPGStore(pool),
		match.NewHTTPEvaluator(cfg.ScraperAPIURL),
	)

	mirror := scraper.NewMirror(store, scraper.NewFetcher(cfg.ScraperAPIURL))
	sched := scheduler.New(mirror, pageCache, cfg.SyncIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[board-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := api.NewHandler(pager, scorer, pageCache, cfg.PageSize)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		// Resume scoring waits on the external evaluator.
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		log.Printf("[board-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[board-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[board-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[board-service] Shutdown error: %v", err)
	}
	log.Println("[board-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "board-service",
		"version": version,
	})
}
