package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/clubops/billing/internal/config"
	"github.com/clubops/billing/internal/db"
	"github.com/clubops/billing/internal/notify"
	"github.com/clubops/billing/internal/server"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	if *migrateOnlyFlag {
		if _, err := db.ConnectAndMigrate(); err != nil {
			log.Fatalf("migrate-only failed: %v", err)
		}
		log.Println("migrations completed; exiting as requested")
		return
	}

	cfg := config.Load()
	dbConn, err := db.ConnectAndMigrate()
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	log.Printf("Starting server env=%s port=%s", cfg.Env, cfg.Port)

	// Receipt dedupe: shared via redis when configured, per-process otherwise.
	var deduper notify.Deduper = notify.NewMemoryDeduper()
	if cfg.RedisAddr != "" {
		deduper = notify.NewRedisDeduper(cfg.RedisAddr, 30*24*time.Hour)
		slog.Info("using redis receipt dedupe", "addr", cfg.RedisAddr)
	}
	notifier := &notify.DedupingDispatcher{
		Next:   &notify.LogDispatcher{},
		Dedupe: deduper,
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(dbConn, notifier)}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
