package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dcmanaus/laudosgo/internal/config"
	"github.com/dcmanaus/laudosgo/internal/handlers"
	"github.com/dcmanaus/laudosgo/internal/services/report"
	"github.com/dcmanaus/laudosgo/internal/store"
	"github.com/dcmanaus/laudosgo/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Build the record store (file, db or remote per STORAGE_BACKEND)
	st, err := store.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize record store: %v", err)
	}
	log.Printf("🗃️ Record store ready [backend: %s]", cfg.StorageBackend)

	// 3. Report pipeline
	pipeline, err := report.NewPipeline(st, cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize report pipeline: %v", err)
	}

	// 4. Websocket hub for live listing refresh
	hub := websocket.NewHub()
	go hub.Run()

	// 5. HTTP router
	router, err := handlers.NewRouter(cfg, st, pipeline, hub)
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("⚠️ Received signal: %v. Shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	if err := st.Close(); err != nil {
		log.Printf("Store close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
