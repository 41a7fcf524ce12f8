package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"vitalog/backend/internal/config"
	"vitalog/backend/internal/db"
	"vitalog/backend/internal/report"
	"vitalog/backend/internal/server"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("database ping failed: %v", err)
	}
	if err := server.ValidateRuntimeSchema(ctx, pool); err != nil {
		log.Fatalf("database schema mismatch: %v", err)
	}

	store := report.NewPGStore(pool)
	credits := report.NewPGCreditLedger(pool)
	notify := report.NewPGNotificationQueue(pool)

	var client report.CompletionClient = report.NewOpenAIResponsesClient(cfg)
	apiKey := cfg.OpenAIAPIKey
	if cfg.LLMEnabled && cfg.AppEnv != "production" && strings.TrimSpace(apiKey) == "" {
		log.Printf("OPENAI_API_KEY not set; using the mock completion client")
		client = report.MockCompletionClient{Model: cfg.OpenAIModel}
		apiKey = "mock"
	}
	synth := report.NewSynthesizer(client, cfg.LLMEnabled, apiKey, cfg.OpenAIModel, cfg.PayloadMaxChars)
	runner := report.NewRunner(store, credits, notify, synth, cfg)

	app := server.New(cfg, pool, store, runner)
	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("vitalog api listening on http://localhost:%s", cfg.AppPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
