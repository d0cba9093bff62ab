package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediguide-backend/internal/config"
	"mediguide-backend/internal/database"
	"mediguide-backend/internal/handlers"
	"mediguide-backend/internal/logging"
	"mediguide-backend/internal/providers"
	"mediguide-backend/internal/router"
	"mediguide-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting MediGuide Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogJSON)
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Redis Cache (optional) ────
	cache, err := database.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	if cache != nil {
		defer cache.Close()
		log.Println("✓ Redis cache connected")
	} else {
		log.Println("  Redis cache disabled (REDIS_URL not set)")
	}

	// ──── Step 3: Initialize Provider Clients ────
	openaiClient := providers.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, logger)
	perplexityClient := providers.NewOpenAIClient(cfg.PerplexityBaseURL, cfg.PerplexityAPIKey, logger)
	openFDAClient := providers.NewOpenFDAClient(cfg.OpenFDABaseURL, logger)

	geminiClient, err := providers.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiClient.Close()
	log.Println("✓ Provider clients initialized")

	// ──── Initialize Services ────
	chatService := services.NewChatService(
		openaiClient,
		perplexityClient,
		cfg.OpenAIModel,
		cfg.PerplexityModel,
		cfg.ClassifierModel,
		logger,
	)
	analysisService := services.NewAnalysisService(geminiClient, logger)
	drugService := services.NewDrugService(openFDAClient, cache, cfg.DrugCacheTTL, logger)
	speechService := services.NewSpeechService(openaiClient, geminiClient, cfg.SpeechModel, cfg.SpeechVoice, logger)

	// ──── Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(chatService, logger)
	analysisHandler := handlers.NewAnalysisHandler(analysisService, logger)
	drugHandler := handlers.NewDrugHandler(drugService, logger)
	speechHandler := handlers.NewSpeechHandler(speechService, logger)

	// ──── Step 4: Start HTTP Server ────
	r := router.New(chatHandler, analysisHandler, drugHandler, speechHandler)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Streaming responses stay open until the upstream model finishes,
		// so the write timeout doubles as the per-request maximum duration.
		WriteTimeout: cfg.MaxRequestDuration,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ MediGuide Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
