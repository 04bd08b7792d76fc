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

	"babykicks-backend/internal/config"
	"babykicks-backend/internal/counter"
	"babykicks-backend/internal/database"
	"babykicks-backend/internal/handlers"
	"babykicks-backend/internal/middleware"
	"babykicks-backend/internal/router"
	"babykicks-backend/internal/services"
	"babykicks-backend/internal/storage"
	"babykicks-backend/internal/websocket"
	"babykicks-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting BabyKicks Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Initialize Storage ────
	store := storage.NewPostgresStore(pool)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := store.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatalf("✗ Storage schema setup failed: %v", err)
		}
		cancel()
	}
	insightCache := storage.NewRedisStore(redisClients.Cache)
	log.Println("✓ Storage ready")

	// ──── Step 5: Initialize Gemini Client (optional) ────
	var gemini *services.GeminiClient
	if cfg.GeminiAPIKey != "" {
		gemini, err = services.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer gemini.Close()
		log.Println("✓ Gemini Flash client initialized")
	} else {
		log.Println("⚠ GEMINI_API_KEY not set — running with deterministic local fallbacks")
	}

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	historyService := services.NewHistoryService(store)
	profileService := services.NewProfileService(store)
	insightService := services.NewInsightService(insightCache, gemini)
	evaluator := services.NewEvaluator(gemini)
	authProvider := &services.MockGoogleProvider{Delay: time.Duration(cfg.AuthDelayMs) * time.Millisecond}
	authService := services.NewAuthService(authProvider, historyService, profileService, jwtAuth)

	// ──── Step 6: Start Analysis Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, evaluator, historyService, profileService, cfg.AnalysisWorkers)
	engineManager := counter.NewManager(historyService, workerPool.Enqueue)
	workerPool.Bind(engineManager)
	workerPool.Start()
	log.Printf("✓ Analysis worker pool started (%d goroutines)", cfg.AnalysisWorkers)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService)
	sessionHandler := handlers.NewSessionHandler(engineManager, historyService, profileService)
	insightHandler := handlers.NewInsightHandler(insightService, profileService)
	trendsHandler := handlers.NewTrendsHandler(historyService, profileService)

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		profileHandler,
		sessionHandler,
		insightHandler,
		trendsHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ BabyKicks Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
