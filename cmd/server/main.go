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

	"converse-backend/internal/config"
	"converse-backend/internal/database"
	"converse-backend/internal/handlers"
	"converse-backend/internal/middleware"
	"converse-backend/internal/repository"
	"converse-backend/internal/router"
	"converse-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting Converse Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Connect MongoDB ────
	mongoClient, err := database.NewMongoClient(cfg.MongoURL)
	if err != nil {
		log.Fatalf("✗ MongoDB connection failed: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	log.Println("✓ MongoDB connected")

	db := mongoClient.Database(cfg.MongoDB)

	// ──── Initialize Repositories ────
	conversationRepo := repository.NewConversationRepo(db)

	// ──── Step 3: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Initialize Handlers ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	chatHandler := handlers.NewChatHandler(conversationRepo, geminiService)

	// ──── Step 4: Start HTTP Server ────
	r := router.New(jwtAuth, chatHandler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
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

	log.Printf("✓ Converse Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
