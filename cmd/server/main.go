package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"studynotes/internal/cache"
	"studynotes/internal/config"
	"studynotes/internal/repository"
	"studynotes/internal/service"
	"studynotes/internal/session"
	"studynotes/internal/transport/rest"
	"studynotes/internal/transport/ws"
)

func main() {
	ctx := context.Background()

	// .env is optional; config.yaml + env vars are the source of truth
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// PostgreSQL connection + schema migration
	db, err := repository.Connect(cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	log.Println("Connected to PostgreSQL")

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// WebSocket hub for session event streams
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Repositories
	userRepo := repository.NewUserRepo(db)
	noteRepo := repository.NewNoteRepo(db)
	quizRepo := repository.NewQuizRepo(db)

	// Caches
	tokenCache := cache.NewTokenCache(rdb)

	// ML service client
	mlClient := service.NewMLClient(cfg.ML.BaseURL, cfg.ML.Timeout())
	log.Printf("ML service: %s (timeout %s)", cfg.ML.BaseURL, cfg.ML.Timeout())

	// Cloud storage
	storage, err := service.NewCloudinaryStorage(cfg.Cloudinary.URL, cfg.Cloudinary.Folder)
	if err != nil {
		log.Fatal("Failed to configure Cloudinary:", err)
	}

	// Services
	authSvc := service.NewAuthService(userRepo, tokenCache, cfg.JWT.Secret,
		time.Duration(cfg.JWT.ExpirationHrs)*time.Hour)
	noteSvc := service.NewNoteService(noteRepo, mlClient)
	quizSvc := service.NewQuizService(quizRepo, noteRepo, mlClient)
	uploadSvc := service.NewUploadService(storage, mlClient)

	// Session engine manager (wsHub implements session.EventSink)
	sessions := session.NewManager(quizRepo, cfg.Session.FeedbackDelay(), cfg.Session.IdleTTL(), wsHub)
	defer sessions.Stop()

	// Create router with container
	container := &rest.Container{
		AuthService:   authSvc,
		NoteService:   noteSvc,
		QuizService:   quizSvc,
		UploadService: uploadSvc,
		Sessions:      sessions,
		WSHub:         wsHub,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Server.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/register")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/auth/logout")
		log.Println("  GET/POST /v1/notes")
		log.Println("  POST /v1/quizzes/generate")
		log.Println("  GET  /v1/quizzes")
		log.Println("  PUT  /v1/quizzes/{id}/submit")
		log.Println("  POST /v1/sessions")
		log.Println("  POST /v1/sessions/{id}/answer")
		log.Println("  POST /v1/upload")
		log.Println("  WS   /v1/ws/sessions/{id}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
