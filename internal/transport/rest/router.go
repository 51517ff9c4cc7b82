package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"studynotes/internal/service"
	"studynotes/internal/session"
	"studynotes/internal/transport/rest/handler"
	"studynotes/internal/transport/rest/middleware"
	"studynotes/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService   *service.AuthService
	NoteService   *service.NoteService
	QuizService   *service.QuizService
	UploadService *service.UploadService
	Sessions      *session.Manager
	WSHub         *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	noteHandler := handler.NewNoteHandler(c.NoteService)
	quizHandler := handler.NewQuizHandler(c.QuizService)
	sessionHandler := handler.NewSessionHandler(c.Sessions)
	uploadHandler := handler.NewUploadHandler(c.UploadService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.Sessions)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket route (public with token in query param)
	v1.HandleFunc("/ws/sessions/{id}", wsHandler.SessionWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Authenticated routes
	authed := v1.NewRoute().Subrouter()
	authed.Use(authMW.RequireAuth)

	authed.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	authed.HandleFunc("/notes", noteHandler.List).Methods("GET", "OPTIONS")
	authed.HandleFunc("/notes", noteHandler.Create).Methods("POST", "OPTIONS")
	authed.HandleFunc("/notes/{id}", noteHandler.Get).Methods("GET", "OPTIONS")
	authed.HandleFunc("/notes/{id}", noteHandler.Update).Methods("PUT", "OPTIONS")
	authed.HandleFunc("/notes/{id}", noteHandler.Delete).Methods("DELETE", "OPTIONS")

	authed.HandleFunc("/quizzes/generate", quizHandler.Generate).Methods("POST", "OPTIONS")
	authed.HandleFunc("/quizzes", quizHandler.List).Methods("GET", "OPTIONS")
	authed.HandleFunc("/quizzes/{id}", quizHandler.Get).Methods("GET", "OPTIONS")
	authed.HandleFunc("/quizzes/{id}/submit", quizHandler.Submit).Methods("PUT", "OPTIONS")

	authed.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	authed.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	authed.HandleFunc("/sessions/{id}/answer", sessionHandler.Answer).Methods("POST", "OPTIONS")
	authed.HandleFunc("/sessions/{id}/restart", sessionHandler.Restart).Methods("POST", "OPTIONS")
	authed.HandleFunc("/sessions/{id}/finish", sessionHandler.Finish).Methods("POST", "OPTIONS")
	authed.HandleFunc("/sessions/{id}", sessionHandler.Destroy).Methods("DELETE", "OPTIONS")

	authed.HandleFunc("/upload", uploadHandler.Upload).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
