package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/moiz862/backend/internal/config"
	"github.com/moiz862/backend/internal/database"
	postgresrepo "github.com/moiz862/backend/internal/repository/postgres"
	"github.com/moiz862/backend/internal/service"
	"github.com/moiz862/backend/internal/transport/http/handlers"
	"github.com/moiz862/backend/internal/transport/http/middleware"
	"github.com/moiz862/backend/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Redis backs the rate limiter; requests pass untouched if it is down
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	itemRepo := postgresrepo.NewItemRepo(pool)
	paymentRepo := postgresrepo.NewPaymentRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo)
	messageService := service.NewMessageService(messageRepo, userRepo)
	itemService := service.NewItemService(itemRepo)
	paymentService := service.NewPaymentService(paymentRepo, userRepo)
	uploadService := service.NewUploadService(cfg.UploadDir, cfg.UploadBaseURL)

	// Real-time hub
	hub := ws.NewHub()
	messageService.SetDispatcher(ws.NewHubDispatcher(hub))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	messageHandler := handlers.NewMessageHandler(messageService)
	itemHandler := handlers.NewItemHandler(itemService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	uploadHandler := handlers.NewUploadHandler(uploadService)

	// Middleware
	auth := middleware.Auth(cfg.JWTSecret)
	rateLimit := middleware.RateLimit(rdb, 600, time.Minute)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/v1/payments/plans", paymentHandler.ListPlans)

	// Protected - Users
	mux.Handle("GET /api/v1/users/me", auth(http.HandlerFunc(userHandler.Me)))
	mux.Handle("PATCH /api/v1/users/me", auth(http.HandlerFunc(userHandler.UpdateMe)))
	mux.Handle("GET /api/v1/users/search", auth(http.HandlerFunc(userHandler.Search)))
	mux.Handle("GET /api/v1/users/{id}", auth(http.HandlerFunc(userHandler.Get)))

	// Protected - Messages
	mux.Handle("POST /api/v1/messages", auth(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("GET /api/v1/messages/conversations", auth(http.HandlerFunc(messageHandler.ListConversations)))
	mux.Handle("GET /api/v1/messages/conversations/{peerId}", auth(http.HandlerFunc(messageHandler.GetConversation)))
	mux.Handle("POST /api/v1/messages/read", auth(http.HandlerFunc(messageHandler.MarkRead)))
	mux.Handle("GET /api/v1/messages/unread-count", auth(http.HandlerFunc(messageHandler.UnreadCount)))
	mux.Handle("DELETE /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Delete)))

	// Protected - Items
	mux.Handle("POST /api/v1/items", auth(http.HandlerFunc(itemHandler.Create)))
	mux.Handle("GET /api/v1/items", auth(http.HandlerFunc(itemHandler.List)))
	mux.Handle("GET /api/v1/items/{id}", auth(http.HandlerFunc(itemHandler.Get)))
	mux.Handle("PATCH /api/v1/items/{id}", auth(http.HandlerFunc(itemHandler.Update)))
	mux.Handle("DELETE /api/v1/items/{id}", auth(http.HandlerFunc(itemHandler.Delete)))

	// Protected - Payments
	mux.Handle("POST /api/v1/payments/intents", auth(http.HandlerFunc(paymentHandler.CreateIntent)))
	mux.Handle("GET /api/v1/payments/intents", auth(http.HandlerFunc(paymentHandler.ListIntents)))
	mux.Handle("POST /api/v1/payments/intents/{id}/confirm", auth(http.HandlerFunc(paymentHandler.ConfirmIntent)))
	mux.Handle("POST /api/v1/payments/intents/{id}/cancel", auth(http.HandlerFunc(paymentHandler.CancelIntent)))
	mux.Handle("GET /api/v1/payments/subscription", auth(http.HandlerFunc(paymentHandler.GetSubscription)))
	mux.Handle("DELETE /api/v1/payments/subscription", auth(http.HandlerFunc(paymentHandler.CancelSubscription)))

	// Protected - Uploads
	mux.Handle("POST /api/v1/uploads", auth(http.HandlerFunc(uploadHandler.Upload)))

	// Staged files
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, messageService, cfg.JWTSecret))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: middleware.CORS(rateLimit(mux)),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}
