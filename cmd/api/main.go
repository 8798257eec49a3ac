package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/openshelf/libris/internal/http/handlers"
	httpmw "github.com/openshelf/libris/internal/http/middleware"
	"github.com/openshelf/libris/internal/mailer"
	"github.com/openshelf/libris/internal/notify"
	"github.com/openshelf/libris/internal/repo/postgres"
	"github.com/openshelf/libris/internal/repo/redisrepo"
	"github.com/openshelf/libris/internal/service"
	"github.com/openshelf/libris/migrations"
	"github.com/openshelf/libris/pkg/config"
	"github.com/openshelf/libris/pkg/database"
	"github.com/openshelf/libris/pkg/events"
	"github.com/openshelf/libris/pkg/logger"
	mw "github.com/openshelf/libris/pkg/middleware"
)

func runMigrations(databaseURL string) error {
	db, err := goose.OpenDBWithDriver("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.FS)
	return goose.Up(db, ".")
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if err := runMigrations(cfg.Database.URL); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	bookRepo := postgres.NewBookRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	rateLimitRepo := redisrepo.NewRateLimitRepository(redisClient)

	// Services
	authService := service.NewAuthService(userRepo, eventBus, cfg)
	bookService := service.NewBookService(bookRepo)
	reservationService := service.NewReservationService(reservationRepo, bookRepo, eventBus)
	notificationService := service.NewNotificationService(notificationRepo)

	// Notification worker
	worker := notify.NewWorker(userRepo, notificationRepo, pickMailer(cfg), eventBus)
	if err := worker.Start(); err != nil {
		logger.Error("Failed to start notification worker", "error", err)
		os.Exit(1)
	}

	h := handlers.New(authService, bookService, reservationService, notificationService)
	guard := httpmw.NewGuard(userRepo, cfg.Auth.JWTSecret)
	loginLimit := httpmw.LoginRateLimit(rateLimitRepo, cfg.Auth.LoginAttempts, cfg.Auth.LoginWindow)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.Health)
	r.Use(mw.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.With(loginLimit).Post("/login", h.Login)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(guard.RequireAuth)
			r.With(guard.RequireAdmin).Get("/", h.ListUsers)
			r.Get("/{id}", h.GetUser)
			r.Put("/{id}", h.UpdateUser)
			r.With(guard.RequireAdmin).Put("/{id}/approve", h.ApproveUser)
			r.With(guard.RequireAdmin).Put("/{id}/promote", h.PromoteUser)
			r.With(guard.RequireAdmin).Delete("/{id}", h.DeleteUser)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", h.ListBooks)
			r.Get("/{id}", h.GetBook)

			r.Group(func(r chi.Router) {
				r.Use(guard.RequireAuth, guard.RequireAdmin)
				r.Post("/", h.CreateBook)
				r.Put("/{id}", h.UpdateBook)
				r.Delete("/{id}", h.DeleteBook)
			})
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Use(guard.RequireAuth, guard.RequireApproved)
			r.Post("/", h.CreateReservation)
			r.With(guard.RequireAdmin).Get("/", h.ListReservations)
			r.Get("/mine", h.ListMyReservations)
			r.Get("/{id}", h.GetReservation)
			r.With(guard.RequireAdmin).Put("/{id}", h.UpdateReservation)
			r.Delete("/{id}", h.CancelReservation)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(guard.RequireAuth, guard.RequireApproved)
			r.Get("/", h.ListNotifications)
			r.Put("/{id}/read", h.MarkNotificationRead)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting libris API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func pickMailer(cfg *config.Config) mailer.Service {
	if cfg.Email.DevMode {
		return mailer.NewDevMailer()
	}
	if cfg.Email.MailerSendKey != "" {
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, "Libris", cfg.Email.SMTPFrom)
	}
	return mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass)
}
