package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-dashboard/internal/config"
	"weather-dashboard/internal/handler"
	"weather-dashboard/internal/messaging"
	"weather-dashboard/internal/middleware"
	"weather-dashboard/internal/notifier"
	"weather-dashboard/internal/observability"
	"weather-dashboard/internal/session"
	"weather-dashboard/internal/sponsor"
	"weather-dashboard/internal/storage"
	"weather-dashboard/internal/storage/memory"
	pgstore "weather-dashboard/internal/storage/postgres"
	"weather-dashboard/internal/view"
	"weather-dashboard/internal/weather"
	"weather-dashboard/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	observability.InitLogger(cfg.LogLevel, cfg.LogFormat)

	slog.Info("starting weather dashboard",
		slog.String("backend", cfg.StoreBackend),
		slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, db := openStore(ctx, cfg)
	if db != nil {
		defer db.Close()
	}

	var rmq *messaging.RabbitMQ
	if cfg.RabbitMQURL != "" {
		rmqCtx, rmqCancel := context.WithTimeout(ctx, 60*time.Second)
		defer rmqCancel()

		var err error
		rmq, err = messaging.NewRabbitMQWithRetry(rmqCtx, cfg.RabbitMQURL)
		if err != nil {
			slog.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer rmq.Close()

		relay := messaging.NewRelay(store, rmq)
		if err := relay.Start(ctx); err != nil {
			slog.Error("failed to start store relay", slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = relay
		slog.Info("cross-instance store relay started")
	}

	sessions := session.NewManager(store, newAuthenticator(cfg), cfg.SessionTTL)
	sponsors := sponsor.NewRepository(ctx, store)

	updates := notifier.New(store, sessions, sponsors)
	updates.Start()
	defer updates.Stop()

	hub := websocket.NewHub()
	go func() {
		if err := hub.Run(ctx); err != nil && err != context.Canceled {
			slog.Error("hub error", slog.String("error", err.Error()))
		}
	}()
	slog.Info("websocket hub started")

	loginView := view.NewLogin(sessions)
	adminView := view.NewAdmin(sponsors)
	view.NewPublic(ctx, sponsors, updates, hub)

	// A logout (or login) in another instance or tab invalidates every open
	// admin view.
	updates.SubscribeSession(func(authenticated bool) {
		payload, err := json.Marshal(map[string]bool{"authenticated": authenticated})
		if err != nil {
			slog.Error("failed to marshal session state", slog.String("error", err.Error()))
			return
		}
		hub.Broadcast(websocket.TopicSession, payload)
	})

	sessionHandler := handler.NewSessionHandler(loginView, sessions)
	sponsorHandler := handler.NewSponsorHandler(adminView, sponsors)
	weatherHandler := handler.NewWeatherHandler(weather.NewClient(cfg.WeatherAPIURL, cfg.WeatherAPIKey))
	wsHandler := handler.NewWebSocketHandler(hub, sessions)
	pages := handler.NewPages(sessions, "./static")

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(middleware.ParseOrigins(cfg.AllowedOrigins)))
	r.Use(middleware.Metrics())

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(store, db, rmq))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", pages.Dashboard)
	r.Get("/admin", pages.Admin)
	r.Get("/login", pages.Login)
	r.NotFound(pages.NotFound)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OpenAPIValidator(middleware.DefaultOpenAPIValidatorConfig()))

		authLimiter := middleware.NewRateLimiter(5, 10)
		apiLimiter := middleware.NewRateLimiter(20, 50)

		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware())
			r.Post("/auth/login", sessionHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(apiLimiter.Middleware())

			r.Get("/auth/session", sessionHandler.State)
			r.Get("/sponsors", sponsorHandler.List)
			r.Get("/weather", weatherHandler.Current)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(sessions))

				r.Post("/auth/logout", sessionHandler.Logout)
				r.Post("/sponsors", sponsorHandler.Submit)
				r.Get("/sponsors/edit", sponsorHandler.EditState)
				r.Delete("/sponsors/edit", sponsorHandler.CancelEdit)
				r.Put("/sponsors/{index}", sponsorHandler.Update)
				r.Delete("/sponsors/{index}", sponsorHandler.Delete)
				r.Post("/sponsors/{index}/edit", sponsorHandler.BeginEdit)
			})
		})
	})

	r.Get("/ws/sponsors", wsHandler.Sponsors)
	r.Get("/ws/session", wsHandler.Session)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("dashboard listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	time.Sleep(100 * time.Millisecond)

	slog.Info("server stopped gracefully")
}

// openStore opens the configured storage backend. The returned db is nil for
// the in-memory backend.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, *sql.DB) {
	if cfg.StoreBackend == "memory" {
		slog.Info("using in-memory store")
		return memory.NewBackend().Open(), nil
	}

	connCtx, connCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connCancel()

	db, err := config.OpenPostgres(connCtx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := pgstore.EnsureSchema(connCtx, db); err != nil {
		slog.Error("failed to ensure schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, err := pgstore.NewStore(db)
	if err != nil {
		slog.Error("failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := store.StartListener(ctx, cfg.DatabaseURL); err != nil {
		slog.Error("failed to start change listener", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("connected to postgresql store")
	return store, db
}

// newAuthenticator prefers a bcrypt hash when one is configured.
func newAuthenticator(cfg *config.Config) session.Authenticator {
	if cfg.AdminPassHash != "" {
		return session.NewBcrypt(cfg.AdminUsername, cfg.AdminPassHash)
	}
	return session.NewStatic(cfg.AdminUsername, cfg.AdminPassword)
}
