package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/dinostore/backend/docs"
	"github.com/dinostore/backend/internal/audit"
	"github.com/dinostore/backend/internal/config"
	"github.com/dinostore/backend/internal/database"
	"github.com/dinostore/backend/internal/handlers"
	"github.com/dinostore/backend/internal/jobs"
	mW "github.com/dinostore/backend/internal/middleware"
	"github.com/dinostore/backend/internal/payments"
	"github.com/dinostore/backend/internal/services"
)

// @title Dino Store API
// @version 1.0
// @description Steam sign-in, dino catalog and coin purchases
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey SessionAuth
// @in header
// @name Authorization

const memorySessionCapacity = 10_000

func main() {
	config.Init(".env")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.ConfigureLogging()

	checkoutCfg, err := config.LoadCheckoutConfig()
	if err != nil {
		log.Fatalf("Invalid checkout configuration: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	docs.SwaggerInfo.BasePath = "/api/v1"

	db := database.InitDatabase()
	defer db.Close()

	var sessionStore services.SessionStore
	var checkoutLimiter services.CheckoutLimiter
	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
		sessionStore = services.NewRedisSessionStore(redisClient)
		if checkoutCfg.RateLimit > 0 {
			checkoutLimiter = services.NewRedisCheckoutLimiter(redisClient, checkoutCfg.RateLimit, checkoutCfg.RateWindow)
		}
	} else {
		log.Warn("Redis unavailable, sessions are kept in process memory")
		sessionStore = services.NewMemorySessionStore(memorySessionCapacity, cfg.SessionTTL)
	}

	sessions, err := services.NewSessionManager(sessionStore, cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("Failed to initialize sessions: %v", err)
	}

	provider := payments.NewStripeProvider(payments.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		APIURL:        cfg.StripeAPIURL,
		Timeout:       cfg.ProviderTimeout,
	})
	auditLogger := audit.NewLogger()

	identityService := services.NewIdentityService(services.SteamConfig{
		OpenIDURL: cfg.SteamOpenIDURL,
		APIKey:    cfg.SteamAPIKey,
		APIURL:    cfg.SteamAPIURL,
		Timeout:   cfg.ProviderTimeout,
	})
	playerService := services.NewPlayerService(db)
	catalogService := services.NewCatalogService(db)
	ledgerService := services.NewCoinLedgerService(db, services.NewBalanceLedger(db))
	checkoutService := services.NewCheckoutService(catalogService, playerService, ledgerService, provider, auditLogger, checkoutCfg, cfg.BaseURL)
	if checkoutLimiter != nil {
		checkoutService.WithLimiter(checkoutLimiter)
	}
	webhookService := services.NewWebhookService(provider, ledgerService, auditLogger).WithCurrency(checkoutCfg.Currency)

	authHandler := handlers.NewAuthHandler(identityService, playerService, sessions, handlers.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: cfg.SessionCookieSecure,
	}, cfg.BaseURL).WithPostLoginPath(cfg.PostLoginPath)
	storeHandler := handlers.NewStoreHandler(catalogService, playerService, ledgerService, checkoutService, services.NewQRService())
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	sessionAuth := mW.NewSessionAuth(sessions, cfg.SessionCookieName)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var scheduler *jobs.Scheduler
	if checkoutCfg.SweepEnabled {
		scheduler = jobs.NewScheduler(ledgerService, auditLogger, checkoutCfg.SweepSpec, checkoutCfg.PendingTTL)
		if err := scheduler.Start(ctx); err != nil {
			log.Fatalf("Failed to start sweep scheduler: %v", err)
		}
	}

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		code := http.StatusOK
		if err := db.PingContext(r.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Provider webhooks: no CORS, no session.
	r.Post("/stripe/webhook", webhookHandler.HandleStripe)

	// Browser flows
	r.Get("/login", authHandler.Login)
	r.Get("/verify", authHandler.Verify)
	r.Post("/logout", authHandler.Logout)
	r.Get("/coins/cancel", storeHandler.CheckoutCancel)
	r.With(sessionAuth.OptionalSession).Get("/coins/success", storeHandler.CheckoutSuccess)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{cfg.BaseURL},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           86400,
		}))

		// Public endpoints
		r.Get("/packages", storeHandler.ListPackages)
		r.Get("/packages/{id}", storeHandler.GetPackage)
		r.Get("/dinos", storeHandler.ListDinos)

		// Session required
		r.Group(func(r chi.Router) {
			r.Use(sessionAuth.RequireSession)

			r.Get("/me", storeHandler.Me)
			r.Get("/me/ledger", storeHandler.MyLedger)
			r.Post("/coins/checkout", storeHandler.Checkout)
			r.Post("/coins/buy/{packageId}", storeHandler.BuyPackage)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Infof("Server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down...")
	stop()
	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Info("Server stopped")
}
