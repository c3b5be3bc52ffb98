package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mstream "github.com/haowjy/meridian-stream-go"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"copydesk/internal/auth"
	"copydesk/internal/config"
	"copydesk/internal/handler"
	"copydesk/internal/handler/sse"
	"copydesk/internal/middleware"
	"copydesk/internal/notify"
	"copydesk/internal/options"
	"copydesk/internal/repository/postgres"
	postgresBilling "copydesk/internal/repository/postgres/billing"
	postgresReview "copydesk/internal/repository/postgres/review"
	"copydesk/internal/service/analysis"
	"copydesk/internal/service/batch"
	"copydesk/internal/service/credits"
	"copydesk/internal/service/editor"
	"copydesk/internal/service/external/backend"
	"copydesk/internal/service/external/shopify"
	"copydesk/internal/service/review"
	"copydesk/internal/service/template"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" || cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Session token verifier: JWKS when configured, else the shared app secret
	var jwtVerifier auth.JWTVerifier
	var err error
	if cfg.SessionJWKSURL != "" {
		jwtVerifier, err = auth.NewJWKSVerifier(cfg.SessionJWKSURL, cfg.AppAPIKey, logger)
	} else {
		jwtVerifier, err = auth.NewSecretVerifier(cfg.AppAPISecret, cfg.AppAPIKey, logger)
	}
	if err != nil {
		log.Fatalf("Failed to create session verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	draftRepo := postgresReview.NewDraftRepository(repoConfig)
	publishLogRepo := postgresReview.NewPublishLogRepository(repoConfig)
	grantRepo := postgresBilling.NewCreditGrantRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Generation options
	optionsRegistry, err := options.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load generation options: %v", err)
	}
	logger.Info("options registry initialized")

	// External clients
	backendClient := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, logger)
	shopClient := shopify.NewClient(shopify.Config{
		APIVersion:        cfg.ShopAPIVersion,
		AccessToken:       cfg.ShopAccessToken,
		RequestsPerSecond: cfg.ShopRateLimit,
	}, logger)

	// Services
	notices := notify.NewQueue(logger)
	contentAnalyzer := analysis.NewContentAnalyzer()
	editorService := editor.NewService(contentAnalyzer, notices, logger)
	reviewService := review.NewService(
		shopClient,
		backendClient,
		editorService,
		draftRepo,
		publishLogRepo,
		txManager,
		contentAnalyzer,
		optionsRegistry,
		notices,
		logger,
	)
	// Start cleanup goroutine for finished poll streams
	streamRegistry := mstream.NewRegistry()
	go streamRegistry.StartCleanup(ctx)

	batchService := batch.NewService(
		backendClient,
		shopClient,
		optionsRegistry,
		notices,
		streamRegistry,
		batch.PollerConfig{
			Interval:   cfg.PollInterval,
			MaxBackoff: config.MaxPollBackoff,
			Jitter:     config.PollJitter,
		},
		logger,
	)
	defer batchService.Shutdown()
	templateService := template.NewService(backendClient, notices, logger)
	creditsService := credits.NewService(
		backendClient,
		shopClient,
		grantRepo,
		txManager,
		optionsRegistry,
		notices,
		credits.Config{AppURL: cfg.AppURL, TestCharges: cfg.TestCharges},
		logger,
	)

	logger.Info("services initialized")

	// Handlers
	optionsHandler := handler.NewOptionsHandler(optionsRegistry)
	batchHandler := handler.NewBatchHandler(batchService, notices, sse.DefaultConfig(), logger)
	templateHandler := handler.NewTemplateHandler(templateService, logger)
	reviewHandler := handler.NewReviewHandler(reviewService, reviewService, logger)
	editorHandler := handler.NewEditorHandler(editorService, logger)
	creditsHandler := handler.NewCreditsHandler(creditsService, logger)
	noticeHandler := handler.NewNoticeHandler(notices)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.Health)

	// Options
	mux.HandleFunc("GET /api/options", optionsHandler.GetOptions)

	// Catalog listing and selection
	mux.HandleFunc("GET /api/products", batchHandler.ListProducts)
	mux.HandleFunc("GET /api/collections", batchHandler.ListCollections)
	mux.HandleFunc("POST /api/selection", batchHandler.UpdateSelection)

	// Templates
	mux.HandleFunc("GET /api/templates", templateHandler.ListTemplates)
	mux.HandleFunc("POST /api/templates", templateHandler.CreateTemplate)

	// Batch jobs
	mux.HandleFunc("POST /api/batch", batchHandler.SubmitBatch)
	mux.HandleFunc("GET /api/batch", batchHandler.GetStatus)
	mux.HandleFunc("POST /api/batch/stop", batchHandler.StopBatch)
	mux.HandleFunc("GET /api/batch/stream", batchHandler.StreamStatus) // SSE

	// Review screen
	mux.HandleFunc("GET /api/reviews/{productId}", reviewHandler.GetReview)
	mux.HandleFunc("DELETE /api/reviews/{productId}", reviewHandler.CloseReview)
	mux.HandleFunc("POST /api/reviews/{productId}/generate", reviewHandler.Generate)
	mux.HandleFunc("POST /api/reviews/{productId}/publish", reviewHandler.Publish)

	// Editors
	mux.HandleFunc("GET /api/editors/{id}", editorHandler.GetEditor)
	mux.HandleFunc("POST /api/editors/{id}/toggle", editorHandler.Toggle)
	mux.HandleFunc("PUT /api/editors/{id}/raw", editorHandler.SetRaw)
	mux.HandleFunc("PUT /api/editors/{id}/selection", editorHandler.SetSelection)
	mux.HandleFunc("POST /api/editors/{id}/commands", editorHandler.ApplyCommand)
	mux.HandleFunc("POST /api/editors/{id}/images", editorHandler.InsertImage)
	mux.HandleFunc("POST /api/editors/{id}/videos", editorHandler.InsertVideo)

	// Credits
	mux.HandleFunc("GET /api/credits", creditsHandler.GetCredits)
	mux.HandleFunc("GET /api/credits/grants", creditsHandler.ListGrants)
	mux.HandleFunc("POST /api/credits/purchase", creditsHandler.Purchase)
	mux.HandleFunc("POST /api/credits/confirm", creditsHandler.Confirm)

	// Notices
	mux.HandleFunc("GET /api/notices", noticeHandler.DrainNotices)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Request logging → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(jwtVerifier, logger, "/health")(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	// Shut down on SIGINT/SIGTERM
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		logger.Info("server shutting down")
		batchService.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}
