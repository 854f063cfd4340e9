package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/dhyey2075/droply/internal/auth"
	"github.com/dhyey2075/droply/internal/config"
	"github.com/dhyey2075/droply/internal/drive"
	"github.com/dhyey2075/droply/internal/filetypes"
	"github.com/dhyey2075/droply/internal/handler"
	"github.com/dhyey2075/droply/internal/middleware"
	"github.com/dhyey2075/droply/internal/repository/postgres"
	"github.com/dhyey2075/droply/internal/service"
	"github.com/dhyey2075/droply/internal/storage/imagekit"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier for Clerk authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.ClerkJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

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
	itemRepo := postgres.NewItemRepository(repoConfig)
	tokenRepo := postgres.NewDriveTokenRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Remote object store
	store, err := imagekit.NewClient(cfg.ImageKitPublicKey, cfg.ImageKitPrivateKey)
	if err != nil {
		log.Fatalf("Failed to create imagekit client: %v", err)
	}

	// Upload policy registry
	policy, err := filetypes.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load upload policy: %v", err)
	}

	// Create services
	itemService := service.NewItemService(itemRepo, store, txManager, policy, logger)
	googleService := drive.NewGoogleService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.AppURL, tokenRepo, logger)
	onedriveService := drive.NewOneDriveService(cfg.OneDriveClientID, cfg.OneDriveClientSecret, cfg.AppURL, tokenRepo, logger)

	// Create handlers
	itemHandler := handler.NewItemHandler(itemService, store, logger)
	gdriveHandler := handler.NewDriveHandler(googleService, "gdrive", cfg.AppURL, logger)
	onedriveHandler := handler.NewDriveHandler(onedriveService, "onedrive", cfg.AppURL, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", itemHandler.HealthCheck)

	// Item routes
	mux.HandleFunc("GET /api/media", itemHandler.ListMedia)
	mux.HandleFunc("POST /api/upload", itemHandler.RegisterUpload)
	mux.HandleFunc("POST /api/folders/create", itemHandler.CreateFolder)
	mux.HandleFunc("PATCH /api/rename", itemHandler.Rename)
	mux.HandleFunc("DELETE /api/delete-media", itemHandler.DeleteFile)
	mux.HandleFunc("DELETE /api/folders/delete", itemHandler.DeleteFolder)
	mux.HandleFunc("GET /api/imagekit-auth", itemHandler.UploadAuth)

	// Google Drive routes
	mux.HandleFunc("GET /api/gdrive/auth", gdriveHandler.Auth)
	mux.HandleFunc("GET /api/gdrive/callback", gdriveHandler.Callback)
	mux.HandleFunc("GET /api/gdrive/files", gdriveHandler.Files)
	mux.HandleFunc("GET /api/gdrive/status", gdriveHandler.Status)
	mux.HandleFunc("DELETE /api/gdrive/unlink", gdriveHandler.Unlink)

	// OneDrive routes
	mux.HandleFunc("GET /api/onedrive/auth", onedriveHandler.Auth)
	mux.HandleFunc("GET /api/onedrive/callback", onedriveHandler.Callback)
	mux.HandleFunc("GET /api/onedrive/files", onedriveHandler.Files)
	mux.HandleFunc("GET /api/onedrive/status", onedriveHandler.Status)
	mux.HandleFunc("DELETE /api/onedrive/unlink", onedriveHandler.Unlink)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	// OAuth callbacks arrive from the provider redirect without a session
	// header, so they bypass auth; the state parameter carries the user id.
	root = middleware.Auth(jwtVerifier,
		"/health",
		"/api/gdrive/callback",
		"/api/onedrive/callback",
	)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Block until interrupted, then drain in-flight requests.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
