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

	"github.com/platefinder/backend/internal/adapters/cache"
	"github.com/platefinder/backend/internal/adapters/database"
	"github.com/platefinder/backend/internal/adapters/events"
	"github.com/platefinder/backend/internal/adapters/jobstore"
	"github.com/platefinder/backend/internal/adapters/providers/classifier"
	"github.com/platefinder/backend/internal/adapters/providers/places"
	"github.com/platefinder/backend/internal/adapters/search"
	"github.com/platefinder/backend/internal/api/handlers"
	"github.com/platefinder/backend/internal/api/middleware"
	"github.com/platefinder/backend/internal/api/routes"
	"github.com/platefinder/backend/internal/application/services"
	"github.com/platefinder/backend/internal/domain/providers"
	"github.com/platefinder/backend/internal/infrastructure/clients/postgres"
	"github.com/platefinder/backend/internal/infrastructure/clients/redis"
	"github.com/platefinder/backend/internal/infrastructure/clients/typesense"
	"github.com/platefinder/backend/internal/infrastructure/observability"
	"github.com/platefinder/backend/pkg/config"
)

func main() {

	// Load configuration

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client (required: jobs and events live there)
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize Redis client: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis client initialized successfully")

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Fatalf("Failed to initialize Typesense client: %v", err)
	}
	log.Println("Typesense client initialized successfully")

	// Initialize adapters

	candidateIndex := search.NewTypesenseAdapter(typesenseClient)
	if err := candidateIndex.InitSchema(context.Background()); err != nil {
		log.Printf("Warning: Failed to init Typesense schema: %v", err)
	}

	cacheProvider := cache.NewRedisAdapter(redisClient)
	jobStore := jobstore.NewRedisJobStore(redisClient)

	var eventBus providers.EventBus = events.NewRedisEventBus(redisClient)
	log.Println("Event bus initialized successfully")

	placesProvider, err := places.NewProvider(cfg.Places)
	if err != nil {
		log.Fatalf("Failed to initialize places provider: %v", err)
	}
	log.Printf("Places provider initialized: %s", cfg.Places.Provider)

	queryClassifier, err := classifier.NewClassifier(&cfg.OpenAI)
	if err != nil {
		log.Fatalf("Failed to initialize query classifier: %v", err)
	}
	if cfg.OpenAI.APIKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set; using heuristic classifier")
	}

	// Initialize services

	analyticsAdapter := database.NewSearchAnalyticsAdapter(pgClient)
	analyticsService := services.NewSearchAnalyticsService(analyticsAdapter)

	orchestrator := services.NewSearchOrchestrator(services.OrchestratorDeps{
		Jobs:       jobStore,
		Classifier: queryClassifier,
		Places:     placesProvider,
		Candidates: candidateIndex,
		Cache:      cacheProvider,
		Bus:        eventBus,
		Analytics:  analyticsService,
		Flags:      services.NewFeatureFlags(),
	}, cfg.Pipeline)

	// Initialize handlers

	searchHandler := handlers.NewSearchHandler(orchestrator, analyticsService)

	// Initialize cache middleware
	cacheMiddleware := middleware.NewCacheMiddleware(cacheProvider)

	// Set up router. SSE streaming is served by the dedicated sse binary;
	// this server's write timeout is too short for long-lived streams.
	router := routes.NewRouter(
		searchHandler,
		nil,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Close event bus
	if err := eventBus.Close(); err != nil {
		log.Printf("Error closing event bus: %v", err)
	}

	log.Println("Server stopped")
}
