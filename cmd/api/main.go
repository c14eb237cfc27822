package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docbase/internal/chunk"
	"docbase/internal/config"
	"docbase/internal/embedding"
	"docbase/internal/extract"
	"docbase/internal/http"
	"docbase/internal/pipeline"
	"docbase/internal/scheduler"
	"docbase/internal/search"
	"docbase/internal/service"
	"docbase/internal/storage"
	"docbase/internal/upload"
	"docbase/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize the metadata database
	metaDB, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = metaDB.Close()
	}()

	if err := storage.Migrate(metaDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Metadata database initialized", "path", cfg.DBPath)

	// Initialize the vector database
	vecDB, err := vectorstore.Open(cfg.VectorDBPath)
	if err != nil {
		log.Fatalf("Failed to open vector database: %v", err)
	}
	defer func() {
		_ = vecDB.Close()
	}()
	slog.Info("Vector database initialized", "path", cfg.VectorDBPath)

	// Create repository instances
	collectionRepo := storage.NewCollectionRepo(metaDB)
	fileRepo := storage.NewFileRepo(metaDB)
	registry := vectorstore.NewRegistry(vecDB, cfg.TableCacheSize)
	documentRepo := vectorstore.NewDocumentRepo(vecDB, registry)

	// Upload store for raw file content
	uploads, err := upload.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload store: %v", err)
	}
	slog.Info("Upload store initialized", "dir", cfg.UploadDir)

	// Embedding client factory. Providers without credentials stay
	// unavailable until configured.
	factory := embedding.NewFactory(embedding.Credentials{
		GoogleAPIKey:    cfg.GoogleAPIKey,
		GoogleBaseURL:   cfg.GoogleBaseURL,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIBaseURL:   cfg.OpenAIBaseURL,
		AzureAPIKey:     cfg.AzureAPIKey,
		AzureEndpoint:   cfg.AzureEndpoint,
		AzureAPIVersion: cfg.AzureAPIVersion,
	})

	// Ingestion pipeline
	splitter, err := chunk.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("Failed to configure chunking: %v", err)
	}
	converter := extract.NewFileConverter()

	pool := scheduler.NewPool(cfg.JobWorkers, cfg.JobQueueSize, logger)
	reconciler := pipeline.NewReconciler(fileRepo, documentRepo)
	ingestor := pipeline.NewIngestor(fileRepo, documentRepo, converter, splitter, pool)
	dispatcher := pipeline.NewDispatcher(fileRepo, collectionRepo, documentRepo, factory, pool, reconciler)
	pipeline.RegisterJobs(pool, ingestor, dispatcher)

	sweeper := service.NewSweeper(collectionRepo, registry)
	pool.Register(pipeline.JobSweepOrphans, func(ctx context.Context, _ scheduler.Args) error {
		dropped, err := sweeper.SweepOrphanTables(ctx)
		if err != nil {
			return err
		}
		if len(dropped) > 0 {
			slog.InfoContext(ctx, "Dropped orphan vector tables", "tables", dropped)
		}
		return nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool.Start(ctx)
	defer pool.Stop()
	slog.Info("Job pool started", "workers", cfg.JobWorkers, "queue_size", cfg.JobQueueSize)

	if cfg.SweepInterval > 0 {
		pool.Every(ctx, time.Duration(cfg.SweepInterval)*time.Minute, pipeline.JobSweepOrphans, nil)
	}

	// Services
	collectionService := service.NewCollectionService(collectionRepo, fileRepo, documentRepo, registry, uploads)
	fileService := service.NewFileService(collectionRepo, fileRepo, documentRepo, uploads, pool)
	searchEngine := search.NewEngine(collectionRepo, documentRepo, factory)

	// Create router with dependencies
	deps := &http.Deps{
		Collections:      collectionService,
		Files:            fileService,
		SearchEngine:     searchEngine,
		EmbeddingFactory: factory,
		MetaDB:           metaDB,
		VectorDB:         vecDB,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	srv := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed to start: %v", err)
	}
}
