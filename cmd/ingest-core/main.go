package main

// @title           Ingest Core API
// @version         1.0
// @description     Document ingestion API. Ingest Core splits documents into chunks, maps each chunk onto existing work items, and turns the results into draft suggestions for human confirmation.

// @contact.name   Custodia Labs
// @contact.url    https://github.com/custodia-labs/ingest-core/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/ingest-core/internal/adapters/driven/ai"
	"github.com/custodia-labs/ingest-core/internal/adapters/driven/auth"
	"github.com/custodia-labs/ingest-core/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/ingest-core/internal/adapters/driven/redis"
	"github.com/custodia-labs/ingest-core/internal/adapters/driving/http"
	"github.com/custodia-labs/ingest-core/internal/config"
	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
	"github.com/custodia-labs/ingest-core/internal/core/services"
	"github.com/custodia-labs/ingest-core/internal/postprocessors"
	"github.com/custodia-labs/ingest-core/internal/runtime"
)

var version = "dev"

func main() {
	log.Printf("ingest-core %s starting", version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := newLogger(cfg.LogFormat)
	slog.SetDefault(logger)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Initialize PostgreSQL =====
	log.Println("Connecting to PostgreSQL...")
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
		RetryInterval:   cfg.Database.ConnectRetry,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize schema (idempotent)
	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("PostgreSQL connected and schema initialized")

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		log.Println("Connecting to Redis...")
		redisClient, err = redisadapter.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Confirmation lock =====
	var (
		distributedLock driven.DistributedLock
		lockPinger      http.Pinger
	)
	switch cfg.Pipeline.LockBackend {
	case config.LockBackendRedis:
		l := redisadapter.NewLock(redisClient)
		distributedLock, lockPinger = l, l
		log.Println("Using Redis confirmation lock")
	case config.LockBackendPostgres:
		l := postgres.NewAdvisoryLock(db)
		distributedLock, lockPinger = l, l
		log.Println("Using PostgreSQL advisory lock")
	default:
		log.Println("Confirmation lock disabled")
	}

	// ===== Stores =====
	suggestionStore := postgres.NewSuggestionStore(db)
	artifactStore := postgres.NewArtifactStore(db)

	var vectorStore driven.VectorStore
	if cfg.Pipeline.VectorBackend == domain.VectorBackendPGVector {
		vs := postgres.NewVectorStore(db)
		if err := vs.HealthCheck(ctx); err != nil {
			log.Fatalf("pgvector unavailable: %v", err)
		}
		vectorStore = vs
		log.Println("Using pgvector for similarity search")
	}

	// ===== AI services =====
	runtimeConfig := domain.NewRuntimeConfig(cfg.Pipeline.VectorBackend, cfg.Pipeline.LockBackend)
	runtimeServices := runtime.NewServices(runtimeConfig)
	defer runtimeServices.Close()

	aiFactory := ai.NewFactory()
	configureAI(ctx, aiFactory, runtimeServices, cfg.AI)

	log.Printf("Runtime config: vector_backend=%s, lock_backend=%s, embedding=%t, classifier=%t, retrieval_mode=%s",
		runtimeConfig.VectorBackend,
		runtimeConfig.LockBackend,
		runtimeConfig.EmbeddingAvailable(),
		runtimeConfig.ClassifierAvailable(),
		runtimeConfig.EffectiveRetrievalMode())

	// ===== Services (core business logic) =====
	chunker, err := postprocessors.NewChunker(cfg.Pipeline.Chunk)
	if err != nil {
		log.Fatalf("Invalid chunk configuration: %v", err)
	}

	index := services.NewEmbeddingIndex(services.EmbeddingIndexConfig{
		VectorStore:     vectorStore,
		ArtifactStore:   artifactStore,
		SuggestionStore: suggestionStore,
		Services:        runtimeServices,
		EmbedTimeout:    cfg.Pipeline.EmbedTimeout,
		Logger:          logger,
	})

	retriever := services.NewRetriever(services.RetrieverConfig{
		Index:           index,
		SuggestionStore: suggestionStore,
		Runtime:         runtimeConfig,
		TopK:            cfg.Pipeline.CandidateTopK,
		Threshold:       cfg.Pipeline.SimilarityThreshold,
		Logger:          logger,
	})

	engine := services.NewMappingEngine(services.MappingEngineConfig{
		Services:        runtimeServices,
		ConfidenceFloor: cfg.Pipeline.ConfidenceFloor,
		Timeout:         cfg.Pipeline.ClassifyTimeout,
		Logger:          logger,
	})

	analysis, err := services.NewAnalysisPipeline(services.AnalysisPipelineConfig{
		Chunker:         chunker,
		Retriever:       retriever,
		Engine:          engine,
		SuggestionStore: suggestionStore,
		ArtifactStore:   artifactStore,
		Concurrency:     cfg.Pipeline.Concurrency,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("Failed to create analysis pipeline: %v", err)
	}

	confirmation := services.NewConfirmationOrchestrator(services.ConfirmationOrchestratorConfig{
		SuggestionStore: suggestionStore,
		ArtifactStore:   artifactStore,
		Index:           index,
		Lock:            distributedLock,
		LockTTL:         cfg.Pipeline.LockTTL,
		Logger:          logger,
	})

	suggestionService := services.NewSuggestionService(suggestionStore, index)
	knowledgeService := services.NewKnowledgeService(index, cfg.Pipeline.SimilarityThreshold)

	// ===== HTTP API =====
	authAdapter := auth.NewAdapterWithIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	server := http.NewServer(
		http.Config{
			Host:           cfg.Server.Host,
			Port:           cfg.Server.Port,
			Version:        version,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AnalyzeTimeout: cfg.Server.AnalyzeTimeout,
		},
		logger,
		analysis,
		confirmation,
		suggestionService,
		knowledgeService,
		authAdapter,
		db,
		lockPinger,
	)

	log.Printf("API server starting on %s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}

// configureAI builds and health-checks the embedding service and classifier.
// A provider that fails its check is left unset and the pipeline degrades.
func configureAI(ctx context.Context, factory *ai.Factory, svcs *runtime.Services, cfg config.AIConfig) {
	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	embedding, err := factory.CreateEmbeddingService(&cfg.Embedding)
	if err != nil {
		log.Printf("Warning: embedding service not created: %v", err)
	} else if err := svcs.ValidateAndSetEmbedding(checkCtx, embedding); err != nil {
		log.Printf("Warning: embedding health check failed: %v (falling back to heuristic retrieval)", err)
	} else if embedding != nil {
		log.Printf("Embedding service ready: %s (%d dims)", embedding.Model(), embedding.Dimensions())
	}

	classifier, err := factory.CreateClassifier(&cfg.Classifier)
	if err != nil {
		log.Printf("Warning: classifier not created: %v", err)
	} else if err := svcs.ValidateAndSetClassifier(checkCtx, classifier); err != nil {
		log.Printf("Warning: classifier ping failed: %v (chunks will be degraded)", err)
	} else if classifier != nil {
		log.Printf("Classifier ready: %s", classifier.Model())
	}
}

func newLogger(format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
