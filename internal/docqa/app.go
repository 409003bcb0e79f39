package docqa

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/kart-io/version"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/docqa/internal/docqa/biz"
	"github.com/kart-io/docqa/internal/docqa/handler"
	"github.com/kart-io/docqa/internal/docqa/router"
	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/pkg/app"
	"github.com/kart-io/docqa/pkg/component/database"
	redisclient "github.com/kart-io/docqa/pkg/component/redis"
	"github.com/kart-io/docqa/pkg/errors"
	"github.com/kart-io/docqa/pkg/llm"
	// Register LLM providers.
	_ "github.com/kart-io/docqa/pkg/llm/gemini"
	_ "github.com/kart-io/docqa/pkg/llm/ollama"
)

const (
	appName        = "docqa"
	appDescription = `DocQA Service

A retrieval-augmented document question answering backend.

This server provides:
  - Document ingestion (txt, md, pdf, docx) with chunking and embedding
  - Semantic search over a user's documents
  - Grounded answer generation with source attribution`
)

// NewApp creates the docqa application.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithShortDescription("Document Q&A service"),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// Run assembles and runs the docqa service with the given options.
func Run(opts *Options) error {
	// 1. Logger
	opts.Log.AddInitialField("service.name", appName)
	opts.Log.AddInitialField("service.version", version.Get().GitVersion)
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Infow("Starting docqa service...", "providers", llm.ListProviders())

	// 2. Database and store layer
	dbClient, err := database.New(opts.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	factory := store.NewStore(dbClient.DB())
	if err := factory.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Infow("Store layer initialized", "driver", string(opts.Database.Driver))

	// 3. Optional Redis for the embedding cache. A broken cache must not
	// keep the service from starting.
	var redisConn *goredis.Client
	var redisClose func()
	if opts.Redis.Enabled {
		redisClient, err := redisclient.New(opts.Redis)
		if err != nil {
			logger.Warnw("Redis unavailable, embedding cache disabled", "error", err.Error())
		} else {
			redisConn = redisClient.Client()
			redisClose = func() { _ = redisClient.Close() }
			logger.Infow("Embedding cache enabled", "addr", opts.Redis.Addr())
		}
	}

	// 4. LLM providers
	embProvider, err := llm.NewEmbeddingProvider(opts.Embedding.Provider, opts.Embedding.ToConfigMap())
	if err != nil {
		return errors.ErrProviderNotConfigured.WithCause(err)
	}
	chatProvider, err := llm.NewChatProvider(opts.Chat.Provider, opts.Chat.ToConfigMap())
	if err != nil {
		return errors.ErrProviderNotConfigured.WithCause(err)
	}
	if redisConn != nil {
		cacheConfig := llm.DefaultEmbeddingCacheConfig()
		cacheConfig.TTL = opts.Redis.CacheTTL
		embProvider = llm.NewCachedEmbeddingProvider(embProvider, redisConn, cacheConfig)
	}
	logger.Infow("LLM providers initialized",
		"embedding", embProvider.Name(),
		"chat", chatProvider.Name(),
	)

	// 5. Business layer
	embedder, err := biz.NewEmbedder(embProvider, opts.RAG.EmbedWorkers, opts.RAG.EmbeddingDim)
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}
	defer embedder.Close()

	userService := biz.NewUserService(factory)
	documentService := biz.NewDocumentService(factory, embedder, &biz.DocumentConfig{
		ChunkSize:      opts.RAG.ChunkSize,
		ChunkOverlap:   opts.RAG.ChunkOverlap,
		EmbeddingModel: opts.Embedding.Model,
	})
	retriever := biz.NewRetriever(factory, embedder)
	queryService := biz.NewQueryService(factory, retriever, biz.NewGenerator(chatProvider), &biz.QueryConfig{
		MaxQueryLength:             opts.RAG.MaxQueryLength,
		AnswerLogLength:            opts.RAG.AnswerLogLength,
		DefaultTopK:                opts.RAG.TopK,
		DefaultSimilarityThreshold: opts.RAG.SimilarityThreshold,
	})

	// 6. HTTP layer
	gin.SetMode(opts.HTTP.Mode)
	engine := gin.New()
	engine.MaxMultipartMemory = opts.HTTP.MaxUploadSize
	router.Register(engine,
		handler.NewUserHandler(userService),
		handler.NewDocumentHandler(documentService, opts.HTTP.MaxUploadSize),
		handler.NewQueryHandler(queryService),
	)

	srv := NewServer(opts.HTTP, engine, opts.ShutdownTimeout)
	srv.OnShutdown(func() {
		if redisClose != nil {
			redisClose()
		}
		if err := factory.Close(); err != nil {
			logger.Warnw("Failed to close database", "error", err.Error())
		}
	})

	logger.Infow("DocQA service is ready", "addr", opts.HTTP.Addr)
	return srv.Run()
}
