package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ashwinbm/docquiz/internal/api"
	"github.com/ashwinbm/docquiz/internal/config"
	"github.com/ashwinbm/docquiz/internal/llm"
	"github.com/ashwinbm/docquiz/internal/repository"
	"github.com/ashwinbm/docquiz/internal/service"
	"github.com/ashwinbm/docquiz/internal/vectorstore"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize repositories: SQLite when a path is configured, otherwise
	// in-memory only
	var sessionRepo repository.SessionRepository
	var quizRepo repository.QuizRepository
	if cfg.Database.Path != "" {
		db, err := repository.NewDB(cfg.Database.Path)
		if err != nil {
			logger.Fatal("Failed to initialize database", zap.Error(err))
		}
		defer db.Close()
		sessionRepo = repository.NewSessionRepository(db)
		quizRepo = repository.NewQuizRepository(db)
	} else {
		memQuizzes := repository.NewMemoryQuizRepository()
		sessionRepo = repository.NewMemorySessionRepository(memQuizzes)
		quizRepo = memQuizzes
	}

	// Initialize the LLM client and the vector index
	llmClient := llm.New(cfg.LLM)

	index, err := vectorstore.NewIndex(cfg.Qdrant, cfg.Ingest, llmClient, cfg.LLM.EmbeddingDim, logger)
	if err != nil {
		logger.Fatal("Failed to connect to vector store", zap.Error(err))
	}
	defer index.Close()

	// Initialize services
	ingestService := service.NewIngestService(cfg, sessionRepo, index, nil, logger)
	chatService := service.NewChatService(cfg, sessionRepo, index, llmClient, logger)
	quizService := service.NewQuizService(cfg, sessionRepo, quizRepo, index, llmClient, logger)

	// Setup router
	router := api.SetupRouter(ingestService, chatService, quizService, logger, api.RouterConfig{
		AllowOrigins: cfg.CORS.AllowOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting docquiz server",
			zap.String("address", cfg.Address()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
