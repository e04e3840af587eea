package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quizfaucet/internal/adapter"
	"quizfaucet/internal/adapter/ledger"
	"quizfaucet/internal/adapter/oracle"
	"quizfaucet/internal/cache"
	"quizfaucet/internal/config"
	"quizfaucet/internal/database"
	"quizfaucet/internal/domain"
	"quizfaucet/internal/handler"
	"quizfaucet/internal/logger"
	"quizfaucet/internal/middleware"
	"quizfaucet/internal/repository"
	"quizfaucet/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Course material
	slides, err := repository.NewFSSlideRepository(cfg.Slides.Directory)
	if err != nil {
		appLogger.Fatal("Failed to load course material", zap.Error(err))
	}

	// Grading/generation oracle (any OpenAI-compatible endpoint)
	oracleHTTPClient := &http.Client{Timeout: cfg.Oracle.Timeout}
	llm, err := openai.New(
		openai.WithToken(cfg.Oracle.APIKey),
		openai.WithModel(cfg.Oracle.Model),
		openai.WithBaseURL(cfg.Oracle.BaseURL),
		openai.WithHTTPClient(oracleHTTPClient),
	)
	if err != nil {
		appLogger.Fatal("Failed to create oracle client", zap.Error(err))
	}
	llmOracle := oracle.NewLLMOracle(llm, cfg.Oracle.Timeout)
	appLogger.Info("Oracle client initialized", zap.String("model", cfg.Oracle.Model))

	// Faucet ledger
	faucet, err := ledger.NewFaucetClient(cfg.Ledger)
	if err != nil {
		appLogger.Fatal("Failed to connect to faucet ledger", zap.Error(err))
	}
	defer faucet.Close()
	appLogger.Info("Faucet ledger client initialized",
		zap.String("contract", cfg.Ledger.ContractAddress),
		zap.Int64("chain_id", cfg.Ledger.ChainID),
	)

	// Cache is optional: without Redis the service still works, it just
	// regenerates quizzes and re-reads claim status every time.
	var cacheAdapter domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("RedisCacheAdapter initialized")
	} else {
		appLogger.Warn("Redis address not configured, caching disabled")
	}

	// Settlement audit log
	var attempts domain.ClaimAttemptRepository
	if cfg.Audit.SQLitePath != "" {
		db, err := database.NewSQLiteDB(cfg.Audit.SQLitePath)
		if err != nil {
			appLogger.Fatal("Failed to open audit database", zap.Error(err))
		}
		defer db.Close()
		if err := repository.EnsureSchema(context.Background(), db); err != nil {
			appLogger.Fatal("Failed to create audit schema", zap.Error(err))
		}
		attempts = repository.NewSQLXClaimAttemptRepository(db)
		appLogger.Info("Claim attempt audit log initialized", zap.String("path", cfg.Audit.SQLitePath))
	} else {
		appLogger.Warn("Audit database path not configured, claim auditing disabled")
	}

	// Services
	policy := service.NewScoringPolicy(cfg.Scoring)
	quizService := service.NewQuizService(slides, llmOracle, llmOracle, cacheAdapter, policy,
		cfg.Slides.CurrentWeek, cfg.Redis.QuizCacheTTL)
	claimService := service.NewClaimService(faucet, attempts, cacheAdapter, cfg.Redis.StatusCacheTTL)

	// HTTP server
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestLogger())

	quizHandler := handler.NewQuizHandler(quizService)
	claimHandler := handler.NewClaimHandler(claimService)

	api := app.Group("/api")
	api.Get("/quiz/generate", quizHandler.GenerateQuiz)
	api.Post("/quiz/submit", quizHandler.SubmitAnswers)
	api.Get("/claim/status/:userAddress", claimHandler.GetClaimStatus)
	api.Post("/claim/initiate", claimHandler.InitiateClaim)
	api.Get("/claim/history/:userAddress", claimHandler.GetClaimHistory)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		appLogger.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			appLogger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	appLogger.Info("Starting server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		appLogger.Fatal("Server stopped unexpectedly", zap.Error(err))
	}
}
