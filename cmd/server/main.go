package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/voxdocs/voxdocs/adapters/embedding"
	"github.com/voxdocs/voxdocs/adapters/llm"
	"github.com/voxdocs/voxdocs/adapters/memory"
	"github.com/voxdocs/voxdocs/adapters/mongo"
	"github.com/voxdocs/voxdocs/adapters/stt"
	"github.com/voxdocs/voxdocs/adapters/tts"
	"github.com/voxdocs/voxdocs/adapters/vectorstore"
	"github.com/voxdocs/voxdocs/domain/repositories"
	"github.com/voxdocs/voxdocs/internal/api"
	"github.com/voxdocs/voxdocs/internal/auth"
	"github.com/voxdocs/voxdocs/internal/config"
	"github.com/voxdocs/voxdocs/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Retrieval stack
	embedder, err := embedding.NewOpenAIEmbedder(embedding.NewOpenAIConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize embedder", zap.Error(err))
	}

	store, err := vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
		DatasetPath: cfg.DatasetPath(),
		Host:        cfg.QdrantHost,
		Port:        cfg.QdrantPort,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to vector index", zap.Error(err))
	}
	defer store.Close()

	var answerer repositories.Answerer
	if cfg.LLMProvider == "gemini" {
		answerer, err = llm.NewGeminiAnswerer(logger)
	} else {
		answerer, err = llm.NewOpenAIAnswerer(llm.NewOpenAIConfigFromEnv(), logger)
	}
	if err != nil {
		logger.Fatal("Failed to initialize language model", zap.Error(err))
	}

	// Voice stack. Both sides are optional and disable independently.
	var speechToText repositories.SpeechToText
	if os.Getenv("STT_PROVIDER") == "google" {
		speechToText = stt.NewGoogleSTT(logger)
	} else if whisper, err := stt.NewWhisperSTT(stt.NewWhisperConfigFromEnv(), logger); err != nil {
		logger.Warn("Transcription disabled", zap.Error(err))
	} else {
		speechToText = whisper
	}

	var textToSpeech repositories.TextToSpeech
	if !cfg.VoiceEnabled() {
		logger.Warn("Speech synthesis disabled: SPEECHIFY_API_KEY is not set")
	} else if speechify, err := tts.NewSpeechifyTTS(tts.NewSpeechifyConfigFromEnv(), logger); err != nil {
		logger.Warn("Speech synthesis disabled", zap.Error(err))
	} else {
		textToSpeech = speechify
	}

	// Conversation store: MongoDB when configured, in-process otherwise.
	var conversations repositories.ConversationRepository
	if cfg.MongoURI != "" {
		client, err := mongo.NewClient(cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer client.Close(context.Background())
		conversations = mongo.NewConversationRepository(client.Database)
	} else {
		logger.Info("Using in-memory conversation store")
		conversations = memory.NewConversationRepository()
	}

	// Usecase services
	answerService := usecase.NewAnswerService(embedder, store, answerer, logger)
	conversationService := usecase.NewConversationService(conversations, answerService, speechToText, textToSpeech, logger)

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		logger.Warn("JWT_SECRET is not set, using an ephemeral secret; sessions will not survive restarts")
		jwtSecret = time.Now().Format(time.RFC3339Nano)
	}
	tokens, err := auth.NewTokenManager(jwtSecret)
	if err != nil {
		logger.Fatal("Failed to initialize token manager", zap.Error(err))
	}

	// Initialize API routes
	server := api.NewServer(conversationService, tokens, logger)
	server.InitRoutes(e)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
