package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"riddlebot/internal/api"
	"riddlebot/internal/bot"
	"riddlebot/internal/middleware"
	"riddlebot/internal/repository"
	"riddlebot/internal/service"
	"riddlebot/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	ctx := context.Background()
	if err := repo.InitSchema(ctx); err != nil {
		zapLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Telegram", zap.Error(err))
	}
	botAPI.Debug = cfg.Telegram.Debug

	adapter := bot.NewAdapter(botAPI)

	lifecycleService := service.NewLifecycleService(repo, adapter, cfg.Game)
	scoreService := service.NewScoreService(repo, repo)
	matcherService := service.NewMatcherService(
		repo, repo, repo, adapter, lifecycleService, service.NewWrongAnswerCache())

	wizard := bot.NewWizard(lifecycleService, botAPI)
	tgBot := bot.New(botAPI, adapter, matcherService, scoreService, repo, wizard)
	go tgBot.Run(ctx)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
	}
	config.AllowHeaders = []string{"*"}
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewStatsRoutes(a, scoreService)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
