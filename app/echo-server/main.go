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

	"github.com/Anwarisbased/laravelCR-sub000/app/echo-server/router"
	"github.com/Anwarisbased/laravelCR-sub000/business/achievement"
	"github.com/Anwarisbased/laravelCR-sub000/business/claim"
	"github.com/Anwarisbased/laravelCR-sub000/business/command"
	"github.com/Anwarisbased/laravelCR-sub000/business/ledger"
	"github.com/Anwarisbased/laravelCR-sub000/business/rank"
	"github.com/Anwarisbased/laravelCR-sub000/business/referral"
	"github.com/Anwarisbased/laravelCR-sub000/business/rules"
	"github.com/Anwarisbased/laravelCR-sub000/business/snapshot"
	userService "github.com/Anwarisbased/laravelCR-sub000/business/user"
	"github.com/Anwarisbased/laravelCR-sub000/internal/middleware"
	"github.com/Anwarisbased/laravelCR-sub000/internal/queue"
	"github.com/Anwarisbased/laravelCR-sub000/internal/repository/notification"
	psqlRepo "github.com/Anwarisbased/laravelCR-sub000/internal/repository/postgres"
	redisRepo "github.com/Anwarisbased/laravelCR-sub000/internal/repository/redis"
	"github.com/Anwarisbased/laravelCR-sub000/internal/rest"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/config"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/database"
	redisdb "github.com/Anwarisbased/laravelCR-sub000/pkg/database/redis"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/eventbus"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/metrics"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Loyalty Rewards API", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redisdb.CloseRedisClient(redisClient)

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	actionLogRepo := psqlRepo.NewActionLogRepository(db)
	rankRepo := psqlRepo.NewRankRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	orderRepo := psqlRepo.NewOrderRepository(db)
	achievementRepo := psqlRepo.NewAchievementRepository(db)
	progressRepo := psqlRepo.NewUserAchievementRepository(db)
	rewardCodeRepo := psqlRepo.NewRewardCodeRepository(db)
	referralRepo := psqlRepo.NewReferralRepository(db)

	// Definition caches sit in front of the rarely changing tables.
	cacheTTL := time.Duration(cfg.Loyalty.DefinitionCacheTTL) * time.Second
	rankCache := redisRepo.NewRankCache(redisClient, rankRepo, cacheTTL)
	achievementCache := redisRepo.NewAchievementCache(redisClient, achievementRepo, cacheTTL)
	productCache := redisRepo.NewProductCache(redisClient, productRepo, cacheTTL)

	// Init event bus and queue
	bus := eventbus.New()
	jobQueue := queue.New(redisClient)

	notifier := notification.NewNotifier(mailjetEmail, userRepo)

	// Init service
	snapshotBuilder := snapshot.NewBuilder(userRepo, actionLogRepo, productCache, rankCache)
	rankService := rank.NewService(rankCache, userRepo, snapshotBuilder, bus)
	ledgerService := ledger.NewService(userRepo, orderRepo, actionLogRepo, productCache, rankService, bus)
	achievementService := achievement.NewService(
		achievementCache, progressRepo, rules.NewEngine(), jobQueue, ledgerService, actionLogRepo, notifier,
	)
	claimService := claim.NewService(
		rewardCodeRepo, productCache, snapshotBuilder, bus, cfg.App.AppClaimTokenKey,
	)
	referralService := referral.NewService(
		referralRepo, userRepo, ledgerService, actionLogRepo, bus, cfg.Loyalty.ReferralBonusPoints,
	)
	accountService := userService.NewUserService(userRepo, validate, referralService)

	// Wire the event cascade
	registerEventListeners(bus, cfg, ledgerService, rankService, achievementService, referralService, notifier, rankCache, actionLogRepo)

	// Command dispatcher
	dispatcher := command.NewDispatcher()
	command.RegisterBindings(dispatcher, ledgerService, claimService)

	// Queue worker for achievement reward grants
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	worker := queue.NewWorker(jobQueue)
	worker.Register(achievement.JobGrantAchievementReward, func(ctx context.Context, payload map[string]any) error {
		userID, ok := payload["user_id"].(float64)
		if !ok {
			return fmt.Errorf("job payload missing user_id")
		}
		key, ok := payload["achievement_key"].(string)
		if !ok {
			return fmt.Errorf("job payload missing achievement_key")
		}
		return achievementService.GrantQueuedReward(ctx, uint(userID), key)
	})
	go worker.Run(workerCtx)

	// Init handler
	userHandler := rest.NewUserHandler(accountService)
	scanHandler := rest.NewScanHandler(dispatcher, claimService)
	pointsHandler := rest.NewPointsHandler(dispatcher, productRepo)
	achievementHandler := rest.NewAchievementHandler(achievementRepo, progressRepo)
	historyHandler := rest.NewHistoryHandler(actionLogRepo, orderRepo)
	adminHandler := rest.NewAdminHandler(
		rankRepo, achievementRepo, productRepo, rewardCodeRepo,
		rankCache, achievementCache, productCache,
	)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler)
	router.SetupScanRoutes(api, scanHandler)
	router.SetupPointsRoutes(api, pointsHandler)
	router.SetupAchievementRoutes(api, achievementHandler)
	router.SetupHistoryRoutes(api, historyHandler)
	router.SetupAdminRoutes(api, adminHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
