package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/socialblast/backend/internal/config"
	"github.com/socialblast/backend/internal/db"
	"github.com/socialblast/backend/internal/fivesim"
	"github.com/socialblast/backend/internal/goroutine"
	httpHandlers "github.com/socialblast/backend/internal/http/handlers"
	httpRouter "github.com/socialblast/backend/internal/http/router"
	"github.com/socialblast/backend/internal/logger"
	"github.com/socialblast/backend/internal/repository"
	"github.com/socialblast/backend/internal/service"
	"github.com/socialblast/backend/internal/storage"
	"github.com/socialblast/backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	mediaStorage, err := storage.NewMediaStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	fivesimClient := fivesim.NewClient(cfg.FiveSimBaseURL, cfg.FiveSimAPIKey)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	walletRepo := repository.NewWalletRepository(dbConn)
	giftCardRepo := repository.NewGiftCardRepository(dbConn)
	orderRepo := repository.NewOrderRepository(dbConn)
	escrowRepo := repository.NewEscrowRepository(dbConn)
	catalogRepo := repository.NewCatalogRepository(dbConn)
	purchaseRepo := repository.NewPurchaseRepository(dbConn)
	supportRepo := repository.NewSupportRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.SafeGo(hub.Run)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	profileService := service.NewProfileService(userRepo, mediaStorage)
	notificationService := service.NewNotificationService(notificationRepo, hub)
	walletService := service.NewWalletService(walletRepo)
	giftCardService := service.NewGiftCardService(giftCardRepo)
	escrowService := service.NewEscrowService(escrowRepo, giftCardRepo, notificationService)
	orderService := service.NewOrderService(orderRepo)
	purchaseService := service.NewPurchaseService(purchaseRepo, catalogRepo, orderRepo, walletRepo, notificationService)
	phoneService := service.NewPhoneService(fivesimClient, purchaseRepo, orderRepo, walletRepo, notificationService)
	supportService := service.NewSupportService(supportRepo, notificationService)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	profileHandler := httpHandlers.NewProfileHandler(profileService)
	walletHandler := httpHandlers.NewWalletHandler(walletService)
	giftCardHandler := httpHandlers.NewGiftCardHandler(giftCardService, escrowService)
	catalogHandler := httpHandlers.NewCatalogHandler(purchaseService)
	phoneHandler := httpHandlers.NewPhoneHandler(phoneService)
	orderHandler := httpHandlers.NewOrderHandler(orderService)
	supportHandler := httpHandlers.NewSupportHandler(supportService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, profileHandler, walletHandler, giftCardHandler, catalogHandler, phoneHandler, orderHandler, supportHandler, notificationHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
