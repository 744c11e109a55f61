package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/socialblast/backend/internal/config"
	"github.com/socialblast/backend/internal/http/handlers"
	"github.com/socialblast/backend/internal/http/middleware"
	"github.com/socialblast/backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	walletHandler *handlers.WalletHandler,
	giftCardHandler *handlers.GiftCardHandler,
	catalogHandler *handlers.CatalogHandler,
	phoneHandler *handlers.PhoneHandler,
	orderHandler *handlers.OrderHandler,
	supportHandler *handlers.SupportHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.GET("/sessions", authHandler.ListSessions)
		protectedAuth.DELETE("/sessions/:id", middleware.UUIDValidator("id"), authHandler.DeleteSession)
	}

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)
	api.GET("/giftcards", giftCardHandler.List)
	api.GET("/esims", catalogHandler.ListESims)
	api.GET("/smm/services", catalogHandler.ListSMMServices)
	api.GET("/phones/prices", phoneHandler.Prices)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", profileHandler.Get)
		protected.PUT("/profile", profileHandler.Update)
		protected.POST("/profile/avatar", profileHandler.UploadAvatar)

		protected.GET("/wallet/balance", walletHandler.GetBalance)
		protected.POST("/wallet/deposit", walletHandler.Deposit)
		protected.POST("/wallet/withdraw", walletHandler.Withdraw)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)

		protected.POST("/giftcards", giftCardHandler.Create)
		protected.GET("/giftcards/my", giftCardHandler.MyListings)
		protected.GET("/giftcards/:id", middleware.UUIDValidator("id"), giftCardHandler.Get)
		protected.POST("/giftcards/:id/buy", middleware.UUIDValidator("id"), giftCardHandler.Buy)
		protected.GET("/giftcards/:id/code", middleware.UUIDValidator("id"), giftCardHandler.RevealCode)
		protected.POST("/giftcards/orders/:id/confirm", middleware.UUIDValidator("id"), giftCardHandler.ConfirmSale)
		protected.POST("/giftcards/orders/:id/dispute", middleware.UUIDValidator("id"), giftCardHandler.OpenDispute)

		protected.POST("/esims/:id/buy", middleware.UUIDValidator("id"), catalogHandler.BuyESim)
		protected.POST("/smm/orders", catalogHandler.OrderSMM)

		protected.POST("/phones/rent", phoneHandler.Rent)
		protected.GET("/phones/:id", middleware.UUIDValidator("id"), phoneHandler.Check)
		protected.POST("/phones/:id/finish", middleware.UUIDValidator("id"), phoneHandler.Finish)
		protected.POST("/phones/:id/cancel", middleware.UUIDValidator("id"), phoneHandler.Cancel)

		protected.GET("/orders", orderHandler.List)
		protected.GET("/orders/:id", middleware.UUIDValidator("id"), orderHandler.Get)

		protected.GET("/notifications", notificationHandler.List)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkRead)

		protected.POST("/support/tickets", supportHandler.CreateTicket)
		protected.GET("/support/tickets", supportHandler.ListTickets)
		protected.GET("/support/tickets/:id", middleware.UUIDValidator("id"), supportHandler.GetThread)
		protected.POST("/support/tickets/:id/replies", middleware.UUIDValidator("id"), supportHandler.Reply)
		protected.POST("/support/tickets/:id/close", middleware.UUIDValidator("id"), supportHandler.CloseTicket)
	}

	// Админские маршруты
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.AdminOnly())
	{
		admin.POST("/disputes/:id/resolve", middleware.UUIDValidator("id"), giftCardHandler.ResolveDispute)
		admin.POST("/smm/orders/:id/finalize", middleware.UUIDValidator("id"), catalogHandler.FinalizeSMM)
		admin.GET("/support/tickets", supportHandler.ListAllTickets)
		admin.GET("/phones/activations", phoneHandler.Activations)
		admin.GET("/phones/balance", phoneHandler.ProviderBalance)
	}

	return r
}
