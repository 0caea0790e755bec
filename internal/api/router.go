package api

import (
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/investalk/backend/internal/config"
	"github.com/investalk/backend/internal/handlers"
	"github.com/investalk/backend/internal/marketdata"
	"github.com/investalk/backend/internal/middleware"
	"github.com/investalk/backend/internal/services"
	"github.com/investalk/backend/internal/websocket"
)

// SetupRouter configures all routes and returns the router
func SetupRouter(
	db *gorm.DB,
	redisClient *redis.Client,
	wsHub *websocket.Hub,
	cfg *config.Config,
) *mux.Router {
	// Create a new router
	router := mux.NewRouter()

	// Add health check endpoint
	router.HandleFunc("/api/health", HealthHandler).Methods("GET")

	// WebSocket route
	router.HandleFunc("/ws", wsHub.HandleWebSocket)

	// Market data gateway, with snapshot caching when Redis is available
	gateway := marketdata.NewCachedGateway(
		marketdata.NewClient(cfg.MarketData.BaseURL, cfg.MarketData.FetchTimeout),
		redisClient,
		cfg.MarketData.CacheTTL,
	)

	// Create services
	authService := services.NewAuthService(db, cfg.JWT.SecretKey)
	userService := services.NewUserService(db)
	watchlistService := services.NewWatchlistService(db, gateway, cfg.MarketData.FetchTimeout, cfg.MarketData.Concurrency)

	// Create handlers using services
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistService, wsHub)

	// Add public endpoints directly to the root router (no authentication required)
	router.HandleFunc("/api/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/api/login", authHandler.Login).Methods("POST")

	// Create a subrouter for authenticated endpoints
	authRouter := router.PathPrefix("/api").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg.JWT.SecretKey))

	// Register routes
	userHandler.RegisterRoutes(authRouter)
	watchlistHandler.RegisterRoutes(authRouter)

	return router
}
