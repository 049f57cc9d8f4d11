// Package server wires the application together and registers routes.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/quickfund/quickfund-api/internal/auth"
	"github.com/quickfund/quickfund-api/internal/config"
	"github.com/quickfund/quickfund-api/internal/dispatch"
	"github.com/quickfund/quickfund-api/internal/funding"
	"github.com/quickfund/quickfund-api/internal/handlers"
	"github.com/quickfund/quickfund-api/internal/logger"
	"github.com/quickfund/quickfund-api/internal/middleware"
	"github.com/quickfund/quickfund-api/internal/names"
	"github.com/quickfund/quickfund-api/internal/session"
	"github.com/quickfund/quickfund-api/internal/spend"
	"github.com/quickfund/quickfund-api/internal/wallet"
	"github.com/quickfund/quickfund-api/internal/wallet/simulated"
)

// Handler Definitions
var (
	walletHandler     *handlers.WalletHandler
	proposalHandler   *handlers.ProposalHandler
	donationHandler   *handlers.DonationHandler
	permissionHandler *handlers.PermissionHandler

	rpcProvider *wallet.RPCProvider
	pool        *pgxpool.Pool
)

// InitializeHandlers builds the wallet provider, repository, and domain
// services, then the handlers over them.
func InitializeHandlers(ctx context.Context, cfg *config.Config) error {
	var provider wallet.Provider
	switch cfg.ProviderMode {
	case config.ProviderSimulated:
		sim, err := simulated.New()
		if err != nil {
			return err
		}
		provider = sim
		logger.Info("Using simulated wallet provider")
	case config.ProviderRPC:
		rpc, err := wallet.DialRPC(ctx, cfg.WalletRPCURL)
		if err != nil {
			return err
		}
		rpcProvider = rpc
		provider = rpc
	}

	var repo funding.Repository
	switch cfg.RepositoryMode {
	case config.RepositoryMemory:
		repo = funding.NewMemoryRepository()
	case config.RepositoryPostgres:
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		poolConfig.MaxConns = 20
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = time.Hour
		poolConfig.MaxConnIdleTime = time.Minute * 30

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		repo = funding.NewPostgresRepository(pool)
	}

	permissions := spend.NewClient(provider, cfg.ChainID, spend.NewStore())
	dispatcher := dispatch.New(provider, cfg.ChainID)
	resolver := names.NewClient(cfg.NameServiceURL)
	sessionManager := session.NewManager(provider, resolver, permissions, session.NewMemoryStore())
	orchestrator := funding.NewOrchestrator(repo, permissions, dispatcher)

	commonServices := handlers.NewCommonServices(
		repo, orchestrator, permissions, dispatcher, sessionManager, resolver, cfg.JWTSecret)

	walletHandler = handlers.NewWalletHandler(commonServices)
	proposalHandler = handlers.NewProposalHandler(commonServices)
	donationHandler = handlers.NewDonationHandler(commonServices)
	permissionHandler = handlers.NewPermissionHandler(commonServices)

	return nil
}

// InitializeRoutes registers middleware and the API routes.
func InitializeRoutes(router *gin.Engine, cfg *config.Config) {
	router.Use(configureCORS(cfg))
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.NewRateLimiter(100, 200).Middleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes
		v1.POST("/wallet/connect", walletHandler.Connect)
		v1.GET("/wallet/session", walletHandler.GetSession)
		v1.GET("/proposals", proposalHandler.ListProposals)
		v1.GET("/proposals/:proposal_id", proposalHandler.GetProposal)
		v1.GET("/proposals/:proposal_id/donations", proposalHandler.ListProposalDonations)
		v1.GET("/donations", donationHandler.ListDonations)

		// Protected routes (session token required)
		protected := v1.Group("/")
		protected.Use(auth.EnsureValidSession(cfg.JWTSecret))
		{
			protected.POST("/wallet/disconnect", walletHandler.Disconnect)

			protected.POST("/proposals", proposalHandler.CreateProposal)
			protected.POST("/proposals/:proposal_id/donations", donationHandler.Donate)

			permissions := protected.Group("/permissions")
			{
				permissions.GET("", permissionHandler.ListPermissions)
				permissions.POST("", permissionHandler.RequestPermission)
				permissions.GET("/:permission_hash/status", permissionHandler.GetPermissionStatus)
				permissions.DELETE("/:permission_hash", permissionHandler.RevokePermission)
			}
		}
	}
}

// Shutdown releases server-held resources.
func Shutdown() {
	if rpcProvider != nil {
		rpcProvider.Close()
	}
	if pool != nil {
		pool.Close()
	}
}

// configureCORS returns a configured CORS middleware
func configureCORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	if len(cfg.CORSAllowedOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Type", "Accept", "Authorization", middleware.CorrelationIDHeader,
	}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour

	if logger.Log != nil {
		logger.Log.Debug("CORS configured",
			zap.String("origins", strings.Join(corsConfig.AllowOrigins, ",")))
	}

	return cors.New(corsConfig)
}
