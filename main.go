package main

import (
	"fmt"
	"os"
	"time"

	"pfa/pkg/config"
	"pfa/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var (
	cfg       config.Config
	appLog    zerolog.Logger
	jwtSecret []byte // loaded from env JWT_SECRET (fallback to dev default)
)

func main() {
	cfg = config.Load()
	appLog = logger.New(cfg.LogLevel, cfg.LogFormat)
	jwtSecret = []byte(cfg.JWTSecret)
	if cfg.UsingDevSecret() {
		appLog.Warn().Msg("JWT_SECRET not set, using development secret")
	}

	// `./pfa migrate` runs AutoMigrate and seeding then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := initDB(true); err != nil {
			appLog.Fatal().Err(err).Msg("migration failed")
		}
		fmt.Println("migration and seeding completed")
		return
	}

	if err := initDB(cfg.DBAutoMigrate); err != nil {
		appLog.Fatal().Err(err).Msg("database init failed")
	}
	svc, err := newReceiptService(cfg, appLog)
	if err != nil {
		appLog.Fatal().Err(err).Msg("receipt service init failed")
	}
	receiptSvc = svc

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(appLog))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.MaxMultipartMemory = int64(cfg.MaxUploadMB) << 20

	setupRoutes(r)

	appLog.Info().Str("addr", cfg.Addr).Str("engine", cfg.ReceiptEngine).Msg("listening")
	if err := r.Run(cfg.Addr); err != nil {
		appLog.Fatal().Err(err).Msg("server stopped")
	}
}

func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func setupRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	authR := r.Group("/auth")
	authR.POST("/register", registerHandler)
	authR.POST("/login", loginHandler)
	authR.POST("/refresh", refreshHandler)
	authR.POST("/revoke", revokeRefreshHandler)

	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/auth/me", meHandler)

	authGroup.GET("/categories", listCategoriesHandler)
	authGroup.POST("/categories", createCategoryHandler)

	authGroup.POST("/transactions", createTransactionHandler)
	authGroup.POST("/transactions/bulk", bulkCreateTransactionsHandler)
	authGroup.GET("/transactions", listTransactionsHandler)
	authGroup.GET("/transactions/export.xlsx", exportTransactionsHandler)
	authGroup.DELETE("/transactions/:id", deleteTransactionHandler)

	authGroup.GET("/summary/category", categorySummaryHandler)
	authGroup.GET("/summary/monthly", monthlySummaryHandler)

	authGroup.POST("/extract/receipt", extractReceiptHandler)
	authGroup.GET("/extract/scans", listScansHandler)
}
