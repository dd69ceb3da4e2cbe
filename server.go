package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/vouchers_backend/config"
	"github.com/mmdatafocus/vouchers_backend/handlers"
	"github.com/mmdatafocus/vouchers_backend/middlewares"
	"github.com/mmdatafocus/vouchers_backend/migration"
	"github.com/mmdatafocus/vouchers_backend/models"
)

const defaultPort = "8080"

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the startup probe passes. Until the
	// document store is ready, app endpoints return 503.
	r := gin.New()
	r.Use(requestIDMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetTargetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production require an explicit allowlist; allow all elsewhere.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	// Handlers read the shared store handle lazily; it is nil until the
	// readiness gate above stops returning 503.
	store := func() *models.Store { return models.NewStore(config.GetTargetDB()) }

	authHandler := func() *handlers.AuthHandler {
		return &handlers.AuthHandler{Store: store(), Logger: logger}
	}
	r.POST("/auth/login", func(c *gin.Context) { authHandler().Login(c) })

	authed := r.Group("/", middlewares.Auth())
	authed.GET("/auth/me", func(c *gin.Context) { authHandler().Me(c) })
	authed.POST("/user/user-create", func(c *gin.Context) {
		(&handlers.UserHandler{Store: store(), Logger: logger}).Create(c)
	})

	voucherHandler := func() *handlers.VoucherHandler {
		return &handlers.VoucherHandler{Store: store(), Logger: logger}
	}
	authed.GET("/voucher/voucher-list", func(c *gin.Context) { voucherHandler().List(c) })
	authed.GET("/voucher/voucher-detail/:id", func(c *gin.Context) { voucherHandler().Detail(c) })
	authed.POST("/voucher/voucher-create", func(c *gin.Context) { voucherHandler().Create(c) })

	authed.GET("/dashboard", func(c *gin.Context) {
		(&handlers.DashboardHandler{Store: store(), Logger: logger}).Dashboard(c)
	})

	migrationHandler := &handlers.MigrationHandler{
		Logger: logger,
		NewMigrator: func() handlers.Migrator {
			return migration.NewService(migration.NewConnector(config.SourceDSN()), store(), logger)
		},
	}
	authed.GET("/migration/user-data", migrationHandler.MigrateUserData)
	authed.GET("/migration/doc-data", migrationHandler.MigrateDocData)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectTargetWithRetry()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := models.NewStore(config.GetTargetDB()).EnsureIndexes(indexCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "indexes"}).Error("failed to ensure indexes: " + err.Error())
	}
	cancelIndexes()

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownTimeout := time.Duration(config.IntFromEnv("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
	if err := config.DisconnectTarget(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "mongo"}).Error("disconnect failed: " + err.Error())
	}
}

// requestIDMiddleware attaches a correlation id to every request.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Header("x-correlation-id", cid)
		c.Set("correlationID", cid)
		c.Next()
	}
}

// customErrorLogger logs only requests that accumulated errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
