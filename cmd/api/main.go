package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/condominio-api/docs" // Swagger docs
	"github.com/sjperalta/condominio-api/internal/config"
	"github.com/sjperalta/condominio-api/internal/database"
	"github.com/sjperalta/condominio-api/internal/handlers"
	"github.com/sjperalta/condominio-api/internal/jobs"
	"github.com/sjperalta/condominio-api/internal/middleware"
	"github.com/sjperalta/condominio-api/internal/repository"
	"github.com/sjperalta/condominio-api/internal/services"
	"github.com/sjperalta/condominio-api/internal/storage"
	"github.com/sjperalta/condominio-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Condominio API
// @version 1.0
// @description REST API for the building owners' association ledger

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8081
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Warn if Resend email is not configured
	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set. Set them in .env and ensure the From domain is verified in Resend dashboard.")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("Database migrations applied")

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, store, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Redirect root to swagger
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})

		// Swagger documentation
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				// User management
				admin.GET("/users", h.User.Index)
				admin.POST("/users", h.User.Create)
				admin.DELETE("/users/:user_id", h.User.Delete)
				admin.PUT("/users/:user_id/toggle_status", h.User.ToggleStatus)
				admin.POST("/users/:user_id/restore", h.User.Restore)

				// Monthly dues mutations
				admin.POST("/monthly_payments", h.MonthlyPayment.Create)
				admin.PUT("/monthly_payments/:payment_id", h.MonthlyPayment.Update)
				admin.DELETE("/monthly_payments/:payment_id", h.MonthlyPayment.Delete)

				// Event lifecycle and mutations
				admin.POST("/events", h.Event.Create)
				admin.PUT("/events/:event_id", h.Event.Update)
				admin.DELETE("/events/:event_id", h.Event.Delete)
				admin.POST("/events/:event_id/close", h.Event.Close)
				admin.POST("/events/:event_id/reopen", h.Event.Reopen)

				// Event payment mutations
				admin.POST("/events/:event_id/payments", h.EventPayment.Create)
				admin.PUT("/events/:event_id/payments/:payment_id", h.EventPayment.Update)
				admin.DELETE("/events/:event_id/payments/:payment_id", h.EventPayment.Delete)

				// Expense mutations
				admin.POST("/expenses", h.Expense.Create)
				admin.PUT("/expenses/:expense_id", h.Expense.Update)
				admin.DELETE("/expenses/:expense_id", h.Expense.Delete)
				admin.POST("/expenses/:expense_id/upload_receipt", h.Expense.UploadReceipt)

				// Due config
				admin.PUT("/config/monthly_due", h.Dashboard.UpdateMonthlyDue)

				// Audits and jobs
				admin.GET("/audits", h.Audit.Index)
				admin.GET("/jobs/stats", h.Job.Status)
			}

			// Floors (reference data)
			protected.GET("/floors", h.Floor.Index)
			protected.GET("/floors/:floor_id", h.Floor.Show)
			protected.GET("/floors/:floor_id/dues", h.Floor.Dues)

			// Balance and config (read)
			protected.GET("/balance", h.Dashboard.Balance)
			protected.GET("/config/monthly_due", h.Dashboard.MonthlyDueConfig)

			// Monthly dues (read)
			protected.GET("/monthly_payments", h.MonthlyPayment.Index)
			protected.GET("/monthly_payments/remaining", h.MonthlyPayment.Remaining)
			protected.GET("/monthly_payments/:payment_id", h.MonthlyPayment.Show)

			// Events (read)
			protected.GET("/events", h.Event.Index)
			protected.GET("/events/:event_id", h.Event.Show)
			protected.GET("/events/:event_id/pending_floors", h.Event.PendingFloors)
			protected.GET("/events/:event_id/payments", h.EventPayment.Index)

			// Expenses (read)
			protected.GET("/expenses", h.Expense.Index)
			protected.GET("/expenses/:expense_id", h.Expense.Show)
			protected.GET("/expenses/:expense_id/download_receipt", h.Expense.DownloadReceipt)

			// Dashboard
			protected.GET("/dashboard/overview", h.Dashboard.Overview)

			// Reports
			protected.GET("/reports/monthly_statement_pdf", h.Report.MonthlyStatementPDF)
			protected.GET("/reports/ledger_csv", h.Report.LedgerCSV)
			protected.GET("/reports/ledger_xlsx", h.Report.LedgerXLSX)

			// Users (admin or owner)
			protected.GET("/users/:user_id", middleware.RequireAdminOrOwner(), h.User.Show)
			protected.PUT("/users/:user_id", middleware.RequireAdminOrOwner(), h.User.Update)
			protected.PATCH("/users/:user_id/change_password", h.User.ChangePassword)

			// Notifications (users manage their own)
			// Static route first so "mark_all_as_read" is not matched as :notification_id
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
				notifications.POST("/:notification_id/mark_as_read", h.Notification.MarkAsRead)
				notifications.GET("/:notification_id", h.Notification.Show)
				notifications.DELETE("/:notification_id", h.Notification.Delete)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Reconcile the stored balance against live records every hour
	worker.ScheduleEvery(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Reconciling fund balance...")
		return svcs.Dashboard.ReconcileBalance(ctx)
	})

	// Refresh dashboard cache every 15 minutes
	worker.ScheduleEvery(15*time.Minute, func(ctx context.Context) error {
		logger.Info("[Job] Refreshing dashboard cache...")
		return svcs.Dashboard.RefreshCache(ctx)
	})

	// Daily dues summary emails for admins
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Sending daily dues summary emails...")
		return svcs.MonthlyPayment.SendDailyDuesSummaryEmails(ctx)
	})

	logger.Info("Scheduled recurring jobs")
}
