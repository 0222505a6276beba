package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appexpense "github.com/expenseflow/backend/internal/application/expense"
	appidentity "github.com/expenseflow/backend/internal/application/identity"
	domainexpense "github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/infrastructure/cache"
	"github.com/expenseflow/backend/internal/infrastructure/config"
	"github.com/expenseflow/backend/internal/infrastructure/currency"
	"github.com/expenseflow/backend/internal/infrastructure/logger"
	"github.com/expenseflow/backend/internal/infrastructure/persistence"
	"github.com/expenseflow/backend/internal/interfaces/http/handler"
	"github.com/expenseflow/backend/internal/interfaces/http/middleware"
	"github.com/expenseflow/backend/internal/interfaces/http/router"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting expenseflow backend",
		zap.String("version", version),
		zap.String("env", cfg.App.Env),
	)

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Repositories
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRecordRepository(db.DB)
	requestRepo := persistence.NewGormApprovalRequestRepository(db.DB)
	ruleRepo := persistence.NewGormApprovalRuleRepository(db.DB)

	// Per-expense lock, memory or Redis depending on deployment shape
	lockerFactory := cache.NewExpenseLockerFactory(cfg.Lock, cfg.Redis, cache.WithLogger(log))
	locker, err := lockerFactory.CreateLocker()
	if err != nil {
		log.Fatal("failed to create expense locker", zap.Error(err))
	}

	// Active-rule snapshots are cached to keep matching off the hot path
	cachedRuleRepo := cache.NewCachedApprovalRuleRepository(ruleRepo, cfg.Cache.RuleTTL, log)

	converter := currency.NewConverter(
		currency.NewStaticRateSource(),
		currency.WithRateCacheTTL(cfg.Currency.RateCacheTTL),
		currency.WithConverterLogger(log),
	)

	// Domain services
	directory := appidentity.NewDirectory(employeeRepo)
	matcher := domainexpense.NewRuleMatcher(cachedRuleRepo)
	engine := domainexpense.NewApprovalEngine(expenseRepo, requestRepo, matcher, directory, locker)

	// Application services
	companyService := appidentity.NewCompanyService(companyRepo, log)
	employeeService := appidentity.NewEmployeeService(employeeRepo, log)
	expenseService := appexpense.NewExpenseService(expenseRepo, companyRepo, engine, converter, log)
	approvalService := appexpense.NewApprovalService(requestRepo, expenseRepo, engine, log)
	ruleService := appexpense.NewRuleService(cachedRuleRepo, log)

	// Handlers
	companyHandler := handler.NewCompanyHandler(companyService, log)
	employeeHandler := handler.NewEmployeeHandler(employeeService, log)
	expenseHandler := handler.NewExpenseHandler(expenseService, log)
	approvalHandler := handler.NewApprovalHandler(approvalService, log)
	ruleHandler := handler.NewApprovalRuleHandler(ruleService, log)
	systemHandler := handler.NewSystemHandler(db, version, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ginEngine := gin.New()
	if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("failed to set trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	ginEngine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
	)

	// Health lives outside API versioning so probes need no tenant context
	ginEngine.GET("/health", systemHandler.Health)

	tenant := middleware.RequireTenant()

	companies := router.NewDomainGroup("/companies").
		POST("", companyHandler.Create).
		GET("/current", tenant, companyHandler.GetCurrent)

	employees := router.NewDomainGroup("/employees").
		Use(tenant).
		POST("", employeeHandler.Create).
		GET("", employeeHandler.List).
		GET("/:id", employeeHandler.Get).
		PUT("/:id", employeeHandler.Update).
		DELETE("/:id", employeeHandler.Deactivate)

	expenses := router.NewDomainGroup("/expenses").
		Use(tenant).
		POST("", expenseHandler.Submit).
		GET("", expenseHandler.List).
		GET("/mine", expenseHandler.ListMine).
		GET("/:id", expenseHandler.Get).
		GET("/:id/approvals", approvalHandler.ListByExpense)

	approvals := router.NewDomainGroup("/approvals").
		Use(tenant).
		GET("/pending", approvalHandler.ListPending).
		POST("/:id/decision", approvalHandler.Decide)

	rules := router.NewDomainGroup("/approval-rules").
		Use(tenant).
		POST("", ruleHandler.Create).
		GET("", ruleHandler.List).
		GET("/:id", ruleHandler.Get).
		PUT("/:id", ruleHandler.Update).
		POST("/:id/activate", ruleHandler.Activate).
		POST("/:id/deactivate", ruleHandler.Deactivate).
		DELETE("/:id", ruleHandler.Delete)

	system := router.NewDomainGroup("/system").
		GET("/info", systemHandler.Info)

	router.NewRouter(ginEngine, router.WithAPIVersion("v1")).
		Register(companies, employees, expenses, approvals, rules, system).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	if closer, ok := locker.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Warn("failed to close expense locker", zap.Error(err))
		}
	}

	log.Info("server stopped")
}
