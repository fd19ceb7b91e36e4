package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/cassia-erp/cassia-erp/internal/app"
	"github.com/cassia-erp/cassia-erp/internal/auth"
	"github.com/cassia-erp/cassia-erp/internal/content"
	"github.com/cassia-erp/cassia-erp/internal/ledger"
	ledgerhttp "github.com/cassia-erp/cassia-erp/internal/ledger/http"
	"github.com/cassia-erp/cassia-erp/internal/masterdata/customers"
	"github.com/cassia-erp/cassia-erp/internal/masterdata/products"
	"github.com/cassia-erp/cassia-erp/internal/masterdata/suppliers"
	"github.com/cassia-erp/cassia-erp/internal/masterdata/workers"
	"github.com/cassia-erp/cassia-erp/internal/nota"
	"github.com/cassia-erp/cassia-erp/internal/platform/cache"
	"github.com/cassia-erp/cassia-erp/internal/platform/db"
	"github.com/cassia-erp/cassia-erp/internal/production"
	"github.com/cassia-erp/cassia-erp/internal/purchasing"
	"github.com/cassia-erp/cassia-erp/internal/rbac"
	"github.com/cassia-erp/cassia-erp/internal/sales"
	"github.com/cassia-erp/cassia-erp/internal/shared"
	"github.com/cassia-erp/cassia-erp/internal/users"
	"github.com/cassia-erp/cassia-erp/internal/view"
	"github.com/cassia-erp/cassia-erp/jobs"
	"github.com/cassia-erp/cassia-erp/report"
	"github.com/cassia-erp/cassia-erp/web"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error("create upload dir", slog.String("dir", cfg.UploadDir), slog.Any("error", err))
		os.Exit(1)
	}

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine(web.FS)
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := shared.NewAuditLogger(pool)
	summaryCache := ledger.NewSummaryCache(redisClient, 10*time.Minute)

	rbacService := rbac.NewService(rbac.NewRepository(pool), redisClient)
	rbacMiddleware := rbac.NewMiddleware(logger, rbacService)

	authService := auth.NewService(auth.NewRepository(pool), auditLogger)
	authHandler := auth.NewHandler(logger, authService, sessionManager, templates, csrfManager)

	productService := products.NewService(products.NewRepository(pool))
	customerService := customers.NewService(customers.NewRepository(pool))
	supplierService := suppliers.NewService(suppliers.NewRepository(pool))
	workerService := workers.NewService(workers.NewRepository(pool))
	productsHandler := products.NewHandler(logger, productService, templates, csrfManager, rbacMiddleware)
	customersHandler := customers.NewHandler(logger, customerService, templates, csrfManager, rbacMiddleware)
	suppliersHandler := suppliers.NewHandler(logger, supplierService, templates, csrfManager, rbacMiddleware)
	workersHandler := workers.NewHandler(logger, workerService, templates, csrfManager, rbacMiddleware)

	purchasingService := purchasing.NewService(purchasing.NewRepository(pool), auditLogger, summaryCache)
	purchasingHandler := purchasing.NewHandler(logger, purchasingService, supplierService, productService, templates, csrfManager, rbacMiddleware)

	salesService := sales.NewService(sales.NewRepository(pool), auditLogger, summaryCache)
	salesHandler := sales.NewHandler(logger, salesService, customerService, productService, templates, csrfManager, rbacMiddleware)

	productionService := production.NewService(production.NewRepository(pool), auditLogger, summaryCache)
	productionHandler := production.NewHandler(logger, productionService, productService, templates, csrfManager, rbacMiddleware)

	ledgerService := ledger.NewService(purchasingService, salesService, productionService, summaryCache)
	ledgerHandler := ledgerhttp.NewHandler(logger, ledgerService, templates, csrfManager, rbacMiddleware)

	usersService := users.NewService(users.NewRepository(pool), rbacService, auditLogger)
	usersHandler := users.NewHandler(logger, usersService, templates, csrfManager, rbacMiddleware)

	contentService := content.NewService(content.NewRepository(pool))
	publicHandler := content.NewPublicHandler(logger, contentService, templates)
	contentAdminHandler := content.NewAdminHandler(logger, contentService, templates, csrfManager, rbacMiddleware, cfg.UploadDir)

	notaRenderer, err := nota.NewRenderer(web.FS)
	if err != nil {
		logger.Error("parse nota template", slog.Any("error", err))
		os.Exit(1)
	}
	gotenberg := report.NewClient(cfg.GotenbergURL)
	notaService := nota.NewService(purchasingService, salesService, productService, notaRenderer, gotenberg)
	notaHandler := nota.NewHandler(logger, notaService, rbacMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,

		LedgerService: ledgerService,

		PublicHandler:       publicHandler,
		ContentAdminHandler: contentAdminHandler,
		AuthHandler:         authHandler,
		LedgerHandler:       ledgerHandler,
		PurchasingHandler:   purchasingHandler,
		SalesHandler:        salesHandler,
		ProductionHandler:   productionHandler,
		ProductsHandler:     productsHandler,
		CustomersHandler:    customersHandler,
		SuppliersHandler:    suppliersHandler,
		WorkersHandler:      workersHandler,
		UsersHandler:        usersHandler,
		NotaHandler:         notaHandler,
		JobHandler:          jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
