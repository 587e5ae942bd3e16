package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/sandeepkv93/product-catalog-api/internal/app"
	"github.com/sandeepkv93/product-catalog-api/internal/config"
	"github.com/sandeepkv93/product-catalog-api/internal/database"
	"github.com/sandeepkv93/product-catalog-api/internal/health"
	"github.com/sandeepkv93/product-catalog-api/internal/http/handler"
	"github.com/sandeepkv93/product-catalog-api/internal/http/router"
	"github.com/sandeepkv93/product-catalog-api/internal/observability"
	"github.com/sandeepkv93/product-catalog-api/internal/repository"
	"github.com/sandeepkv93/product-catalog-api/internal/security"
	"github.com/sandeepkv93/product-catalog-api/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var StoreSet = wire.NewSet(
	provideCatalogStores,
	provideProductRepository,
	provideUserRepository,
	provideRuntimeDB,
	provideReadinessProbeRunner,
)

var SecuritySet = wire.NewSet(
	provideJWTManager,
	wire.Bind(new(service.AccessTokenSigner), new(*security.JWTManager)),
)

var ServiceSet = wire.NewSet(
	service.NewProductService,
	provideAuthService,
	wire.Bind(new(service.ProductService), new(*service.ProductServiceImpl)),
	wire.Bind(new(service.AuthService), new(*service.AuthServiceImpl)),
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	provideProductHandler,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

// CatalogStores holds the backend selected at startup. DB is nil for the
// memory backend.
type CatalogStores struct {
	Products repository.ProductRepository
	Users    repository.UserRepository
	DB       *gorm.DB
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideCatalogStores(cfg *config.Config, logger *slog.Logger) (*CatalogStores, func(), error) {
	ctx := context.Background()
	stores, err := openCatalogStores(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if stores.DB == nil {
			return
		}
		if sqlDB, err := stores.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Error("failed to close database connection", "error", err)
			}
		}
	}
	if err := provisionCatalog(ctx, cfg, logger, stores); err != nil {
		cleanup()
		return nil, nil, err
	}
	return stores, cleanup, nil
}

func openCatalogStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*CatalogStores, error) {
	if cfg.CatalogBackend == config.BackendMemory {
		logger.Info("catalog backend selected", "backend", cfg.CatalogBackend)
		return &CatalogStores{
			Products: repository.NewMemoryProductRepository(),
			Users:    repository.NewMemoryUserRepository(),
		}, nil
	}

	db, err := database.OpenWithRetry(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	logger.Info("catalog backend selected", "backend", cfg.CatalogBackend)
	return &CatalogStores{
		Products: repository.NewProductRepository(db),
		Users:    repository.NewUserRepository(db),
		DB:       db,
	}, nil
}

// provisionCatalog seeds the sample catalog and the bootstrap login when configured.
func provisionCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger, stores *CatalogStores) error {
	if cfg.CatalogSeedSampleData {
		report, err := database.SeedSampleProducts(ctx, stores.Products)
		if err != nil {
			return err
		}
		logger.Info("sample catalog seed", "inserted", report.InsertedProducts, "existing", report.ExistingProducts, "noop", report.Noop)
	}
	if cfg.BootstrapUserEmail != "" {
		user, created, err := database.EnsureUser(ctx, stores.Users, cfg.BootstrapUserEmail, cfg.BootstrapUserPassword, cfg.BootstrapUserName)
		if err != nil {
			return err
		}
		logger.Info("bootstrap user ready", "user_id", user.ID, "created", created)
	}
	return nil
}

func provideProductRepository(stores *CatalogStores) repository.ProductRepository {
	return stores.Products
}

func provideUserRepository(stores *CatalogStores) repository.UserRepository {
	return stores.Users
}

func provideRuntimeDB(stores *CatalogStores) *gorm.DB {
	return stores.DB
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret)
}

func provideAuthService(cfg *config.Config, users repository.UserRepository, tokens service.AccessTokenSigner) *service.AuthServiceImpl {
	return service.NewAuthService(users, tokens, cfg.JWTTTL)
}

func provideProductHandler(svc service.ProductService, cfg *config.Config) *handler.ProductHandler {
	return handler.NewProductHandler(svc, cfg.CatalogRelatedDefaultLimit)
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
	jwt *security.JWTManager,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	dep := router.Dependencies{
		AuthHandler:    authHandler,
		ProductHandler: productHandler,
		AuthMode:       cfg.CatalogAuthMode,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		Readiness:      readiness,
		EnableOTelHTTP: cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
	if jwt != nil {
		dep.Tokens = jwt
	}
	return dep
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, products repository.ProductRepository) *health.ProbeRunner {
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, 0,
		health.NewDBChecker(db),
		health.NewCatalogChecker(products),
	)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	readiness *health.ProbeRunner,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, readiness)
}
