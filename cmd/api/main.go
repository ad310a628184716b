package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wallapi/docs"
	"wallapi/internal/assistant"
	"wallapi/internal/auth"
	"wallapi/internal/blogcontent"
	"wallapi/internal/config"
	"wallapi/internal/database"
	"wallapi/internal/database/migration"
	handlers "wallapi/internal/http/handler"
	"wallapi/internal/http/middleware"
	"wallapi/internal/i18n"
	"wallapi/internal/logging"
	"wallapi/internal/notify"
	wallotel "wallapi/internal/otel"
	"wallapi/internal/repository/postgres"
	"wallapi/internal/service"
	"wallapi/internal/storage"
)

const (
	catalogCacheTTL = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// @title Wallpaper Store API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(cfg.Location())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := wallotel.Init(ctx, log)
	if err != nil {
		log.Fatal("tracing_init_failed", zap.Error(err))
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("db_connect_failed", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Fatal("db_migration_failed", zap.Error(err))
	}
	if _, err := database.SeedAdmin(ctx, db, cfg.Seed, log); err != nil {
		if !errors.Is(err, database.ErrAdminPasswordRequired) {
			log.Fatal("seed_admin_failed", zap.Error(err))
		}
		log.Warn("seed_admin_skipped", zap.Error(err))
	}

	store, uploadDir, err := newStorage(cfg.Storage)
	if err != nil {
		log.Fatal("storage_init_failed", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
	}

	tokens, err := auth.NewManager(cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatal("auth_init_failed", zap.Error(err))
	}

	messages := i18n.MustDefault()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Repositories
	users := postgres.NewUserPostgres(db)
	categories := postgres.NewCategoryPostgres(db)
	paperTypes := postgres.NewPaperTypePostgres(db)
	products := postgres.NewProductPostgres(db)
	blogs := postgres.NewBlogPostgres(db)
	orders := postgres.NewOrderPostgres(db)
	addresses := postgres.NewAddressPostgres(db)
	chats := postgres.NewChatbotPostgres(db)

	// Services
	catalogSvc := service.NewCatalogService(categories, paperTypes, products, catalogCacheTTL)
	defer catalogSvc.Close()

	orderCfg, err := orderConfig(cfg)
	if err != nil {
		log.Fatal("shop_config_invalid", zap.Error(err))
	}
	notifier := notify.NewResend(cfg.Mail.ResendAPIKey, cfg.Mail.From, cfg.SiteURL, cfg.Shop.Currency, messages)
	orderSvc, err := service.NewOrderService(orders, products, addresses, notifier, orderCfg, log, reg)
	if err != nil {
		log.Fatal("order_service_init_failed", zap.Error(err))
	}

	var responder assistant.Responder
	if cfg.Assistant.GeminiAPIKey != "" {
		gemini, err := assistant.NewGemini(ctx, cfg.Assistant.GeminiAPIKey, cfg.Assistant.Model, messages)
		if err != nil {
			log.Warn("assistant_init_failed", zap.Error(err))
		} else {
			defer gemini.Close()
			responder = gemini
		}
	}

	content := blogcontent.NewProcessor(store, cfg.Storage.MaxBytes, log)

	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("metrics_init_failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Blog bodies carry inline base64 images; uploads are multipart.
		BodyLimit:    int(cfg.Storage.MaxBytes) + 16<<20,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(otelfiber.Middleware(otelfiber.WithServerName(cfg.AppHost)))
	app.Use(promMW.Handler())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Accept-Language, Authorization, X-Request-ID",
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders: "X-Request-ID, Content-Language",
	}))
	app.Use(middleware.Language())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:               db,
		Tokens:           tokens,
		Auth:             service.NewAuthService(users, tokens, service.SessionTTLs{Admin: cfg.Auth.AdminSessionTTL, Customer: cfg.Auth.CustomerSessionTTL}),
		Users:            service.NewUserService(users),
		Catalog:          catalogSvc,
		Blogs:            service.NewBlogService(blogs, content, log),
		Orders:           orderSvc,
		Addresses:        service.NewAddressService(addresses),
		Chatbot:          service.NewChatbotService(chats, responder, messages, log),
		Files:            service.NewFileService(store, cfg.Storage.MaxBytes, log),
		Gatherer:         reg,
		UploadDir:        uploadDir,
		LoginMaxAttempts: cfg.Auth.LoginMaxAttempts,
		LoginWindow:      cfg.Auth.LoginWindow,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("server_started", zap.String("addr", addr), zap.String("storage_driver", cfg.Storage.Driver))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server_failed", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("server_stopping")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error("server_shutdown_failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing_shutdown_failed", zap.Error(err))
	}
}

// newStorage returns the configured driver and, for the local driver, the
// directory to serve at /uploads.
func newStorage(cfg config.StorageConfig) (storage.Storage, string, error) {
	switch cfg.Driver {
	case "minio":
		s, err := storage.NewMinIO(cfg.MinIO, cfg.PublicBaseURL)
		return s, "", err
	case "local", "":
		s, err := storage.NewLocal(cfg.UploadDir, cfg.PublicBaseURL)
		return s, cfg.UploadDir, err
	default:
		return nil, "", errors.New("unknown STORAGE_DRIVER " + cfg.Driver)
	}
}

func orderConfig(cfg *config.AppConfig) (service.OrderConfig, error) {
	fee, err := decimal.NewFromString(cfg.Shop.ShippingFee)
	if err != nil {
		return service.OrderConfig{}, errors.New("SHOP_SHIPPING_FEE is not a decimal")
	}
	threshold, err := decimal.NewFromString(cfg.Shop.FreeShippingThreshold)
	if err != nil {
		return service.OrderConfig{}, errors.New("SHOP_FREE_SHIPPING_THRESHOLD is not a decimal")
	}
	return service.OrderConfig{ShippingFee: fee, FreeShippingThreshold: threshold, Location: cfg.Location()}, nil
}
