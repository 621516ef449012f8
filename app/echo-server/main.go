package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appmetrics "agroMarket/app/echo-server/metrics"
	"agroMarket/app/echo-server/router"
	"agroMarket/business/admin"
	"agroMarket/business/cart"
	"agroMarket/business/category"
	"agroMarket/business/orders"
	"agroMarket/business/product"
	userService "agroMarket/business/user"
	"agroMarket/internal/middleware"
	kafkaRepo "agroMarket/internal/repository/kafka"
	psqlRepo "agroMarket/internal/repository/postgres"
	redisRepo "agroMarket/internal/repository/redis"
	"agroMarket/internal/repository/storage"
	"agroMarket/internal/rest"
	"agroMarket/internal/view"
	"agroMarket/pkg/config"
	"agroMarket/pkg/database"
	redisClient "agroMarket/pkg/database/redis"
	"agroMarket/pkg/logger"
	"agroMarket/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

type eventPublisher interface {
	orders.EventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting agroMarket", "version", cfg.App.Version, "environment", cfg.App.Environment)

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", err)
	}

	logger.Info("Database connected successfully", "driver", cfg.Database.Driver)

	rdb, err := redisClient.NewClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", err)
	}
	defer redisClient.Close(rdb)

	var events eventPublisher = kafkaRepo.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		events = kafkaRepo.NewOrderEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.Info("Order events enabled", "topic", cfg.Kafka.Topic)
	}
	defer events.Close()

	images, err := storage.NewLocalImageStore(cfg.App.UploadDir)
	if err != nil {
		logger.Fatal("Failed to prepare upload directory", err)
	}

	metrics.Init()
	appmetrics.Init()

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	categoryRepo := psqlRepo.NewCategoryRepository(db)
	ordersRepo := psqlRepo.NewOrdersRepository(db)
	sessionRepo := redisRepo.NewSessionRepository(rdb, cfg.App.SessionTTL)

	// Init service
	userSvc := userService.NewUserService(userRepo, sessionRepo, validate)
	productSvc := product.NewProductService(productRepo, images)
	categorySvc := category.NewCategoryService(categoryRepo)
	cartSvc := cart.NewCartService(productRepo, sessionRepo, cfg.App.CartMaxLines)
	ordersSvc := orders.NewOrdersService(ordersRepo, sessionRepo, events)
	adminSvc := admin.NewAdminService(userSvc, productSvc, ordersSvc)

	if cfg.Admin.Email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := userSvc.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
		cancel()
		if err != nil {
			logger.Fatal("Failed to bootstrap admin account", err)
		}
	}

	// Init handler
	pageHandler := rest.NewPageHandler(cfg.App.Version, map[string]rest.Pinger{
		"database": rest.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
		"redis": rest.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}),
	})
	userHandler := rest.NewUserHandler(userSvc, sessionRepo, []byte(cfg.JWT.SecretKey), cfg.App.SessionTTL, cfg.App.SecureCookie)
	productHandler := rest.NewProductHandler(productSvc, categorySvc)
	cartHandler := rest.NewCartHandler(cartSvc)
	ordersHandler := rest.NewOrdersHandler(ordersSvc, cartSvc)
	adminHandler := rest.NewAdminHandler(adminSvc, userSvc, productSvc)

	renderer, err := view.NewRenderer(cfg.App.Name)
	if err != nil {
		logger.Fatal("Failed to load templates", err)
	}

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			logger.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency.String())
			return nil
		},
	}))
	e.Use(appmetrics.Middleware())
	e.Use(middleware.JWTSession([]byte(cfg.JWT.SecretKey)))
	e.Use(middleware.LoadSession(sessionRepo))

	authLimit := echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RateLimit.AuthPerSecond),
			Burst:     cfg.RateLimit.AuthBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logger.Warn("auth rate limit hit", "ip", identifier)
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts, please wait a moment.")
		},
	})
	uploadLimit := echomiddleware.BodyLimit("6M")

	// Setup routes
	e.Static("/static/uploads", images.Dir())
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	router.SetupPageRoutes(e, pageHandler)
	router.SetupAuthRoutes(e, userHandler, authLimit)
	router.SetupFarmerRoutes(e, productHandler, ordersHandler, uploadLimit)
	router.SetupCustomerRoutes(e, productHandler, cartHandler, ordersHandler)
	router.SetupAdminRoutes(e, adminHandler)

	api := e.Group("/api/v1")
	router.SetupAPIRoutes(api, productHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", err)
	}

	// let in-flight order events reach the broker before the writer closes
	ordersSvc.Wait()

	logger.Info("Server stopped")
}
