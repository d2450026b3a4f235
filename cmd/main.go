package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/megstore/storefront/internal/config"
	"github.com/megstore/storefront/internal/gateway"
	"github.com/megstore/storefront/internal/handlers"
	sharedHTTP "github.com/megstore/storefront/internal/http"
	"github.com/megstore/storefront/internal/messaging"
	"github.com/megstore/storefront/internal/repository"
	"github.com/megstore/storefront/internal/service"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log); err != nil {
		log.Fatal("storefront stopped", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	log.Info("storefront starting",
		zap.String("catalog", cfg.Catalog),
		zap.String("store", cfg.Store),
		zap.Bool("messaging", cfg.RabbitMQ.Enabled),
	)

	// Carts and sessions
	var (
		cartStore    service.CartStore
		sessionStore service.SessionStore
	)
	switch cfg.Store {
	case config.ModePostgres:
		db, err := initDatabase(cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database connection error: %w", err)
		}
		defer db.Close()
		cartStore = repository.NewPostgresCartStore(db)
		sessionStore = repository.NewPostgresSessionStore(db)
	default:
		cartStore = repository.NewMemoryCartStore()
		sessionStore = repository.NewMemorySessionStore()
	}

	// Catalog, orders and coupons
	var (
		catalog service.Catalog
		orders  service.OrderGateway
		coupons service.CouponLookup
	)
	switch cfg.Catalog {
	case config.ModeRemote:
		client := gateway.NewClient(cfg.Backend, log.Named("gateway"))
		catalog = gateway.NewProductClient(client)
		orders = gateway.NewOrderClient(client)
		coupons = gateway.NewCouponClient(client)
	default:
		products, err := cfg.SeedProducts()
		if err != nil {
			return err
		}
		seedCoupons, err := cfg.SeedCoupons()
		if err != nil {
			return err
		}
		catalog = repository.NewMemoryCatalog(products...)
		orders = repository.NewMemoryOrderStore()
		coupons = repository.NewMemoryCouponStore(seedCoupons...)
		log.Info("in-memory catalog seeded",
			zap.Int("products", len(products)),
			zap.Int("coupons", len(seedCoupons)),
		)
	}

	// Events
	var publisher service.EventPublisher = messaging.NopPublisher{Logger: log}
	if cfg.RabbitMQ.Enabled {
		rabbitClient := messaging.NewRabbitMQClient(cfg.RabbitMQ, log.Named("rabbitmq"))
		if err := rabbitClient.Connect(); err != nil {
			return fmt.Errorf("RabbitMQ connection error: %w", err)
		}
		defer rabbitClient.Close()
		publisher = messaging.NewPublisher(rabbitClient, log.Named("publisher"))
	}

	// Dependencies injection
	cartService := service.NewCartService(cartStore, catalog, log.Named("cart"))
	couponService := service.NewCouponService(cartService, coupons, log.Named("coupon"))
	stock := service.NewStockAdjuster(catalog, log.Named("stock"))
	orderService := service.NewOrderService(orders, cartService, couponService, stock, publisher, log.Named("order"))
	sessionService := service.NewSessionService(sessionStore, cartService, log.Named("session"))

	app := setupFiberApp(log)
	handlers.SetupRoutes(app, handlers.Handlers{
		Sessions: handlers.NewSessionHandler(sessionService, log),
		Carts:    handlers.NewCartHandler(cartService, couponService, log),
		Orders:   handlers.NewOrderHandler(orderService, log),
	}, sessionService)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("storefront shutting down")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			log.Error("shutdown error", zap.Error(err))
		}
	}()

	log.Info("storefront listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server start error: %w", err)
	}
	return nil
}

func initDatabase(cfg config.DatabaseConfig, log *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database open error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping error: %w", err)
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("database connected", zap.String("database", cfg.Name))
	return db, nil
}

func setupFiberApp(log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Storefront v1.0",
		ErrorHandler: errorHandler(log),
	})

	// Middlewares
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID,X-Session-ID",
	}))

	return app
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(sharedHTTP.APIResponse{
			Success: false,
			Message: message,
			Error: &sharedHTTP.APIError{
				Code:    fmt.Sprintf("HTTP_%d", code),
				Message: message,
			},
			Timestamp: time.Now(),
			RequestID: sharedHTTP.RequestID(c),
		})
	}
}
