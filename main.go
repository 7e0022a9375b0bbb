package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/cabsure/cabsure-backend/database"
	"github.com/cabsure/cabsure-backend/internal/booking"
	"github.com/cabsure/cabsure-backend/internal/cache"
	"github.com/cabsure/cabsure-backend/internal/config"
	"github.com/cabsure/cabsure-backend/internal/csrf"
	"github.com/cabsure/cabsure-backend/internal/fare"
	"github.com/cabsure/cabsure-backend/internal/handlers"
	"github.com/cabsure/cabsure-backend/internal/idempotency"
	"github.com/cabsure/cabsure-backend/internal/logger"
	"github.com/cabsure/cabsure-backend/internal/models"
	"github.com/cabsure/cabsure-backend/internal/otp"
	"github.com/cabsure/cabsure-backend/internal/ratelimit"
	"github.com/cabsure/cabsure-backend/internal/routes"
	"github.com/cabsure/cabsure-backend/internal/services"
	"github.com/cabsure/cabsure-backend/internal/storage"
	"github.com/cabsure/cabsure-backend/internal/utils"
)

// sweeper is implemented by the in-memory stores that need periodic cleanup.
type sweeper interface {
	Sweep()
}

func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			if err := godotenv.Load("environments/.env.development"); err != nil {
				logrus.Info("no .env file found, using environment variables")
			}
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Environment)

	// Durable storage: bookings and discount offers
	var store storage.Store
	var databaseOK func() bool
	storageType := "in-memory"
	if cfg.UseMemoryStore {
		log.Warn("using in-memory storage (not for production!)")
		memStore := storage.NewMemoryStore()
		seedDemoOffers(memStore, log)
		store = memStore
	} else {
		log.Info("connecting to PostgreSQL database")
		if err := database.Connect(); err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		if err := database.DB.AutoMigrate(
			&models.Booking{},
			&models.DiscountOffer{},
		); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		store = storage.NewDatabaseStore(database.DB)
		storageType = "postgres"
		databaseOK = func() bool {
			sqlDB, err := database.DB.DB()
			return err == nil && sqlDB.Ping() == nil
		}
		log.Info("database connected and migrated")
	}

	// Ephemeral stores: shared redis when configured, process-local otherwise
	var (
		rateStore  ratelimit.Store
		otpBacking otp.BackingStore
		sessions   otp.SessionStore
		idemStore  idempotency.Store
		redisOK    func() bool
		sweepers   []sweeper
	)
	if cfg.RedisAddr != "" {
		client, err := cache.NewClient(cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer client.Close()

		rateStore = ratelimit.NewRedisStore(client.RedisClient())
		otpBacking = otp.NewRedisBackingStore(client.RedisClient())
		sessions = otp.NewRedisSessionStore(client.RedisClient())
		idemStore = idempotency.NewRedisStore(client.RedisClient())
		redisOK = func() bool {
			ctx, cancel := contextWithTimeout()
			defer cancel()
			return client.RedisClient().Ping(ctx).Err() == nil
		}
	} else {
		log.Warn("REDIS_ADDR not set, using process-local stores (single instance only)")
		memRate := ratelimit.NewMemoryStore(nil)
		memOTP := otp.NewMemoryBackingStore(nil)
		memSessions := otp.NewMemorySessionStore(nil)
		memIdem := idempotency.NewMemoryStore(nil)
		rateStore, otpBacking, sessions, idemStore = memRate, memOTP, memSessions, memIdem
		sweepers = []sweeper{memRate, memOTP, memSessions, memIdem}
	}

	// SMS delivery
	var notifier services.Notifier
	if cfg.TwilioAccountSID != "" {
		notifier, err = services.NewTwilioNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom, log)
		if err != nil {
			log.Fatalf("failed to initialize Twilio notifier: %v", err)
		}
		log.Info("Twilio notifier initialized")
	} else {
		if cfg.IsProduction() {
			log.Fatal("Twilio credentials are required in production")
		}
		log.Warn("Twilio credentials not set, OTP codes go to the console")
		notifier = services.NewConsoleNotifier(log)
	}

	// Core pipeline
	limiter := ratelimit.NewLimiter(rateStore, log)
	guard := csrf.NewGuard(cfg.CSRFSecret)
	otpStore := otp.NewStore(otpBacking, cfg.OTPSalt, utils.GenerateOTPCode, nil)
	engine := fare.NewEngine()
	orchestrator := booking.NewOrchestrator(limiter, sessions, engine, idemStore, store, log, nil)

	// Janitor for the process-local stores
	stopJanitor := make(chan struct{})
	if len(sweepers) > 0 {
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-stopJanitor:
					return
				case <-ticker.C:
					for _, s := range sweepers {
						s.Sweep()
					}
				}
			}
		}()
	}

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "CabSure Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"ok":    false,
				"error": "INTERNAL_ERROR",
			})
		},
	})

	// Middleware
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("CORS_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, x-csrf-token",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	routes.SetupRoutes(app, routes.Deps{
		Guard:        guard,
		Limiter:      limiter,
		OTPStore:     otpStore,
		Sessions:     sessions,
		Engine:       engine,
		Orchestrator: orchestrator,
		Store:        store,
		Notifier:     notifier,
		Log:          log,
		Production:   cfg.IsProduction(),
		Health: handlers.HealthStatus{
			StorageType: storageType,
			RedisOK:     redisOK,
			DatabaseOK:  databaseOK,
		},
	})

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("gracefully shutting down")
		close(stopJanitor)
		_ = app.Shutdown()
	}()

	log.WithFields(logrus.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"storage":     storageType,
	}).Info("CabSure backend starting")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// seedDemoOffers loads a few discount codes so the booking form can be
// exercised end to end against the memory store.
func seedDemoOffers(store storage.Store, log *logrus.Logger) {
	ctx, cancel := contextWithTimeout()
	defer cancel()

	capInr := 150
	now := time.Now()
	later := now.AddDate(1, 0, 0)
	err := store.SeedOffers(ctx, []models.DiscountOffer{
		{Code: "WELCOME100", DiscountType: models.DiscountTypeFlat, Value: 100, Active: true, ValidFrom: &now, ValidTo: &later},
		{Code: "SAVE10", DiscountType: models.DiscountTypePct, Value: 10, CapInr: &capInr, Active: true},
	})
	if err != nil {
		log.WithField("error", err.Error()).Warn("failed to seed demo offers")
	}
}
