package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gympulse/gympulse/internal/auth"
	"github.com/gympulse/gympulse/internal/config"
	"github.com/gympulse/gympulse/internal/member"
	"github.com/gympulse/gympulse/internal/middleware"
	"github.com/gympulse/gympulse/internal/notification"
	"github.com/gympulse/gympulse/internal/payments"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger

	// Members and Gateway override the defaults derived from DB and Cfg. Tests use them.
	Members member.Repository
	Gateway payments.Gateway
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !config.IsDev(d.Cfg.AppEnv) {
		if d.DB == nil && d.Members == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Cfg.CORSAllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key, X-Request-ID",
	}))
	if config.IsDev(d.Cfg.AppEnv) && d.Cfg.AppEnv != "test" {
		// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	memberRepo := d.Members
	if memberRepo == nil {
		if d.DB != nil {
			memberRepo = member.NewPostgresRepository(d.DB)
		} else {
			d.Logger.Warn("no database configured, members are kept in memory")
			memberRepo = member.NewMemoryRepository()
		}
	}

	gateway := d.Gateway
	if gateway == nil {
		if d.Cfg.RazorpayKeyID != "" {
			gateway = payments.NewRazorpayGateway(d.Cfg.RazorpayBaseURL, d.Cfg.RazorpayKeyID, d.Cfg.RazorpayKeySecret, d.Cfg.GatewayTimeout)
		} else {
			d.Logger.Warn("RAZORPAY_KEY_ID not set, orders are simulated")
			gateway = &payments.StaticGateway{}
		}
	}

	authSvc := auth.NewService(d.Cfg, memberRepo)
	memberSvc := member.NewService(memberRepo, authSvc)
	notifier := notification.NewLoggerNotifier(d.Logger)
	paymentSvc := payments.NewService(gateway, memberRepo, notifier, d.Logger, payments.Options{
		KeySecret: d.Cfg.RazorpayKeySecret,
		Currency:  d.Cfg.Currency,
	})

	authHandler := auth.NewHandler(authSvc, d.Logger)
	memberHandler := member.NewHandler(memberSvc)
	paymentHandler := payments.NewHandler(paymentSvc)

	app.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, d.Cfg.LoginAttempts)
	RegisterAuthRoutes(app, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(authSvc, d.Logger)
	RegisterMemberRoutes(app, memberHandler, jwtmw)
	idem := middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	RegisterPaymentRoutes(app, paymentHandler, jwtmw, idem)

	return nil
}
