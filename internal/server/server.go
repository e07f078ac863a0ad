// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "boostly/docs" // swagger docs
	"boostly/internal/config"
	"boostly/internal/featureflags"
	"boostly/internal/middleware"
	"boostly/internal/models"
	"boostly/internal/notifications"
	"boostly/internal/observability"
	"boostly/internal/repository"
	"boostly/internal/security"
	"boostly/internal/service"
	"boostly/internal/token"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	now            func() time.Time

	flags     *featureflags.Set
	tokens    *token.Service
	gate      *middleware.AuthGate
	directory *service.CompanyDirectory
	notifier  *notifications.Notifier
	hub       *notifications.Hub

	authService       *service.AuthService
	accountService    *service.AccountService
	engagementService *service.EngagementService
	feedService       *service.FeedService
}

// Option customises a Server built by NewServerWithDeps.
type Option func(*Server)

// WithClock makes the server read the time from now. Tokens, posts and likes
// are all stamped with it.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil: caching, rate limiting and the like stream are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts ...Option) (*Server, error) {
	hasher, err := security.NewPasswordHasher(cfg)
	if err != nil {
		return nil, err
	}
	flags, err := featureflags.Parse(cfg.FeatureFlags)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
		now:            time.Now,
		flags:          flags,
		tokens:         token.NewServiceFromConfig(cfg),
	}
	for _, opt := range opts {
		opt(s)
	}

	accounts := repository.NewAccountRepository(db)
	posts := repository.NewPostRepository(db)
	likes := repository.NewLikeRepository(db)

	s.directory = service.NewCompanyDirectory(repository.NewCompanyRepository(db), redisClient)
	s.gate = middleware.NewAuthGate(s.tokens, s.directory).WithClock(s.now)

	var publisher service.LikePublisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		publisher = s.notifier
	}

	s.authService = service.NewAuthService(accounts, hasher, s.tokens, s.now)
	s.accountService = service.NewAccountService(accounts, hasher, s.directory)
	s.engagementService = service.NewEngagementService(posts, likes, publisher, s.now)
	s.feedService = service.NewFeedService(s.directory, posts)

	return s, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Boostly API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Boostly Metrics Dashboard",
	}))
	app.Get("/swagger/*", swagger.HandlerDefault)

	auth := app.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	user := app.Group("/user")
	user.Post("/logout", s.Logout)
	user.Get("/profile", s.gate.RequireSession(), s.GetProfile)
	user.Post("/update/:id", s.UpdateAccount)
	user.Delete("/delete/:id", s.DeleteAccount)
	user.Post("/search", s.SearchAccounts)
	user.Get("/all-users", s.GetAllAccounts)

	company := app.Group("/company")
	company.Get("/getposts/:cname", s.GetCompanyPosts)
	company.Get("/getpost/:id", s.GetPost)
	company.Post("/create_post", s.gate.RequireSession(), s.gate.RequireCompany(), s.CreatePost)
	company.Get("/like_post/:id", s.gate.RequireSession(), s.gate.RequireCompany(),
		middleware.RateLimit(s.redis, 30, time.Minute, "like"), s.LikePost)

	app.Get("/ws/likes", s.gate.RequireSession(), s.gate.RequireCompany(), s.LikeStreamHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   s.now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := pingDB(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis only backs caches and the like stream, so its absence degrades rather than fails.
	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": s.now(),
	})
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Start wires the like stream and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.App()

	if s.notifier != nil && s.hub != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start like stream wiring", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(fmt.Sprintf(":%s", s.config.Port))
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down like stream hub", slog.String("error", err.Error()))
		}
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
