// Package server wires the HTTP API: routing, middleware, and handlers.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"friendnet/internal/cache"
	"friendnet/internal/config"
	"friendnet/internal/database"
	"friendnet/internal/middleware"
	"friendnet/internal/repository"
	"friendnet/internal/service"

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

	_ "friendnet/docs"
)

// Server holds the application's dependencies and the fiber app.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo    repository.UserRepository
	requestRepo repository.FriendRequestRepository

	userService   *service.UserService
	friendService *service.FriendService
}

// NewServer connects to Postgres and Redis and builds a fully wired server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient()), nil
}

// NewServerWithDeps builds a server around pre-constructed dependencies.
// Tests use this with an in-memory sqlite DB and a miniredis client.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	middleware.InitMiddleware(cfg)
	middleware.SetTokenRevocationCheck(cache.IsTokenRevoked)
	cache.SetClient(redisClient)

	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewFriendRequestRepository(db)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("friendnet-api"),
		userRepo:       userRepo,
		requestRepo:    requestRepo,
		userService:    service.NewUserService(userRepo),
		friendService:  service.NewFriendService(requestRepo, userRepo),
	}
}

// SetupMiddleware registers the global middleware stack. Order matters:
// recover first, then request identity, then everything that logs or measures.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// Coarse per-IP throttle; route-level redis limits are stricter.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
	}))
}

// SetupRoutes registers all HTTP endpoints.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	s.promMiddleware.RegisterAt(app, "/metrics")

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "friendnet metrics"}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.Refresh)
	auth.Post("/logout", s.Logout)

	protected := api.Group("", middleware.AuthRequired)
	protected.Get("/users", s.GetAllUsers)
	protected.Get("/users/me", s.GetMyProfile)

	friends := protected.Group("/friends")
	friends.Get("/", s.ListFriends)
	friends.Post("/requests", middleware.RateLimit(s.redis, 30, time.Minute, "friend_send"), s.SendFriendRequest)
	friends.Post("/requests/accept", s.AcceptFriendRequest)
	friends.Post("/requests/reject", s.RejectFriendRequest)
	friends.Get("/requests", s.ListFriendRequests)
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadinessCheck verifies the DB and Redis connections.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.Context()) != nil {
		checks["database"] = "unreachable"
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if s.redis == nil || s.redis.Ping(c.Context()).Err() != nil {
		checks["redis"] = "unreachable"
		healthy = false
	} else {
		checks["redis"] = "ok"
	}

	status := fiber.StatusOK
	if !healthy {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"status": checks, "healthy": healthy})
}

// Start builds the fiber app and blocks serving HTTP.
func (s *Server) Start() error {
	app := s.App()

	addr := ":" + s.config.Port
	slog.Info("starting server", "addr", addr, "env", s.config.Env)
	return app.Listen(addr)
}

// App lazily builds the fiber app with the full middleware and route setup.
// Tests drive it directly via app.Test.
func (s *Server) App() *fiber.App {
	if s.app == nil {
		s.app = fiber.New(fiber.Config{
			AppName:      "friendnet-api",
			ErrorHandler: s.errorHandler,
		})
		s.SetupMiddleware(s.app)
		s.SetupRoutes(s.app)
	}
	return s.app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{"message": e.Message})
	}
	return respondError(c, err)
}

// Shutdown drains in-flight requests and closes the DB and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			return err
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	return nil
}
