package devapi

import (
	"context"
	"log/slog"
	"time"

	"agora/internal/config"
	"agora/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// sessionCookie carries the token for clients that rely on cookies.
const sessionCookie = "agora_session"

// tokenTTL is the lifetime of issued tokens.
const tokenTTL = 24 * time.Hour

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	logger         *slog.Logger
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       UserRepository
	postRepo       PostRepository
	commentRepo    CommentRepository
	messageRepo    MessageRepository
	now            func() time.Time
}

// NewServer creates a server over an already connected database.
func NewServer(cfg *config.Config, db *gorm.DB) *Server {
	return &Server{
		config: cfg,
		db:     db,
		logger: observability.GlobalLogger.With(slog.String("component", "devapi")),
		promMiddleware: fiberprometheus.NewWithRegistry(
			prometheus.NewRegistry(), "agora-devapi", "agora", "devapi", nil,
		),
		userRepo:    NewUserRepository(db),
		postRepo:    NewPostRepository(db),
		commentRepo: NewCommentRepository(db),
		messageRepo: NewMessageRepository(db),
		now:         time.Now,
	}
}

// App builds the fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "agora dev API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Header: "X-Request-ID"}))
	app.Use(TracingMiddleware())
	app.Use(ContextMiddleware())
	app.Use(s.promMiddleware.Middleware)
	app.Use(StructuredLogger(s.logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:4200,http://127.0.0.1:4200",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, traceparent",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	s.promMiddleware.RegisterAt(app, "/metrics")
	app.Get("/health", s.HealthCheck)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)
	auth.Post("/logout", s.Logout)

	posts := api.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Get("/:id", s.GetPost)
	posts.Post("/", s.AuthRequired, s.CreatePost)
	posts.Get("/:id/comments", s.ListComments)
	posts.Post("/:id/comments", s.AuthRequired, s.CreateComment)

	messages := api.Group("/messages")
	messages.Get("/", s.ListMessages)
	messages.Post("/", s.AuthRequired, s.CreateMessage)
}

// HealthCheck reports whether the database is reachable.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	sqlDB, err := s.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
