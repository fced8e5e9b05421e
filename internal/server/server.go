// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"time"

	"zxyspace/internal/auth"
	"zxyspace/internal/bootstrap"
	"zxyspace/internal/cache"
	"zxyspace/internal/config"
	"zxyspace/internal/middleware"
	"zxyspace/internal/repository"
	"zxyspace/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	tokens          *auth.TokenService
	userRepo        repository.UserRepository
	postRepo        repository.PostRepository
	commentRepo     repository.CommentRepository
	categoryRepo    repository.CategoryRepository
	tagRepo         repository.TagRepository
	userService     *service.UserService
	postService     *service.PostService
	commentService  *service.CommentService
	categoryService *service.CategoryService
	tagService      *service.TagService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tagRepo := repository.NewTagRepository(db)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())

	server := &Server{
		config:       cfg,
		db:           db,
		redis:        redisClient,
		tokens:       tokens,
		userRepo:     userRepo,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
	}
	server.userService = service.NewUserService(userRepo, tokens)
	server.postService = service.NewPostService(postRepo, commentRepo, categoryRepo, tagRepo, userRepo)
	server.commentService = service.NewCommentService(commentRepo, postRepo, userRepo)
	server.categoryService = service.NewCategoryService(categoryRepo)
	server.tagService = service.NewTagService(tagRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Bearer token resolution. Never aborts; bad tokens degrade to anonymous
	// and RequireAuth gates the protected routes.
	app.Use(middleware.Authenticate(s.tokens, s.userRepo))

	// Global rate limiting (100 requests per minute per IP)
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
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	api := app.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Public post routes. Specific routes go before the generic /:id route.
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchPosts)
	posts.Get("/recent", s.GetRecentPosts)
	posts.Get("/popular", s.GetPopularPosts)
	posts.Get("/author/:authorId", s.GetPostsByAuthor)
	posts.Get("/category/:categoryId", s.GetPostsByCategory)
	posts.Get("/tag/:tagId", s.GetPostsByTag)
	posts.Get("/:id", s.GetPost)

	// Public comment routes
	comments := api.Group("/comments")
	comments.Get("/post/:postId/page", s.GetPostCommentsPaged)
	comments.Get("/post/:postId", s.GetPostComments)
	comments.Get("/user/:userId", s.GetUserComments)
	comments.Get("/count/post/:postId", s.GetPostCommentCount)
	comments.Get("/:id", s.GetComment)

	// Public taxonomy routes
	categories := api.Group("/categories")
	categories.Get("/", s.GetCategories)
	categories.Get("/name/:name", s.GetCategoryByName)
	categories.Get("/:id", s.GetCategory)

	tags := api.Group("/tags")
	tags.Get("/", s.GetTags)
	tags.Get("/ids", s.GetTagsByIDs)
	tags.Get("/names", s.GetTagsByNames)
	tags.Get("/name/:name", s.GetTagByName)
	tags.Get("/:id", s.GetTag)

	// Public availability checks used by signup forms
	users := api.Group("/users")
	users.Get("/check/username/:username", s.CheckUsername)
	users.Get("/check/email/:email", s.CheckEmail)

	// Protected routes
	protected := api.Group("", middleware.RequireAuth())

	authedPosts := protected.Group("/posts")
	authedPosts.Post("/author/:authorId", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	authedPosts.Post("/:id/view", s.ViewPost)
	authedPosts.Post("/:id/like", s.LikePost)
	authedPosts.Post("/:id/unlike", s.UnlikePost)
	authedPosts.Put("/:id", s.UpdatePost)
	authedPosts.Delete("/:id", s.DeletePost)

	authedComments := protected.Group("/comments")
	authedComments.Post("/post/:postId/user/:userId", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	authedComments.Post("/:id/like", s.LikeComment)
	authedComments.Post("/:id/unlike", s.UnlikeComment)
	authedComments.Put("/:id", s.UpdateComment)
	authedComments.Delete("/:id", s.DeleteComment)

	authedCategories := protected.Group("/categories")
	authedCategories.Post("/", s.CreateCategory)
	authedCategories.Put("/:id", s.UpdateCategory)
	authedCategories.Delete("/:id", s.DeleteCategory)

	authedTags := protected.Group("/tags")
	authedTags.Post("/", s.CreateTag)
	authedTags.Put("/:id", s.UpdateTag)
	authedTags.Delete("/:id", s.DeleteTag)

	authedUsers := protected.Group("/users")
	authedUsers.Get("/", s.GetUsers)
	authedUsers.Post("/", middleware.RequireAdmin(), s.CreateUser)
	authedUsers.Get("/username/:username", s.GetUserByUsername)
	authedUsers.Get("/email/:email", s.GetUserByEmail)
	authedUsers.Get("/:id", s.GetUser)
	authedUsers.Put("/:id", s.UpdateUser)
	authedUsers.Delete("/:id", middleware.RequireAdmin(), s.DeleteUser)
}

// Shutdown releases server-held resources after the HTTP listener has drained.
func (s *Server) Shutdown(ctx context.Context) error {
	cache.Close()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The API stays usable without Redis, caching just goes cold.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}
