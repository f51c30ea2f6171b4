// Package server contains the HTTP handlers for the Drobeo API.
package server

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	_ "drobeo/docs" // swagger docs
	"drobeo/internal/ai"
	"drobeo/internal/bootstrap"
	"drobeo/internal/config"
	"drobeo/internal/featureflags"
	"drobeo/internal/middleware"
	"drobeo/internal/models"
	"drobeo/internal/observability"
	"drobeo/internal/repository"
	"drobeo/internal/service"
	"drobeo/internal/sms"

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

// Deps are the outbound integrations of the server. Nil fields are built
// from the configuration.
type Deps struct {
	// AI is the language model client behind outfit generation, image
	// analysis and style advice.
	AI  ai.Completer
	SMS sms.Sender
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	images         *service.ImageStore

	authService           *service.AuthService
	userService           *service.UserService
	categoryService       *service.CategoryService
	closetService         *service.ClosetService
	outfitService         *service.OutfitService
	recommendationService *service.RecommendationService
	calendarService       *service.CalendarService
	wishlistService       *service.WishlistService
	adviceService         *service.AdviceService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// A nil Redis client disables caching and token revocation.
	db, rdb, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{
		ApplySchema:    true,
		SeedCategories: true,
	})
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, db, rdb, Deps{})
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, deps Deps) (*Server, error) {
	if deps.AI == nil {
		client, err := ai.NewClient(ai.Config{
			APIKey:            cfg.OpenAIAPIKey,
			BaseURL:           cfg.OpenAIBaseURL,
			Model:             cfg.OpenAIModel,
			VisionModel:       cfg.OpenAIVisionModel,
			Timeout:           cfg.AITimeout(),
			RequestsPerSecond: cfg.AIRequestsPerSecond,
		})
		if err != nil {
			return nil, fmt.Errorf("ai client: %w", err)
		}
		deps.AI = client
	}
	if deps.SMS == nil {
		sender, err := sms.New(sms.Config{
			Provider:   cfg.SMSProvider,
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			FromNumber: cfg.TwilioFromNumber,
		}, middleware.Logger)
		if err != nil {
			return nil, err
		}
		deps.SMS = sender
	}

	observability.SetLogger(middleware.Logger)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	itemRepo := repository.NewClothingItemRepository(db)
	outfitRepo := repository.NewOutfitRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	codeRepo := repository.NewPhoneVerificationRepository(db)

	stylist := ai.NewStylist(deps.AI)
	flags := featureflags.NewManager(cfg.FeatureFlags)
	images := service.NewImageStore(cfg)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("drobeo-api"),
		featureFlags:   flags,
		images:         images,
	}

	codes := service.NewVerificationService(codeRepo, deps.SMS)
	server.authService = service.NewAuthService(userRepo, codes, cfg.JWTSecret, redisClient)
	server.userService = service.NewUserService(userRepo, statsRepo)
	server.categoryService = service.NewCategoryService(categoryRepo)
	server.closetService = service.NewClosetService(itemRepo, categoryRepo, stylist, images, flags)
	server.outfitService = service.NewOutfitService(outfitRepo, itemRepo)
	server.recommendationService = service.NewRecommendationService(itemRepo, outfitRepo, userRepo, stylist, flags)
	server.calendarService = service.NewCalendarService(calendarRepo, outfitRepo)
	server.wishlistService = service.NewWishlistService(wishlistRepo, categoryRepo)
	server.adviceService = service.NewAdviceService(statsRepo, itemRepo, stylist, flags)

	return server, nil
}

// NewApp builds a Fiber app with the server's middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Drobeo API",
		// Multipart overhead on top of the largest accepted image.
		BodyLimit: int(s.images.MaxUploadBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok && fe.Code < fiber.StatusInternalServerError {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message, Code: models.CodeValidation})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err.Error())
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers. Uploaded images are loaded cross-origin by the app.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || strings.HasPrefix(c.Path(), service.MediaPrefix)
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
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Drobeo Backend Metrics Dashboard",
	}))

	api.Get("/swagger/*", swagger.HandlerDefault)

	// Stored garment photos.
	app.Static(service.MediaPrefix, s.images.Dir(), fiber.Static{
		MaxAge: 86400,
	})

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	phone := auth.Group("/phone")
	phone.Post("/send-code", middleware.RateLimit(s.redis, 5, 10*time.Minute, "send_code"), s.SendPhoneCode)
	phone.Post("/verify", middleware.RateLimit(s.redis, 10, 10*time.Minute, "verify_code"), s.VerifyPhone)
	phone.Post("/login", middleware.RateLimit(s.redis, 10, 10*time.Minute, "verify_code"), s.PhoneLogin)

	api.Get("/categories", s.GetCategories)

	// Protected routes
	authRequired := middleware.AuthRequired(s.config.JWTSecret, s.redis)
	protected := api.Group("", authRequired)

	auth.Post("/logout", authRequired, s.Logout)
	auth.Get("/me", authRequired, s.Me)

	protected.Get("/feature-flags", s.GetFeatureFlags)

	users := protected.Group("/users")
	users.Put("/me", s.UpdateMyProfile)
	users.Post("/me/onboarding", s.CompleteOnboarding)

	protected.Post("/categories", s.CreateCategory)

	// Define specific routes BEFORE generic /:id routes
	items := protected.Group("/clothing-items")
	items.Get("/", s.GetClothingItems)
	items.Post("/", s.CreateClothingItem)
	items.Get("/recent", s.GetRecentClothingItems)
	items.Post("/analyze", middleware.RateLimit(s.redis, 20, time.Minute, "analyze_image"), s.AnalyzeClothingImage)
	items.Post("/upload", middleware.RateLimit(s.redis, 20, time.Minute, "upload_image"), s.UploadClothingItem)
	items.Post("/:id/favorite", s.ToggleClothingItemFavorite)
	items.Post("/:id/wear", s.WearClothingItem)
	items.Get("/:id", s.GetClothingItem)
	items.Put("/:id", s.UpdateClothingItem)
	items.Delete("/:id", s.DeleteClothingItem)

	outfits := protected.Group("/outfits")
	outfits.Get("/", s.GetOutfits)
	outfits.Post("/", s.CreateOutfit)
	outfits.Post("/generate", middleware.RateLimit(s.redis, 10, time.Minute, "generate_outfits"), s.GenerateOutfits)
	outfits.Post("/:id/favorite", s.ToggleOutfitFavorite)
	outfits.Post("/:id/wear", s.WearOutfit)
	outfits.Get("/:id", s.GetOutfit)
	outfits.Put("/:id", s.UpdateOutfit)
	outfits.Delete("/:id", s.DeleteOutfit)

	calendar := protected.Group("/calendar")
	calendar.Get("/", s.GetCalendar)
	calendar.Post("/", s.CreateCalendarEntry)
	calendar.Put("/:id", s.UpdateCalendarEntry)
	calendar.Delete("/:id", s.DeleteCalendarEntry)

	wishlist := protected.Group("/wishlist")
	wishlist.Get("/", s.GetWishlist)
	wishlist.Post("/", s.CreateWishlistItem)
	wishlist.Put("/:id", s.UpdateWishlistItem)
	wishlist.Delete("/:id", s.DeleteWishlistItem)

	protected.Get("/stats", s.GetStats)
	protected.Post("/style-advice", middleware.RateLimit(s.redis, 20, time.Minute, "style_advice"), s.GetStyleAdvice)
}

// LivenessCheck reports that the process is up
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database and Redis are reachable
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

	// Redis only backs caching, revocation and rate limits, so its absence
	// degrades the service without making it unready.
	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Drobeo API",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	log.Printf("Server starting on port %s...", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
