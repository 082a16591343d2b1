// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"terrascore/internal/cache"
	"terrascore/internal/config"
	"terrascore/internal/database"
	"terrascore/internal/middleware"
	"terrascore/internal/models"
	"terrascore/internal/repository"
	"terrascore/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
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

	userRepo repository.UserRepository

	approvalService      *service.ApprovalService
	accountService       *service.AccountService
	questionnaireService *service.QuestionnaireService
	questionService      *service.QuestionService
	scoringService       *service.ScoringService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewRegistrationRequestRepository(db)
	accountRepo := repository.NewAccountRequestRepository(db)
	questionnaireRepo := repository.NewQuestionnaireRepository(db)
	questionRepo := repository.NewQuestionRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("terrascore-api"),
		userRepo:       userRepo,
	}
	server.approvalService = service.NewApprovalService(db, requestRepo, userRepo)
	server.accountService = service.NewAccountService(db, accountRepo, userRepo)
	server.questionnaireService = service.NewQuestionnaireService(questionnaireRepo)
	server.questionService = service.NewQuestionService(questionRepo, questionnaireRepo)
	server.scoringService = service.NewScoringService()

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

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
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/me", s.AuthRequired(), s.Me)
	auth.Post("/request-account", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "request_account"), s.SubmitAccountRequest)

	// Public registration workflow
	api.Post("/register-request", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register_request"), s.SubmitRegistrationRequest)
	api.Get("/check-registration-status/:email", s.CheckRegistrationStatus)

	// Public question preview for a reporting standard
	api.Get("/questions/public", s.GetPublicQuestions)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// Questionnaire library: reads for any authenticated user, writes for admins
	questionnaires := protected.Group("/questionnaires")
	questionnaires.Get("/", s.GetQuestionnaires)
	questionnaires.Get("/stats", s.GetQuestionnaireStats)
	questionnaires.Post("/", s.AdminRequired(), s.CreateQuestionnaire)
	questionnaires.Put("/:id", s.AdminRequired(), s.UpdateQuestionnaire)
	questionnaires.Delete("/:id", s.AdminRequired(), s.DeleteQuestionnaire)
	questionnaires.Get("/:id", s.GetQuestionnaire)

	// Question bank
	questions := protected.Group("/questions")
	questions.Get("/", s.GetQuestions)
	questions.Get("/categories", s.GetQuestionCategories)
	questions.Get("/stats", s.GetQuestionStats)
	questions.Post("/", s.AdminRequired(), s.CreateQuestion)
	questions.Put("/:id", s.AdminRequired(), s.UpdateQuestion)
	questions.Delete("/:id", s.AdminRequired(), s.DeleteQuestion)
	questions.Get("/:id", s.GetQuestion)

	// Assessment scoring
	assessments := protected.Group("/assessments")
	assessments.Post("/analyze", s.AnalyzeAssessment)
	assessments.Get("/dummy", s.GetDummyAssessment)

	// Admin review queues
	admin := protected.Group("/admin", s.AdminRequired())
	registrationRequests := admin.Group("/registration-requests")
	registrationRequests.Get("/", s.GetRegistrationRequests)
	registrationRequests.Get("/stats", s.GetRegistrationRequestStats)
	registrationRequests.Post("/:id/approve", s.ApproveRegistrationRequest)
	registrationRequests.Post("/:id/reject", s.RejectRegistrationRequest)

	accountRequests := admin.Group("/account-requests")
	accountRequests.Get("/", s.GetAccountRequests)
	accountRequests.Post("/:id/approve", s.ApproveAccountRequest)
	accountRequests.Post("/:id/reject", s.RejectAccountRequest)
	accountRequests.Get("/:id", s.GetAccountRequest)
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
		// The platform degrades gracefully without a cache.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "TerraScore API",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. On success it stores
// userID (uint), userRole (models.Role) and username in Locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		roleStr, ok := claims["role"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token structure - missing role"))
		}
		role, roleErr := models.ParseRole(roleStr)
		if roleErr != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid role in token"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" && s.redis != nil {
			revoked, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
			if err == nil && revoked > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		c.Locals("userID", uint(userID))
		c.Locals("userRole", role)
		if username, ok := claims["username"].(string); ok {
			c.Locals("username", username)
		}

		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// RoleRequired returns middleware allowing only the listed roles. Must be
// placed after AuthRequired so that userRole is available in Locals.
func (s *Server) RoleRequired(allowed ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("userRole").(models.Role)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("User not authenticated"))
		}
		for _, a := range allowed {
			if role == a {
				return c.Next()
			}
		}
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Insufficient permissions"))
	}
}

// AdminRequired is shorthand for RoleRequired(models.RoleAdmin).
func (s *Server) AdminRequired() fiber.Handler {
	return s.RoleRequired(models.RoleAdmin)
}

// parseID extracts a positive uint route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError(fmt.Sprintf("invalid %s parameter", name))
	}
	return uint(id), nil
}

// respondError maps an application error onto its HTTP status.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "TerraScore API",
		BodyLimit: 10 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
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
