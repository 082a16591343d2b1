// Command main is the entry point for the TerraScore API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"terrascore/internal/bootstrap"
	"terrascore/internal/config"
	"terrascore/internal/models"
	"terrascore/internal/observability"
	"terrascore/internal/server"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Tracing is off unless explicitly enabled
	shutdownTracing, err := observability.InitTracing(context.Background(), observability.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		ServiceName: "terrascore-api",
		Environment: cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRate:  cfg.TracingRatio,
		UseStdout:   cfg.TracingExport == "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	// Connect DB/Redis and seed the built-in questionnaire library
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedQuestionnaires: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	// Create server with dependency injection
	srv, err := server.NewServerWithDeps(cfg, db, redisClient)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:   "TerraScore API",
		BodyLimit: 10 * 1024 * 1024, // 10MB limit
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	// Setup middleware and routes
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}

		// Shutdown server resources
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server resource shutdown error: %v", err)
		}

		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Tracing shutdown error: %v", err)
		}
	}()

	// Start server
	log.Printf("Server starting on port %s...", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
