package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pitwall/internal/config"
	"pitwall/internal/database"
	"pitwall/internal/ergast"
	"pitwall/internal/genai"
	"pitwall/internal/handlers"
	"pitwall/internal/jobs"
	"pitwall/internal/logging"
	"pitwall/internal/middleware"
	"pitwall/internal/services"
	"pitwall/pkg/auth"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting PitWall server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Season: %d)", cfg.Port, cfg.Season)

	if cfg.MongoURI == "" {
		log.Fatal("❌ MONGODB_URI environment variable is required")
	}

	db, err := database.NewMongoDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer db.Close(context.Background())

	if err := db.Initialize(context.Background()); err != nil {
		log.Fatalf("❌ Failed to initialize MongoDB: %v", err)
	}

	// Layered read cache (Redis optional)
	cache, err := services.NewCacheService(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Failed to initialize cache: %v", err)
	}
	defer cache.Close()

	// JWT verification for the bearer credentials minted by the identity provider
	environment := os.Getenv("ENVIRONMENT")
	if cfg.JWTSecret == "" && environment == "production" {
		log.Fatal("❌ JWT_SECRET is required in production")
	}
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "dev-secret"
		log.Println("⚠️  JWT_SECRET not set, using development secret")
	}
	jwtAuth, err := auth.NewJWTAuth(jwtSecret, 0)
	if err != nil {
		log.Fatalf("❌ Failed to initialize auth: %v", err)
	}

	// Seed reference data (idempotent)
	seedService := services.NewSeedService(db)
	if err := seedService.Run(context.Background(), cfg.SeedFile); err != nil {
		log.Fatalf("❌ Failed to seed reference data: %v", err)
	}

	metrics := services.InitMetrics()

	// Sync job: provider client + atomic Mongo store
	provider := ergast.NewClient(cfg.ErgastBaseURL, time.Duration(cfg.FetchTimeoutMS)*time.Millisecond)
	syncStore := services.NewMongoSyncStore(db)
	syncService := services.NewSyncService(provider, syncStore, cache, metrics, cfg.Season)
	syncJob := jobs.NewF1SyncJob(syncService)

	// Chat proxy: grounded generative upstream + profile persistence
	userService := services.NewUserService(db)
	genaiClient := genai.NewClient(cfg.GenAIBaseURL, cfg.GenAIAPIKey, cfg.GenAIModel)
	chatService := services.NewChatService(genaiClient, userService, metrics, cfg.Season)

	commentService := services.NewCommentService(db)
	predictionService := services.NewPredictionService(db)

	// Scheduler: daily sync at the configured UTC hour
	scheduler, err := jobs.NewScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create scheduler: %v", err)
	}
	if err := scheduler.RegisterDaily(jobs.F1SyncJobName, cfg.SyncHourUTC, syncJob.Run); err != nil {
		log.Fatalf("❌ Failed to register sync job: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "PitWall",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	// CORS allow-list; preflights are answered here without side effects
	allowedOrigins := cfg.AllowedOrigins
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
	}))
	log.Printf("🔒 [SECURITY] CORS allowed origins: %s", allowedOrigins)

	prometheus := fiberprometheus.New("pitwall")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db)
	referenceHandler := handlers.NewReferenceHandler(db, cache)
	chatHandler := handlers.NewChatHandler(chatService, userService)
	commentHandler := handlers.NewCommentHandler(commentService, userService)
	predictionHandler := handlers.NewPredictionHandler(predictionService)
	userHandler := handlers.NewUserHandler(userService)
	syncHandler := handlers.NewSyncHandler(syncJob)

	app.Get("/health", healthHandler.Handle)

	api := app.Group("/api")

	// Public reads
	api.Get("/drivers", referenceHandler.ListDrivers)
	api.Get("/teams", referenceHandler.ListTeams)
	api.Get("/races", referenceHandler.ListRaces)
	api.Get("/results/:key", referenceHandler.GetResult)
	api.Get("/standings/:kind", referenceHandler.GetStandings)
	api.Get("/races/:raceId/comments", commentHandler.List)
	api.Get("/races/:raceId/predictions", predictionHandler.List)

	// Authenticated routes
	authed := api.Group("", middleware.AuthMiddleware(jwtAuth))
	authed.Post("/chat", chatHandler.Ask)
	authed.Get("/user/profile", userHandler.GetProfile)
	authed.Put("/user/favourite-driver", userHandler.SetFavouriteDriver)
	authed.Post("/races/:raceId/comments", commentHandler.Create)
	authed.Get("/races/:raceId/prediction", predictionHandler.Mine)
	authed.Post("/predictions", predictionHandler.Create)

	// Admin tooling
	admin := api.Group("/admin", middleware.AuthMiddleware(jwtAuth), middleware.AdminMiddleware())
	admin.Post("/sync", syncHandler.Trigger)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️  Server shutdown error: %v", err)
		}
	}()

	log.Printf("🌐 Listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}

	log.Println("✅ Server stopped")
}
