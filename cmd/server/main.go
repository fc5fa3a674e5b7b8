package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"

	"github.com/jtk5aw/random-image-site/internal/cache"
	"github.com/jtk5aw/random-image-site/internal/handlers"
	"github.com/jtk5aw/random-image-site/internal/repository"
	"github.com/jtk5aw/random-image-site/internal/service"
	"github.com/jtk5aw/random-image-site/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	tableName := os.Getenv("TABLE_NAME")
	if tableName == "" {
		log.Fatal("TABLE_NAME is required")
	}
	s3Config, err := storage.LoadS3ConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	if s3Config.ImageDomain == "" {
		log.Fatal("IMAGE_DOMAIN is required")
	}
	defaultGroup := os.Getenv("IMAGE_GROUP")
	if defaultGroup == "" {
		defaultGroup = "discord"
	}

	awsConfig, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal("Failed to load AWS config:", err)
	}
	dynamoClient := dynamodb.NewFromConfig(awsConfig)
	s3Client := s3.NewFromConfig(awsConfig)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Random Image Site Backend",
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, PUT, POST, OPTIONS",
	}))

	// Initialize Redis cache
	var redisCache *cache.RedisCache
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisPassword := os.Getenv("REDIS_PASSWORD")
		redisDB := 0
		if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
			if parsedDB, err := strconv.Atoi(dbStr); err == nil {
				redisDB = parsedDB
			}
		}
		redisCache = cache.NewRedisCache(redisAddr, redisPassword, redisDB)
		if err := redisCache.Ping(); err != nil {
			log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
			redisCache = nil
		} else {
			log.Println("Redis cache connected successfully")
		}
	}
	imageCache := cache.NewImageCache(redisCache)

	// Initialize repositories
	imageRepo := repository.NewImageRepository(dynamoClient, tableName)
	reactionRepo := repository.NewReactionRepository(dynamoClient, tableName)
	poolStorage := storage.NewPoolStorage(s3Client, s3Config.Bucket)

	// Initialize services
	selectorService := service.NewSelectorService(imageRepo, poolStorage, s3Config.ImageDomain)
	reactionService := service.NewReactionService(reactionRepo)

	// Initialize handlers
	imageHandler := handlers.NewImageHandler(selectorService, reactionService, imageCache, defaultGroup)
	reactionHandler := handlers.NewReactionHandler(reactionService, defaultGroup)

	// Routes
	api := app.Group("/api")
	api.Get("/image", imageHandler.GetImage)
	api.Get("/reaction", reactionHandler.GetReaction)
	api.Put("/reaction", reactionHandler.PutReaction)
	api.Put("/favorite", reactionHandler.PutFavorite)
	api.Post("/admin/daily-setup", imageHandler.DailySetup)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Fatal(app.Listen(":" + port))
}
