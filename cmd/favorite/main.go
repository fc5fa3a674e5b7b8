package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jtk5aw/random-image-site/internal/functions"
	"github.com/jtk5aw/random-image-site/internal/repository"
	"github.com/jtk5aw/random-image-site/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}

	tableName := mustEnv("TABLE_NAME")
	defaultGroup := envOr("IMAGE_GROUP", "discord")

	reactionRepo := repository.NewReactionRepository(dynamodb.NewFromConfig(cfg), tableName)
	reactions := service.NewReactionService(reactionRepo)

	lambda.Start(functions.NewFavoriteFunction(reactions, defaultGroup).Handle)
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("%s must be set in this function's environment variables", key)
	}
	return value
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
