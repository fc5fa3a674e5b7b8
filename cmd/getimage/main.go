package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jtk5aw/random-image-site/internal/functions"
	"github.com/jtk5aw/random-image-site/internal/repository"
	"github.com/jtk5aw/random-image-site/internal/service"
	"github.com/jtk5aw/random-image-site/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}

	tableName := mustEnv("TABLE_NAME")
	bucketName := mustEnv("BUCKET_NAME")
	imageDomain := mustEnv("IMAGE_DOMAIN")
	defaultGroup := envOr("IMAGE_GROUP", "discord")

	imageRepo := repository.NewImageRepository(dynamodb.NewFromConfig(cfg), tableName)
	poolStorage := storage.NewPoolStorage(s3.NewFromConfig(cfg), bucketName)
	selector := service.NewSelectorService(imageRepo, poolStorage, imageDomain)

	lambda.Start(functions.NewGetImageFunction(selector, defaultGroup).Handle)
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
