package functions

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jtk5aw/random-image-site/internal/service"
	"github.com/jtk5aw/random-image-site/internal/validation"
)

// FavoriteFunction backs the favorite-image API Gateway route.
type FavoriteFunction struct {
	reactions    *service.ReactionService
	defaultGroup string
}

func NewFavoriteFunction(reactions *service.ReactionService, defaultGroup string) *FavoriteFunction {
	return &FavoriteFunction{reactions: reactions, defaultGroup: defaultGroup}
}

type putFavoriteBody struct {
	UUID          string `json:"uuid"`
	FavoriteImage string `json:"favorite_image"`
}

type putFavoriteResult struct {
	UUID          string `json:"uuid"`
	FavoriteImage string `json:"favorite_image"`
}

func (f *FavoriteFunction) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: 200, Headers: defaultHeaders}, nil
	}
	if req.HTTPMethod != http.MethodPut {
		return errorResponse(405, "method not allowed")
	}

	group := requestGroup(req, f.defaultGroup)
	if !validation.ValidateGroup(group) {
		return errorResponse(400, "invalid group")
	}

	var body putFavoriteBody
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return errorResponse(400, "invalid request body")
	}
	if !validation.ValidateUserID(body.UUID) {
		return errorResponse(400, "invalid uuid")
	}
	if !validation.ValidateObjectKey(body.FavoriteImage) {
		return errorResponse(400, "invalid favorite image")
	}

	stored, err := f.reactions.SetFavorite(ctx, group, time.Now(), body.UUID, body.FavoriteImage)
	if err != nil {
		log.Printf("Failed to set favorite for user %s: %v", body.UUID, err)
		return errorResponse(500, "failed to set the favorite image")
	}

	return jsonResponse(200, putFavoriteResult{
		UUID:          body.UUID,
		FavoriteImage: stored,
	})
}
