package functions

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jtk5aw/random-image-site/internal/service"
	"github.com/jtk5aw/random-image-site/internal/validation"
)

// GetImageFunction backs the image-for-today API Gateway route.
type GetImageFunction struct {
	selector     *service.SelectorService
	defaultGroup string
}

func NewGetImageFunction(selector *service.SelectorService, defaultGroup string) *GetImageFunction {
	return &GetImageFunction{selector: selector, defaultGroup: defaultGroup}
}

func (f *GetImageFunction) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: 200, Headers: defaultHeaders}, nil
	}
	if req.HTTPMethod != http.MethodGet {
		return errorResponse(405, "method not allowed")
	}

	group := requestGroup(req, f.defaultGroup)
	if !validation.ValidateGroup(group) {
		return errorResponse(400, "invalid group")
	}

	result, _, err := f.selector.DailyImage(ctx, group, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrSelectionExhausted) || errors.Is(err, service.ErrPoolExhausted) {
			log.Printf("No selectable image for group %s: %v", group, err)
			return errorResponse(503, "no image available for today")
		}
		log.Printf("Failed to resolve daily image for group %s: %v", group, err)
		return errorResponse(500, "failed to get the image for today")
	}

	return jsonResponse(200, result)
}

func requestGroup(req events.APIGatewayProxyRequest, defaultGroup string) string {
	if group, ok := req.QueryStringParameters["group"]; ok && group != "" {
		return validation.NormalizeGroup(group)
	}
	return defaultGroup
}
