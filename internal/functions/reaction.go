package functions

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/jtk5aw/random-image-site/internal/models"
	"github.com/jtk5aw/random-image-site/internal/service"
	"github.com/jtk5aw/random-image-site/internal/validation"
)

// ReactionFunction backs the reaction API Gateway route (GET and PUT).
type ReactionFunction struct {
	reactions    *service.ReactionService
	defaultGroup string
}

func NewReactionFunction(reactions *service.ReactionService, defaultGroup string) *ReactionFunction {
	return &ReactionFunction{reactions: reactions, defaultGroup: defaultGroup}
}

func (f *ReactionFunction) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch req.HTTPMethod {
	case http.MethodOptions:
		return events.APIGatewayProxyResponse{StatusCode: 200, Headers: defaultHeaders}, nil
	case http.MethodGet:
		return f.handleGet(ctx, req)
	case http.MethodPut:
		return f.handlePut(ctx, req)
	default:
		return errorResponse(405, "method not allowed")
	}
}

type reactionState struct {
	UUID          string         `json:"uuid"`
	Reaction      string         `json:"reaction"`
	FavoriteImage string         `json:"favorite_image"`
	Counts        map[string]int `json:"counts"`
}

func (f *ReactionFunction) handleGet(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	group := requestGroup(req, f.defaultGroup)
	if !validation.ValidateGroup(group) {
		return errorResponse(400, "invalid group")
	}

	userID := req.QueryStringParameters["uuid"]
	if userID == "" {
		userID = uuid.NewString()
	} else if !validation.ValidateUserID(userID) {
		return errorResponse(400, "invalid uuid")
	}

	state := f.reactions.Get(ctx, group, time.Now(), userID)

	return jsonResponse(200, reactionState{
		UUID:          userID,
		Reaction:      state.Reaction.String(),
		FavoriteImage: state.FavoriteImage,
		Counts:        state.Counts,
	})
}

type putReactionBody struct {
	UUID     string `json:"uuid"`
	Reaction string `json:"reaction"`
}

type putReactionResult struct {
	UUID     string         `json:"uuid"`
	Reaction string         `json:"reaction"`
	Counts   map[string]int `json:"counts"`
}

func (f *ReactionFunction) handlePut(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	group := requestGroup(req, f.defaultGroup)
	if !validation.ValidateGroup(group) {
		return errorResponse(400, "invalid group")
	}

	var body putReactionBody
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return errorResponse(400, "invalid request body")
	}
	if !validation.ValidateUserID(body.UUID) {
		return errorResponse(400, "invalid uuid")
	}

	reaction, err := models.ParseReaction(body.Reaction)
	if err != nil {
		return errorResponse(400, "unknown reaction")
	}

	today := time.Now()

	oldReaction, err := f.reactions.SetReaction(ctx, group, today, body.UUID, reaction)
	if err != nil {
		if errors.Is(err, service.ErrDeprecatedReaction) {
			return errorResponse(400, "reaction can no longer be set")
		}
		log.Printf("Failed to set reaction for user %s: %v", body.UUID, err)
		return errorResponse(500, "failed to set the reaction")
	}

	counts, err := f.reactions.UpdateCounts(ctx, group, today, oldReaction, reaction)
	if err != nil {
		log.Printf("Failed to update counts for group %s: %v", group, err)
		return errorResponse(500, "failed to update the counts")
	}

	return jsonResponse(200, putReactionResult{
		UUID:     body.UUID,
		Reaction: reaction.String(),
		Counts:   counts,
	})
}
