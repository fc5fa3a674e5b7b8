package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jtk5aw/random-image-site/internal/httpx"
	"github.com/jtk5aw/random-image-site/internal/models"
	"github.com/jtk5aw/random-image-site/internal/service"
	"github.com/jtk5aw/random-image-site/internal/validation"
)

type ReactionHandler struct {
	reactions    *service.ReactionService
	defaultGroup string
}

func NewReactionHandler(reactions *service.ReactionService, defaultGroup string) *ReactionHandler {
	return &ReactionHandler{reactions: reactions, defaultGroup: defaultGroup}
}

func (h *ReactionHandler) group(c *fiber.Ctx) (string, bool) {
	group := validation.NormalizeGroup(c.Query("group", h.defaultGroup))
	return group, validation.ValidateGroup(group)
}

type reactionResponse struct {
	UUID          string         `json:"uuid"`
	Reaction      string         `json:"reaction"`
	FavoriteImage string         `json:"favorite_image"`
	Counts        map[string]int `json:"counts"`
}

// GetReaction returns the caller's reaction state for today. Callers without a
// uuid get a fresh one to persist client-side.
func (h *ReactionHandler) GetReaction(c *fiber.Ctx) error {
	group, ok := h.group(c)
	if !ok {
		return httpx.BadRequest(c, "invalid_group", "Invalid group")
	}

	userID := c.Query("uuid")
	if userID == "" {
		userID = uuid.NewString()
	} else if !validation.ValidateUserID(userID) {
		return httpx.BadRequest(c, "invalid_uuid", "Invalid uuid")
	}

	state := h.reactions.Get(c.Context(), group, time.Now(), userID)

	return c.JSON(reactionResponse{
		UUID:          userID,
		Reaction:      state.Reaction.String(),
		FavoriteImage: state.FavoriteImage,
		Counts:        state.Counts,
	})
}

type putReactionRequest struct {
	UUID     string `json:"uuid"`
	Reaction string `json:"reaction"`
}

type putReactionResponse struct {
	UUID     string         `json:"uuid"`
	Reaction string         `json:"reaction"`
	Counts   map[string]int `json:"counts"`
}

// PutReaction sets the caller's reaction for today and reconciles the day's
// counts.
func (h *ReactionHandler) PutReaction(c *fiber.Ctx) error {
	group, ok := h.group(c)
	if !ok {
		return httpx.BadRequest(c, "invalid_group", "Invalid group")
	}

	var input putReactionRequest
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if !validation.ValidateUserID(input.UUID) {
		return httpx.BadRequest(c, "invalid_uuid", "Invalid uuid")
	}

	reaction, err := models.ParseReaction(input.Reaction)
	if err != nil {
		return httpx.BadRequest(c, "unknown_reaction", "Unknown reaction")
	}

	today := time.Now()

	oldReaction, err := h.reactions.SetReaction(c.Context(), group, today, input.UUID, reaction)
	if err != nil {
		if errors.Is(err, service.ErrDeprecatedReaction) {
			return httpx.BadRequest(c, "deprecated_reaction", "Reaction can no longer be set")
		}
		log.Printf("Failed to set reaction for user %s: %v", input.UUID, err)
		return httpx.Internal(c, "set_reaction_failed")
	}

	counts, err := h.reactions.UpdateCounts(c.Context(), group, today, oldReaction, reaction)
	if err != nil {
		log.Printf("Failed to update counts for group %s: %v", group, err)
		return httpx.Internal(c, "update_counts_failed")
	}

	return c.JSON(putReactionResponse{
		UUID:     input.UUID,
		Reaction: reaction.String(),
		Counts:   counts,
	})
}

type putFavoriteRequest struct {
	UUID          string `json:"uuid"`
	FavoriteImage string `json:"favorite_image"`
}

type putFavoriteResponse struct {
	UUID          string `json:"uuid"`
	FavoriteImage string `json:"favorite_image"`
}

// PutFavorite pins the caller's favorite image for today. The first write
// wins; later writes return the already pinned image.
func (h *ReactionHandler) PutFavorite(c *fiber.Ctx) error {
	group, ok := h.group(c)
	if !ok {
		return httpx.BadRequest(c, "invalid_group", "Invalid group")
	}

	var input putFavoriteRequest
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if !validation.ValidateUserID(input.UUID) {
		return httpx.BadRequest(c, "invalid_uuid", "Invalid uuid")
	}
	if !validation.ValidateObjectKey(input.FavoriteImage) {
		return httpx.BadRequest(c, "invalid_favorite_image", "Invalid favorite image")
	}

	stored, err := h.reactions.SetFavorite(c.Context(), group, time.Now(), input.UUID, input.FavoriteImage)
	if err != nil {
		log.Printf("Failed to set favorite for user %s: %v", input.UUID, err)
		return httpx.Internal(c, "set_favorite_failed")
	}

	return c.JSON(putFavoriteResponse{
		UUID:          input.UUID,
		FavoriteImage: stored,
	})
}
