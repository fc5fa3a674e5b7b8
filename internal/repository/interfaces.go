package repository

import (
	"context"
	"time"

	"github.com/jtk5aw/random-image-site/internal/models"
)

// ImageRepositoryInterface defines the contract for daily image records.
type ImageRepositoryInterface interface {
	GetImage(ctx context.Context, group string, date time.Time) (*models.ImageRecord, error)
	GetRecents(ctx context.Context, group string, date time.Time, window int) ([]models.ImageRecord, error)
	SetImage(ctx context.Context, record *models.ImageRecord) error
}

// ReactionRepositoryInterface defines the contract for per-user reactions and
// the shared per-day counts record.
type ReactionRepositoryInterface interface {
	Get(ctx context.Context, group string, date time.Time, userID string) models.UserReaction
	SetReaction(ctx context.Context, group string, date time.Time, userID string, reaction models.Reaction) (models.Reaction, error)
	SetFavorite(ctx context.Context, group string, date time.Time, userID string, image string) (string, error)
	SetupCounts(ctx context.Context, group string, date time.Time) error
	GetCounts(ctx context.Context, group string, date time.Time) (map[string]int, error)
	UpdateCounts(ctx context.Context, group string, date time.Time, oldReaction, newReaction models.Reaction) (map[string]int, error)
}
