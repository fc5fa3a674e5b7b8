package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jtk5aw/random-image-site/internal/models"
	"github.com/jtk5aw/random-image-site/internal/repository"
)

// ErrDeprecatedReaction is returned when a client tries to set a reaction that
// is kept only for historical records.
var ErrDeprecatedReaction = errors.New("reaction is deprecated and can no longer be set")

type ReactionService struct {
	reactions repository.ReactionRepositoryInterface
}

func NewReactionService(reactions repository.ReactionRepositoryInterface) *ReactionService {
	return &ReactionService{reactions: reactions}
}

// UserState is everything the read surface returns for a user and day.
type UserState struct {
	Reaction      models.Reaction `json:"reaction"`
	FavoriteImage string          `json:"favorite_image"`
	Counts        map[string]int  `json:"counts"`
}

// Get returns the user's reaction, favorite and the day's counts. Absence and
// store failures degrade to defaults; a fresh day looks like an empty one.
func (s *ReactionService) Get(ctx context.Context, group string, date time.Time, userID string) UserState {
	user := s.reactions.Get(ctx, group, date, userID)

	counts, err := s.reactions.GetCounts(ctx, group, date)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("WARNING: failed to read counts for group %s: %v. Returning empty counts.", group, err)
		}
		counts = map[string]int{}
	}

	return UserState{
		Reaction:      user.Reaction,
		FavoriteImage: user.FavoriteImage,
		Counts:        counts,
	}
}

// SetReaction records the user's reaction and returns the previous one
// (NoReaction for a first write). Deprecated reactions are rejected.
func (s *ReactionService) SetReaction(ctx context.Context, group string, date time.Time, userID string, reaction models.Reaction) (models.Reaction, error) {
	if reaction.Deprecated() {
		return models.NoReaction, fmt.Errorf("%w: %s", ErrDeprecatedReaction, reaction)
	}
	return s.reactions.SetReaction(ctx, group, date, userID, reaction)
}

// UpdateCounts reconciles the day's counts after a reaction change. Unchanged
// reactions are a no-op that just returns the current counts.
func (s *ReactionService) UpdateCounts(ctx context.Context, group string, date time.Time, oldReaction, newReaction models.Reaction) (map[string]int, error) {
	if oldReaction == newReaction {
		counts, err := s.reactions.GetCounts(ctx, group, date)
		if errors.Is(err, repository.ErrNotFound) {
			return map[string]int{}, nil
		}
		return counts, err
	}

	// First user of the day may beat the scheduler here; initialize the
	// counts record before touching its entries.
	if err := s.reactions.SetupCounts(ctx, group, date); err != nil {
		return nil, err
	}
	return s.reactions.UpdateCounts(ctx, group, date, oldReaction, newReaction)
}

// SetupCounts idempotently creates the day's counts record.
func (s *ReactionService) SetupCounts(ctx context.Context, group string, date time.Time) error {
	return s.reactions.SetupCounts(ctx, group, date)
}

// SetFavorite pins the user's favorite image for the day. The first write
// wins; the stored value is returned either way.
func (s *ReactionService) SetFavorite(ctx context.Context, group string, date time.Time, userID string, image string) (string, error) {
	previous, err := s.reactions.SetFavorite(ctx, group, date, userID, image)
	if err != nil {
		return "", err
	}
	if previous != "" {
		return previous, nil
	}
	return image, nil
}
