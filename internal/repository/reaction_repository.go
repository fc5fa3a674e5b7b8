package repository

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jtk5aw/random-image-site/internal/models"
)

// ReactionRepository stores per-user reactions plus the shared per-day counts
// record (sort key "ReactionCounts"). Counter updates lean on DynamoDB's
// atomic arithmetic update expressions so concurrent requests for the same day
// don't lose updates.
type ReactionRepository struct {
	client DynamoAPI
	table  string
}

func NewReactionRepository(client DynamoAPI, table string) *ReactionRepository {
	return &ReactionRepository{client: client, table: table}
}

// Get returns the user's state for the day. Absence and store failures both
// degrade to the defaults; the read path never surfaces an error.
func (r *ReactionRepository) Get(ctx context.Context, group string, date time.Time, userID string) models.UserReaction {
	defaults := models.UserReaction{Reaction: models.NoReaction, FavoriteImage: ""}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       recordKey(group, date, userID),
	})
	if err != nil {
		log.Printf("WARNING: failed to read reaction for user %s: %v. Returning defaults.", userID, err)
		return defaults
	}
	if out.Item == nil {
		return defaults
	}

	result := defaults
	if av, ok := out.Item[attrReaction].(*types.AttributeValueMemberS); ok {
		if reaction, err := models.ParseReaction(av.Value); err == nil {
			result.Reaction = reaction
		}
	}
	if av, ok := out.Item[attrFavoriteImage].(*types.AttributeValueMemberS); ok {
		result.FavoriteImage = av.Value
	}
	return result
}

// SetReaction overwrites the user's reaction and returns the previous one.
// A first-ever write creates the record; the missing prior value comes back as
// NoReaction rather than an error.
func (r *ReactionRepository) SetReaction(ctx context.Context, group string, date time.Time, userID string, reaction models.Reaction) (models.Reaction, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.table),
		Key:              recordKey(group, date, userID),
		UpdateExpression: aws.String("SET reaction = :new_reaction"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new_reaction": &types.AttributeValueMemberS{Value: reaction.String()},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return models.NoReaction, fmt.Errorf("update reaction: %w", err)
	}

	av, ok := out.Attributes[attrReaction].(*types.AttributeValueMemberS)
	if !ok {
		// First write for this user and day.
		return models.NoReaction, nil
	}
	oldReaction, err := models.ParseReaction(av.Value)
	if err != nil {
		return models.NoReaction, fmt.Errorf("%w: stored reaction: %v", ErrConversion, err)
	}
	return oldReaction, nil
}

// SetFavorite records the user's favorite image with first-write-wins
// semantics and returns the previously stored value ("" if none).
func (r *ReactionRepository) SetFavorite(ctx context.Context, group string, date time.Time, userID string, image string) (string, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.table),
		Key:              recordKey(group, date, userID),
		UpdateExpression: aws.String("SET favorite_image = if_not_exists(favorite_image, :new_favorite_image)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new_favorite_image": &types.AttributeValueMemberS{Value: image},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return "", fmt.Errorf("update favorite image: %w", err)
	}

	if av, ok := out.Attributes[attrFavoriteImage].(*types.AttributeValueMemberS); ok {
		return av.Value, nil
	}
	return "", nil
}

// SetupCounts creates the day's counts record with every counted reaction at
// zero. if_not_exists keeps it idempotent: existing counts are never reset.
func (r *ReactionRepository) SetupCounts(ctx context.Context, group string, date time.Time) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.table),
		Key:              recordKey(group, date, sortKeyReactionCounts),
		UpdateExpression: aws.String("SET #counts = if_not_exists(#counts, :counts_map)"),
		ExpressionAttributeNames: map[string]string{
			"#counts": attrCounts,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":counts_map": startingCountsAttribute(),
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return fmt.Errorf("set up counts record: %w", err)
	}
	return nil
}

func (r *ReactionRepository) GetCounts(ctx context.Context, group string, date time.Time) (map[string]int, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       recordKey(group, date, sortKeyReactionCounts),
	})
	if err != nil {
		return nil, fmt.Errorf("get counts record: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	return parseCounts(out.Item)
}

// UpdateCounts increments the new reaction's entry and decrements the old one
// in a single update expression. NoReaction is not tracked in the map, so its
// side of the update is skipped; callers short-circuit old == new before here.
func (r *ReactionRepository) UpdateCounts(ctx context.Context, group string, date time.Time, oldReaction, newReaction models.Reaction) (map[string]int, error) {
	names := map[string]string{"#counts": attrCounts}
	var clauses []string
	if newReaction != models.NoReaction {
		names["#new_reaction"] = newReaction.String()
		clauses = append(clauses, "#counts.#new_reaction = #counts.#new_reaction + :count")
	}
	if oldReaction != models.NoReaction {
		names["#old_reaction"] = oldReaction.String()
		clauses = append(clauses, "#counts.#old_reaction = #counts.#old_reaction - :count")
	}
	if len(clauses) == 0 {
		return r.GetCounts(ctx, group, date)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.table),
		Key:                      recordKey(group, date, sortKeyReactionCounts),
		UpdateExpression:         aws.String("SET " + strings.Join(clauses, ", ")),
		ExpressionAttributeNames: names,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":count": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("update counts record: %w", err)
	}
	return parseCounts(out.Attributes)
}

func startingCountsAttribute() types.AttributeValue {
	counts := make(map[string]types.AttributeValue)
	for name, count := range models.StartingCounts() {
		counts[name] = &types.AttributeValueMemberN{Value: strconv.Itoa(count)}
	}
	return &types.AttributeValueMemberM{Value: counts}
}

func parseCounts(item map[string]types.AttributeValue) (map[string]int, error) {
	countsAttr, ok := item[attrCounts].(*types.AttributeValueMemberM)
	if !ok {
		return nil, fmt.Errorf("%w: counts attribute missing or not a map", ErrConversion)
	}

	counts := make(map[string]int, len(countsAttr.Value))
	for name, av := range countsAttr.Value {
		number, ok := av.(*types.AttributeValueMemberN)
		if !ok {
			return nil, fmt.Errorf("%w: count for %q is not numeric", ErrConversion, name)
		}
		count, err := strconv.Atoi(number.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: count for %q: %v", ErrConversion, name, err)
		}
		counts[name] = count
	}
	return counts, nil
}
