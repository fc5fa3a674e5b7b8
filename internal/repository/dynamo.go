package repository

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jtk5aw/random-image-site/internal/models"
)

// Single-table layout: PK = "<group>#<date>", SK picks the record kind.
const (
	attrPK = "PK"
	attrSK = "SK"

	sortKeyImage          = "Image"
	sortKeyReactionCounts = "ReactionCounts"

	attrReaction      = "reaction"
	attrFavoriteImage = "favorite_image"
	attrCounts        = "Counts"
)

// DynamoAPI is the slice of the DynamoDB client the repositories use.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

func partitionKey(group string, date time.Time) string {
	return group + "#" + models.FormatDate(date)
}

func recordKey(group string, date time.Time, sortKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: partitionKey(group, date)},
		attrSK: &types.AttributeValueMemberS{Value: sortKey},
	}
}
