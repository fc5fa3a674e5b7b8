package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jtk5aw/random-image-site/internal/models"
)

// ImageRepository stores one image record per (group, date).
type ImageRepository struct {
	client DynamoAPI
	table  string
}

func NewImageRepository(client DynamoAPI, table string) *ImageRepository {
	return &ImageRepository{client: client, table: table}
}

// imageItem is the DynamoDB shape of a daily image record.
type imageItem struct {
	PK                  string `dynamodbav:"PK"`
	SK                  string `dynamodbav:"SK"`
	Date                string `dynamodbav:"date"`
	ObjectKey           string `dynamodbav:"object_key"`
	GetRecents          bool   `dynamodbav:"get_recents"`
	DaysUntilGetRecents int    `dynamodbav:"days_until_get_recents"`
}

func (i imageItem) toRecord(group string) models.ImageRecord {
	return models.ImageRecord{
		Group:               group,
		Date:                i.Date,
		ObjectKey:           i.ObjectKey,
		GetRecents:          i.GetRecents,
		DaysUntilGetRecents: i.DaysUntilGetRecents,
	}
}

func (r *ImageRepository) GetImage(ctx context.Context, group string, date time.Time) (*models.ImageRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       recordKey(group, date, sortKeyImage),
	})
	if err != nil {
		return nil, fmt.Errorf("get image record: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var item imageItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("%w: image record: %v", ErrConversion, err)
	}
	if item.ObjectKey == "" {
		return nil, fmt.Errorf("%w: image record has no object key", ErrConversion)
	}

	record := item.toRecord(group)
	return &record, nil
}

// GetRecents batch-fetches the window-size days strictly preceding date.
// Days with no record are simply absent from the result.
func (r *ImageRepository) GetRecents(ctx context.Context, group string, date time.Time, window int) ([]models.ImageRecord, error) {
	keys := make([]map[string]types.AttributeValue, 0, window)
	for day := 1; day <= window; day++ {
		keys = append(keys, recordKey(group, date.AddDate(0, 0, -day), sortKeyImage))
	}

	out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
		RequestItems: map[string]types.KeysAndAttributes{
			r.table: {Keys: keys},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("batch get recent image records: %w", err)
	}

	var items []imageItem
	if err := attributevalue.UnmarshalListOfMaps(out.Responses[r.table], &items); err != nil {
		return nil, fmt.Errorf("%w: recent image records: %v", ErrConversion, err)
	}

	records := make([]models.ImageRecord, 0, len(items))
	for _, item := range items {
		records = append(records, item.toRecord(group))
	}
	return records, nil
}

// SetImage upserts the record for its (group, date). Last writer wins; the
// scheduler only fires once per day so an occasional double-write is harmless.
func (r *ImageRepository) SetImage(ctx context.Context, record *models.ImageRecord) error {
	date, err := models.ParseDate(record.Date)
	if err != nil {
		return fmt.Errorf("%w: image record date %q: %v", ErrConversion, record.Date, err)
	}

	item, err := attributevalue.MarshalMap(imageItem{
		PK:                  partitionKey(record.Group, date),
		SK:                  sortKeyImage,
		Date:                record.Date,
		ObjectKey:           record.ObjectKey,
		GetRecents:          record.GetRecents,
		DaysUntilGetRecents: record.DaysUntilGetRecents,
	})
	if err != nil {
		return fmt.Errorf("marshal image record: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put image record: %w", err)
	}
	return nil
}
