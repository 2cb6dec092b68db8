package files

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of *dynamodb.Client used by DynamoRepo.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// fileItem is one row of the FileMetadata table.
type fileItem struct {
	FileID     string `dynamodbav:"fileId"`
	FileName   string `dynamodbav:"fileName"`
	UploadTime string `dynamodbav:"uploadTime"`
}

// DynamoRepo implements Repo on a DynamoDB table keyed by fileId.
type DynamoRepo struct {
	Client DynamoAPI
	Table  string
}

// NewDynamoRepo constructs a DynamoRepo for the given table.
func NewDynamoRepo(client DynamoAPI, table string) *DynamoRepo {
	return &DynamoRepo{Client: client, Table: table}
}

// Create writes the record with PutItem.
func (r *DynamoRepo) Create(ctx context.Context, rec FileRecord) error {
	item, err := attributevalue.MarshalMap(fileItem{
		FileID:     rec.ID,
		FileName:   rec.FileName,
		UploadTime: formatUploadTime(rec.UploadTime),
	})
	if err != nil {
		return fmt.Errorf("marshal file item: %w", err)
	}
	_, err = r.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.Table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamodb put item table=%s fileId=%s: %w", r.Table, rec.ID, err)
	}
	return nil
}

// GetByID reads the record with GetItem. A missing item is ErrNotFound.
func (r *DynamoRepo) GetByID(ctx context.Context, id string) (FileRecord, error) {
	out, err := r.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.Table),
		Key: map[string]types.AttributeValue{
			"fileId": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return FileRecord{}, fmt.Errorf("dynamodb get item table=%s fileId=%s: %w", r.Table, id, err)
	}
	if len(out.Item) == 0 {
		return FileRecord{}, ErrNotFound
	}

	var item fileItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return FileRecord{}, fmt.Errorf("unmarshal file item: %w", err)
	}
	rec := FileRecord{ID: item.FileID, FileName: item.FileName}
	if item.UploadTime != "" {
		if ts, err := time.Parse(time.RFC3339Nano, item.UploadTime); err == nil {
			rec.UploadTime = ts
		}
	}
	return rec, nil
}

func formatUploadTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
