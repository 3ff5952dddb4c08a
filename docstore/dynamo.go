package docstore

import (
	"context"
	"errors"
	"fmt"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/kiezwerk/kiez/catalog"
)

// DynamoConfig holds construction parameters for the DynamoDB backend.
type DynamoConfig struct {
	Region string
	Table  string
}

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Dynamo persists the catalog as a single DynamoDB item. Saves are
// conditioned on the revision the document itself carries, so a racing
// writer in another process fails its save instead of silently clobbering
// ours.
type Dynamo struct {
	client DynamoAPI
	table  string
}

const dynamoDocumentPK = "catalog"

// dynamoRecord is the single-item shape of the persisted document.
type dynamoRecord struct {
	PK        string             `json:"pk"`
	Revision  string             `json:"revision"`
	Districts []catalog.District `json:"districts"`
}

// NewDynamo creates a DynamoDB-backed document store using the default AWS
// credentials chain.
func NewDynamo(ctx context.Context, cfg DynamoConfig) (*Dynamo, error) {
	if cfg.Table == "" {
		return nil, fmt.Errorf("docstore: dynamodb table required")
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("docstore: load aws config: %w", err)
	}
	return NewDynamoWithClient(dynamodb.NewFromConfig(awsCfg), cfg.Table), nil
}

// NewDynamoWithClient creates a Dynamo store around an existing client,
// mostly for tests.
func NewDynamoWithClient(client DynamoAPI, table string) *Dynamo {
	return &Dynamo{client: client, table: table}
}

// Load fetches the catalog item with a consistent read. A missing item is
// an empty catalog.
func (d *Dynamo) Load(ctx context.Context) (catalog.Document, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: dynamoDocumentPK},
		},
	})
	if err != nil {
		return catalog.Document{}, fmt.Errorf("%w: get item from %s: %v", catalog.ErrStorageUnavailable, d.table, err)
	}
	if out.Item == nil {
		return catalog.Document{}, nil
	}

	var rec dynamoRecord
	err = attributevalue.UnmarshalMapWithOptions(out.Item, &rec, func(o *attributevalue.DecoderOptions) {
		o.TagKey = "json"
	})
	if err != nil {
		return catalog.Document{}, fmt.Errorf("%w: decode item from %s: %v", catalog.ErrStorageUnavailable, d.table, err)
	}
	return catalog.Document{Revision: rec.Revision, Districts: rec.Districts}, nil
}

// Save replaces the catalog item, conditioned on doc.Revision, the revision
// the caller loaded its document at. A condition failure means another
// writer got in between; the caller's operation fails without any partial
// state left behind.
func (d *Dynamo) Save(ctx context.Context, doc catalog.Document) error {
	rec := dynamoRecord{
		PK:        dynamoDocumentPK,
		Revision:  uuid.New().String(),
		Districts: doc.Districts,
	}
	item, err := attributevalue.MarshalMapWithOptions(rec, func(o *attributevalue.EncoderOptions) {
		o.TagKey = "json"
	})
	if err != nil {
		return fmt.Errorf("%w: encode document: %v", catalog.ErrStorageUnavailable, err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	}
	if doc.Revision == "" {
		input.ConditionExpression = aws.String("attribute_not_exists(pk)")
	} else {
		input.ConditionExpression = aws.String("revision = :rev")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":rev": &types.AttributeValueMemberS{Value: doc.Revision},
		}
	}

	if _, err := d.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("%w: document modified by another writer", catalog.ErrStorageUnavailable)
		}
		return fmt.Errorf("%w: put item to %s: %v", catalog.ErrStorageUnavailable, d.table, err)
	}
	return nil
}
