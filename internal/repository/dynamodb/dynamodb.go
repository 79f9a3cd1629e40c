// Package dynamodb implements repository.Repository on a DynamoDB table.
//
// The table is keyed by userId (partition) and budgetItemId (sort). A global
// secondary index keyed by budgetItemId (partition) and createdAt (sort)
// serves lookups by item identifier.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"budgettracker/internal/domain"
	"budgettracker/internal/repository"
)

// API is the subset of the DynamoDB client the repository calls
type API interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// ddbItem is a budget item as stored, minus the numeric amount attribute
type ddbItem struct {
	UserID        string `dynamodbav:"userId"`
	BudgetItemID  string `dynamodbav:"budgetItemId"`
	CreatedAt     string `dynamodbav:"createdAt"`
	Income        bool   `dynamodbav:"income"`
	AttachmentURL string `dynamodbav:"attachmentUrl"`
}

// ddbKey is the table's primary key
type ddbKey struct {
	UserID       string `dynamodbav:"userId"`
	BudgetItemID string `dynamodbav:"budgetItemId"`
}

const attrAmount = "amount"

// Repository is the DynamoDB persistence gateway
type Repository struct {
	client    API
	tableName string
	indexName string
	logger    *zap.Logger
}

// New creates a repository over tableName, using indexName for id lookups
func New(client API, tableName, indexName string, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger.Named("dynamodb"),
	}
}

// ListByUser queries the userId partition, draining every page
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.BudgetItem, error) {
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("userId = :uId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uId": &types.AttributeValueMemberS{Value: userID},
		},
	})

	items := make([]domain.BudgetItem, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, repository.Unavailable("query budget items", err)
		}
		for _, av := range page.Items {
			item, err := fromAttributes(av)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}

	r.logger.Debug("listed budget items", zap.String("user_id", userID), zap.Int("count", len(items)))
	return items, nil
}

// FindByID queries the id index newest first and takes the first match
func (r *Repository) FindByID(ctx context.Context, budgetItemID string) (domain.BudgetItem, error) {
	if err := repository.RequireID(budgetItemID); err != nil {
		return domain.BudgetItem{}, err
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.indexName),
		KeyConditionExpression: aws.String("budgetItemId = :budgetItemId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":budgetItemId": &types.AttributeValueMemberS{Value: budgetItemID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return domain.BudgetItem{}, repository.Unavailable("query budget item", err)
	}

	if len(result.Items) == 0 {
		return domain.BudgetItem{}, fmt.Errorf("%w: %s", domain.ErrNotFound, budgetItemID)
	}

	return fromAttributes(result.Items[0])
}

// Insert puts the full item
func (r *Repository) Insert(ctx context.Context, item domain.BudgetItem) (domain.BudgetItem, error) {
	av, err := toAttributes(item)
	if err != nil {
		return domain.BudgetItem{}, err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return domain.BudgetItem{}, repository.Unavailable("put budget item", err)
	}

	r.logger.Debug("put budget item",
		zap.String("user_id", item.UserID),
		zap.String("budget_item_id", item.BudgetItemID))
	return item, nil
}

// UpdateIncomeOrAttachment sets the one attribute the patch names
func (r *Repository) UpdateIncomeOrAttachment(ctx context.Context, item domain.BudgetItem, patch domain.Patch) error {
	key, err := keyOf(item)
	if err != nil {
		return err
	}

	value, err := attributevalue.Marshal(patch.Value())
	if err != nil {
		return fmt.Errorf("%w: marshal patch: %w", domain.ErrInvalidArgument, err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              key,
		UpdateExpression: aws.String("SET #attr = :v"),
		ExpressionAttributeNames: map[string]string{
			"#attr": patch.Attribute(),
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": value,
		},
	})
	if err != nil {
		r.logger.Error("unable to update budget item",
			zap.String("budget_item_id", item.BudgetItemID),
			zap.String("attribute", patch.Attribute()),
			zap.Error(err))
		return repository.UpdateFailed(err)
	}

	return nil
}

// Delete removes the item by primary key
func (r *Repository) Delete(ctx context.Context, item domain.BudgetItem) error {
	key, err := keyOf(item)
	if err != nil {
		return err
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       key,
	})
	if err != nil {
		return repository.Unavailable("delete budget item", err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources that need releasing
func (r *Repository) Close() error {
	return nil
}

func keyOf(item domain.BudgetItem) (map[string]types.AttributeValue, error) {
	key, err := attributevalue.MarshalMap(ddbKey{UserID: item.UserID, BudgetItemID: item.BudgetItemID})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal key: %w", domain.ErrInvalidArgument, err)
	}
	return key, nil
}

func toAttributes(item domain.BudgetItem) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(ddbItem{
		UserID:        item.UserID,
		BudgetItemID:  item.BudgetItemID,
		CreatedAt:     repository.FormatTime(item.CreatedAt),
		Income:        item.Income,
		AttachmentURL: item.AttachmentURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal budget item: %w", domain.ErrInvalidArgument, err)
	}
	av[attrAmount] = &types.AttributeValueMemberN{Value: item.Amount.String()}
	return av, nil
}

func fromAttributes(av map[string]types.AttributeValue) (domain.BudgetItem, error) {
	var row ddbItem
	if err := attributevalue.UnmarshalMap(av, &row); err != nil {
		return domain.BudgetItem{}, repository.Unavailable("unmarshal budget item", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return domain.BudgetItem{}, repository.Unavailable("parse createdAt", err)
	}

	amount, err := amountOf(av[attrAmount])
	if err != nil {
		return domain.BudgetItem{}, repository.Unavailable("parse amount", err)
	}

	return domain.BudgetItem{
		BudgetItemID:  row.BudgetItemID,
		UserID:        row.UserID,
		CreatedAt:     createdAt,
		Amount:        amount,
		Income:        row.Income,
		AttachmentURL: row.AttachmentURL,
	}, nil
}

// amountOf reads the amount attribute. Items written by other tools may carry it as a string.
func amountOf(av types.AttributeValue) (decimal.Decimal, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		return decimal.NewFromString(v.Value)
	case *types.AttributeValueMemberS:
		return decimal.NewFromString(v.Value)
	case nil:
		return decimal.Zero, nil
	default:
		return decimal.Zero, errors.New("amount is not a number")
	}
}
