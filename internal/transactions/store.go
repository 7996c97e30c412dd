package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/arsyilla/qris-relay/internal/aws"
)

var (
	// ErrDuplicateOrder indicates a Put collided with an existing order_id.
	ErrDuplicateOrder = errors.New("order id already exists")
	// ErrNotFound indicates an update targeted a missing transaction.
	ErrNotFound = errors.New("transaction not found")
	// ErrStatusMismatch indicates a conditional transition found a
	// different stored status than expected.
	ErrStatusMismatch = errors.New("status mismatch/conditional failed")
)

// Store encapsulates operations on the transactions table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new transactions Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Put inserts a new transaction. The conditional expression enforces
// order_id uniqueness; a collision returns ErrDuplicateOrder.
func (s *Store) Put(ctx context.Context, txn Transaction) error {
	now := s.nowFunc()
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = now
	}
	txn.UpdatedAt = now

	item, err := attributevalue.MarshalMap(txn)
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Get fetches a transaction by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Transaction, error) {
	key := map[string]types.AttributeValue{
		"order_id": &types.AttributeValueMemberS{Value: orderID},
	}
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var txn Transaction
	if err := attributevalue.UnmarshalMap(out.Item, &txn); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return &txn, nil
}

// UpdateStatus sets the stored status unconditionally on an existing
// record. Returns ErrNotFound if no record matches.
func (s *Store) UpdateStatus(ctx context.Context, orderID, status string) error {
	input := s.updateStatusInput(orderID, status)
	input.ConditionExpression = awsString("attribute_exists(order_id)")

	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// UpdateStatusIf transitions status from expected to next. Returns
// ErrStatusMismatch when the stored status differs, which is how the
// terminal-state rules survive a cancel/webhook race.
func (s *Store) UpdateStatusIf(ctx context.Context, orderID, expected, next string) error {
	input := s.updateStatusInput(orderID, next)
	input.ConditionExpression = awsString("#s = :expected")
	input.ExpressionAttributeValues[":expected"] = &types.AttributeValueMemberS{Value: expected}

	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (s *Store) updateStatusInput(orderID, status string) *dyn.UpdateItemInput {
	now := s.nowFunc()
	return &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :new, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new": &types.AttributeValueMemberS{Value: status},
			":ua":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	}
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var api smithy.APIError
	return errors.As(err, &api) && api.ErrorCode() == "ConditionalCheckFailedException"
}

func awsString(s string) *string { return &s }
