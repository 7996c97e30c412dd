package transactions

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a small in-memory stand-in for PutItem/GetItem/UpdateItem.
// It understands exactly the condition expressions the store issues.
type mockDynamo struct {
	mu          sync.Mutex
	table       map[string]map[string]types.AttributeValue
	putCalls    int
	getCalls    int
	updateCalls int
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		table: map[string]map[string]types.AttributeValue{},
	}
}

func itemKey(attrs map[string]types.AttributeValue) (string, error) {
	v, ok := attrs["order_id"]
	if !ok {
		return "", errors.New("no order_id attribute")
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("order_id is not a string attribute")
	}
	return s.Value, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++

	pk, err := itemKey(params.Item)
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(order_id)" {
		if _, exists := m.table[pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.table[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++

	pk, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++

	pk, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, exists := m.table[pk]

	if params.ConditionExpression != nil {
		switch *params.ConditionExpression {
		case "attribute_exists(order_id)":
			if !exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case "#s = :expected":
			if !exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
			want := params.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberS).Value
			got, ok := item["status"].(*types.AttributeValueMemberS)
			if !ok || got.Value != want {
				return nil, &types.ConditionalCheckFailedException{}
			}
		default:
			return nil, errors.New("unsupported condition expression: " + *params.ConditionExpression)
		}
	}
	if !exists {
		item = map[string]types.AttributeValue{}
		m.table[pk] = item
	}

	// naive SET support for the expressions the store builds
	if v, ok := params.ExpressionAttributeValues[":new"]; ok {
		item["status"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":ua"]; ok {
		item["updated_at"] = v
	}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) status(pk string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.table[pk]
	if !ok {
		return ""
	}
	if s, ok := item["status"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}
