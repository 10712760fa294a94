package dynamo

import (
	"context"
	"fmt"

	"battery-alarm-predictor/src/types"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"go.uber.org/zap"
)

// PutRecord stores item in table. The item must carry keyField as a string attribute.
func (s *Store) PutRecord(ctx context.Context, table, keyField string, item types.KeyValueRecord) error {
	key, ok := item[keyField]
	if !ok || key == nil || key.S == nil {
		return fmt.Errorf("item has no string key attribute %q", keyField)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	}

	if _, err := s.client.PutItemWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}

	s.log.Debug("stored item", zap.String("table", table), zap.String(keyField, *key.S))

	return nil
}
