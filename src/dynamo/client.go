package dynamo

import (
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"go.uber.org/zap"
)

func NewClient(sess *session.Session) *dynamodb.DynamoDB {
	return dynamodb.New(sess)
}

// Store writes scored events to a DynamoDB table.
type Store struct {
	client dynamodbiface.DynamoDBAPI
	log    *zap.Logger
}

func NewStore(client dynamodbiface.DynamoDBAPI, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{client: client, log: log}
}
