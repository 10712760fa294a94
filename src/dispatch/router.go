package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"battery-alarm-predictor/src/batch"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

type APIHandler interface {
	HandleHTTP(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}

type S3Handler interface {
	HandleS3(ctx context.Context, event events.S3Event) (batch.Response, error)
}

// Router lets one Lambda function serve both the API and the S3 trigger.
type Router struct {
	api APIHandler
	s3  S3Handler
	log *zap.Logger
}

func NewRouter(api APIHandler, s3 S3Handler, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{api: api, s3: s3, log: log}
}

func (r *Router) Handle(ctx context.Context, event json.RawMessage) (interface{}, error) {
	eventType, err := DetectEventType(event)
	if err != nil {
		r.log.Error("error detecting event type", zap.Error(err))
		return nil, err
	}

	switch eventType {
	case EventAPI:
		var req events.APIGatewayProxyRequest
		if err := json.Unmarshal(event, &req); err != nil {
			return nil, fmt.Errorf("error unmarshalling API Gateway request: %w", err)
		}
		return r.api.HandleHTTP(ctx, req)

	case EventS3:
		var s3Event events.S3Event
		if err := json.Unmarshal(event, &s3Event); err != nil {
			return nil, fmt.Errorf("error unmarshalling S3 event: %w", err)
		}
		return r.s3.HandleS3(ctx, s3Event)

	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
}
