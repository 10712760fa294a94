package sagemaker

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"go.uber.org/zap"
)

const contentType = "text/csv"

// InvokeAPI is the part of the SageMaker runtime client the endpoint needs.
type InvokeAPI interface {
	InvokeEndpoint(ctx context.Context, params *sagemakerruntime.InvokeEndpointInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
}

type Endpoint struct {
	client InvokeAPI
	name   string
	log    *zap.Logger
}

func NewEndpoint(client InvokeAPI, name string, log *zap.Logger) *Endpoint {
	if log == nil {
		log = zap.NewNop()
	}
	return &Endpoint{client: client, name: name, log: log}
}

// Invoke sends the comma-separated features as a CSV payload and returns the raw response body.
func (e *Endpoint) Invoke(ctx context.Context, body string) (string, error) {
	output, err := e.client.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(e.name),
		ContentType:  aws.String(contentType),
		Body:         []byte(body),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke endpoint %s: %w", e.name, err)
	}
	if output == nil {
		return "", fmt.Errorf("endpoint %s returned no output", e.name)
	}

	e.log.Debug("endpoint response", zap.String("endpoint", e.name), zap.ByteString("body", output.Body))

	return string(output.Body), nil
}
