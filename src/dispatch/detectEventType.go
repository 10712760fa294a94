package dispatch

import (
	"encoding/json"
	"fmt"
)

const (
	EventAPI = "api"
	EventS3  = "s3"
)

type probe struct {
	Records []struct {
		EventSource string `json:"eventSource"`
	} `json:"Records"`
	HTTPMethod string `json:"httpMethod"`
}

// DetectEventType tells an S3 notification apart from an API Gateway proxy request.
func DetectEventType(event json.RawMessage) (string, error) {
	var p probe
	if err := json.Unmarshal(event, &p); err != nil {
		return "", fmt.Errorf("cannot read event: %w", err)
	}

	if len(p.Records) > 0 && p.Records[0].EventSource == "aws:s3" {
		return EventS3, nil
	}

	if p.HTTPMethod != "" {
		return EventAPI, nil
	}

	return "", fmt.Errorf("unknown event type")
}
