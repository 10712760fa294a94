package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"battery-alarm-predictor/src/pipeline"
	"battery-alarm-predictor/src/types"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

type Scorer interface {
	Score(ctx context.Context, vin, date, rawFeatures string) (types.ScoringResult, error)
}

type Handler struct {
	scorer Scorer
	log    *zap.Logger
}

func NewHandler(scorer Scorer, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{scorer: scorer, log: log}
}

type errorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func corsHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "OPTIONS,POST,GET",
	}
}

func (h *Handler) HandleHTTP(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod == http.MethodOptions {
		return respond(http.StatusOK, ""), nil
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return h.fail(http.StatusBadRequest, errors.New("body is not valid base64")), nil
		}
		body = decoded
	}

	var request types.ScoringRequest
	if err := json.Unmarshal(body, &request); err != nil {
		return h.fail(http.StatusBadRequest, errors.New("body must be a JSON object with vin, date and features")), nil
	}

	result, err := h.scorer.Score(ctx, request.VIN, request.Date, request.Features)
	if err != nil {
		h.log.Error("scoring request failed",
			zap.String("vin", request.VIN),
			zap.String("date", request.Date),
			zap.String("kind", pipeline.Kind(err)),
			zap.Error(err),
		)
		return h.fail(statusFor(err), err), nil
	}

	payload, _ := json.Marshal(result.PredictedProbability)

	return respond(http.StatusOK, string(payload)), nil
}

func statusFor(err error) int {
	switch pipeline.Kind(err) {
	case "validation":
		return http.StatusBadRequest
	case "scoring":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(status int, err error) events.APIGatewayProxyResponse {
	body := errorBody{Error: err.Error(), RequestID: pipeline.RequestID(err)}
	if kind := pipeline.Kind(err); kind != "unknown" {
		body.Kind = kind
	}

	payload, _ := json.Marshal(body)
	return respond(status, string(payload))
}

func respond(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    corsHeaders(),
		Body:       body,
	}
}
