// Package pipeline scores one feature window and persists the result to DynamoDB and S3.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"battery-alarm-predictor/src/features"
	"battery-alarm-predictor/src/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ContentTypeCSV = "text/csv"

// Scorer invokes the hosted model with the raw feature text and returns its response body.
type Scorer interface {
	Invoke(ctx context.Context, body string) (string, error)
}

type RecordStore interface {
	PutRecord(ctx context.Context, table, keyField string, item types.KeyValueRecord) error
}

type ArchiveStore interface {
	PutArchive(ctx context.Context, bucket, key string, body []byte) error
}

type Settings struct {
	TableName     string
	PrimaryKey    string
	ArchiveBucket string
	ArchivePrefix string
}

type Pipeline struct {
	scorer   Scorer
	records  RecordStore
	archive  ArchiveStore
	settings Settings
	log      *zap.Logger
	newID    func() string
}

func New(scorer Scorer, records RecordStore, archive ArchiveStore, settings Settings, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}

	return &Pipeline{
		scorer:   scorer,
		records:  records,
		archive:  archive,
		settings: settings,
		log:      log,
		newID:    uuid.NewString,
	}
}

// Score validates rawFeatures, scores them and writes both records. The DynamoDB item is
// written first; if the S3 write then fails the item stays in place.
func (p *Pipeline) Score(ctx context.Context, vin, date, rawFeatures string) (types.ScoringResult, error) {
	window, err := features.Parse(rawFeatures)
	if err != nil {
		return types.ScoringResult{}, &ValidationError{VIN: vin, Date: date, Err: err}
	}

	prob, err := p.predict(ctx, rawFeatures)
	if err != nil {
		return types.ScoringResult{}, &ScoringError{VIN: vin, Date: date, Err: err}
	}

	result := types.ScoringResult{
		RequestID:            p.newID(),
		VIN:                  vin,
		Date:                 date,
		PredictedProbability: prob,
		Features:             window,
	}

	log := p.log.With(
		zap.String("request_id", result.RequestID),
		zap.String("vin", vin),
		zap.String("date", date),
	)

	item := BuildKeyValueRecord(result, p.settings.PrimaryKey)
	if err := p.records.PutRecord(ctx, p.settings.TableName, p.settings.PrimaryKey, item); err != nil {
		return types.ScoringResult{}, newStoreError(StoreDynamoDB, result, err)
	}

	body, err := json.Marshal(BuildArchiveRecord(result, p.settings.PrimaryKey))
	if err != nil {
		return types.ScoringResult{}, newStoreError(StoreS3, result, fmt.Errorf("failed to encode archive record: %w", err))
	}

	if err := p.archive.PutArchive(ctx, p.settings.ArchiveBucket, p.ArchiveKey(result.RequestID), body); err != nil {
		log.Warn("archive write failed after dynamodb write", zap.Error(err))
		return types.ScoringResult{}, newStoreError(StoreS3, result, err)
	}

	log.Info("scored", zap.Float64("predicted_prob", prob))

	return result, nil
}

// ArchiveKey is the S3 object key of a request's JSON record.
func (p *Pipeline) ArchiveKey(requestID string) string {
	return path.Join(p.settings.ArchivePrefix, requestID+".json")
}

func (p *Pipeline) predict(ctx context.Context, rawFeatures string) (float64, error) {
	response, err := p.scorer.Invoke(ctx, rawFeatures)
	if err != nil {
		return 0, fmt.Errorf("failed to invoke endpoint: %w", err)
	}

	text := strings.TrimSpace(response)
	if text == "" {
		return 0, errors.New("endpoint returned an empty response")
	}

	prob, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse response %q: %w", text, err)
	}
	if math.IsNaN(prob) || math.IsInf(prob, 0) {
		return 0, fmt.Errorf("endpoint returned a non-finite value %q", text)
	}

	return prob, nil
}

func newStoreError(store string, result types.ScoringResult, err error) error {
	return &StoreWriteError{
		Store:     store,
		RequestID: result.RequestID,
		VIN:       result.VIN,
		Date:      result.Date,
		Err:       err,
	}
}
