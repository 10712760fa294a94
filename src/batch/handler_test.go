package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"battery-alarm-predictor/src/pipeline"
	"battery-alarm-predictor/src/types"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// -- Fakes --

type constantScorer struct{ response string }

func (c constantScorer) Invoke(ctx context.Context, body string) (string, error) {
	return c.response, nil
}

type memoryStores struct {
	mu       sync.Mutex
	records  []types.KeyValueRecord
	archives map[string][]byte
}

func (m *memoryStores) PutRecord(ctx context.Context, table, keyField string, item types.KeyValueRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, item)
	return nil
}

func (m *memoryStores) PutArchive(ctx context.Context, bucket, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.archives == nil {
		m.archives = make(map[string][]byte)
	}
	m.archives[key] = body
	return nil
}

type fakeFetcher struct {
	content []byte
	err     error
	bucket  string
	key     string
}

func (f *fakeFetcher) Download(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error) {
	f.bucket, f.key = bucket, key
	if f.err != nil {
		return 0, f.err
	}
	n, err := w.WriteAt(f.content, 0)
	return int64(n), err
}

func featureString(n int) string {
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("%d", i%6+1)
	}
	return strings.Join(tokens, ",")
}

func batchLine(vin string, n int) string {
	return vin + ",2024-01-01," + featureString(n)
}

func newTestHandler(t *testing.T, fetcher Fetcher, opts Options) (*Handler, *memoryStores) {
	t.Helper()

	stores := &memoryStores{}
	p := pipeline.New(constantScorer{response: "0.25"}, stores, stores, pipeline.Settings{
		TableName:     "battery-events",
		PrimaryKey:    "request_id",
		ArchiveBucket: "bev-bms-events",
		ArchivePrefix: "events",
	}, zaptest.NewLogger(t))

	return NewHandler(p, fetcher, opts, zaptest.NewLogger(t)), stores
}

// -- Tests --

func TestProcessAllLinesSucceed(t *testing.T) {
	h, stores := newTestHandler(t, nil, Options{})
	input := strings.Join([]string{
		batchLine("VIN001", 84),
		batchLine("VIN001", 84),
		batchLine("VIN001", 84),
	}, "\n") + "\n"

	summary, err := h.Process(context.Background(), "batch.csv", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, http.StatusOK, summary.Status())
	assert.NoError(t, summary.Err())
	assert.Equal(t, "batch.csv: 3/3 succeeded", summary.String())
	assert.InDelta(t, 0.25, summary.MeanProbability, 1e-12)
	assert.InDelta(t, 0.0, summary.StdDevProbability, 1e-12)

	assert.Len(t, stores.records, 3)
	assert.Len(t, stores.archives, 3)

	ids := make(map[string]bool)
	for i, line := range summary.Lines {
		assert.Equal(t, i+1, line.Line)
		assert.Equal(t, "VIN001", line.VIN)
		assert.Equal(t, "2024-01-01", line.Date)
		require.NotNil(t, line.PredictedProbability)
		assert.Contains(t, stores.archives, "events/"+line.RequestID+".json")
		ids[line.RequestID] = true
	}
	assert.Len(t, ids, 3)
}

func TestProcessSkipsInvalidLineAndContinues(t *testing.T) {
	h, stores := newTestHandler(t, nil, Options{})
	input := strings.Join([]string{
		batchLine("VIN001", 84),
		batchLine("VIN002", 83),
		batchLine("VIN003", 84),
	}, "\n")

	summary, err := h.Process(context.Background(), "batch.csv", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, http.StatusMultiStatus, summary.Status())

	assert.True(t, summary.Lines[0].Succeeded())
	assert.True(t, summary.Lines[2].Succeeded())

	failed := summary.Lines[1]
	assert.False(t, failed.Succeeded())
	assert.Equal(t, 2, failed.Line)
	assert.Equal(t, "VIN002", failed.VIN)
	assert.Equal(t, "validation", failed.Kind)
	assert.Nil(t, failed.PredictedProbability)
	assert.Empty(t, failed.RequestID)

	var validationErr *pipeline.ValidationError
	assert.ErrorAs(t, summary.Err(), &validationErr)

	assert.Len(t, stores.records, 2)
	assert.Len(t, stores.archives, 2)
}

func TestProcessKeepsFeatureCommasAfterDate(t *testing.T) {
	scorerCalls := make(chan string, 1)
	stores := &memoryStores{}
	p := pipeline.New(recordingScorer(scorerCalls), stores, stores, pipeline.Settings{PrimaryKey: "request_id"}, nil)
	h := NewHandler(p, nil, Options{}, nil)

	_, err := h.Process(context.Background(), "batch.csv", strings.NewReader(batchLine("VIN001", 84)))
	require.NoError(t, err)
	assert.Equal(t, featureString(84), <-scorerCalls)
}

type recordingScorer chan string

func (r recordingScorer) Invoke(ctx context.Context, body string) (string, error) {
	r <- body
	return "0.5", nil
}

func TestProcessShortAndBlankLines(t *testing.T) {
	h, _ := newTestHandler(t, nil, Options{})
	input := "\n" + batchLine("VIN001", 84) + "\n\n   \nVIN002,2024-01-02\nVIN003\n"

	summary, err := h.Process(context.Background(), "batch.csv", strings.NewReader(input))
	require.NoError(t, err)

	require.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Lines[0].Line)
	assert.True(t, summary.Lines[0].Succeeded())

	assert.Equal(t, 5, summary.Lines[1].Line)
	assert.Equal(t, "VIN002", summary.Lines[1].VIN)
	assert.Equal(t, "2024-01-02", summary.Lines[1].Date)
	assert.Equal(t, "validation", summary.Lines[1].Kind)

	assert.Equal(t, 6, summary.Lines[2].Line)
	assert.Equal(t, "validation", summary.Lines[2].Kind)
}

func TestProcessEveryLineFails(t *testing.T) {
	h, _ := newTestHandler(t, nil, Options{})

	summary, err := h.Process(context.Background(), "batch.csv", strings.NewReader(batchLine("VIN001", 10)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, summary.Status())
}

func TestProcessEmptyFile(t *testing.T) {
	h, _ := newTestHandler(t, nil, Options{})

	summary, err := h.Process(context.Background(), "empty.csv", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, http.StatusOK, summary.Status())
}

func TestProcessConcurrentKeepsFileOrder(t *testing.T) {
	h, stores := newTestHandler(t, nil, Options{Concurrency: 4})

	var lines []string
	for i := 0; i < 20; i++ {
		n := 84
		if i%5 == 0 {
			n = 83
		}
		lines = append(lines, batchLine(fmt.Sprintf("VIN%03d", i), n))
	}

	summary, err := h.Process(context.Background(), "batch.csv", strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)

	assert.Equal(t, 16, summary.Succeeded)
	assert.Equal(t, 4, summary.Failed)
	assert.Len(t, stores.records, 16)

	ids := make(map[string]bool)
	for i, line := range summary.Lines {
		assert.Equal(t, i+1, line.Line)
		assert.Equal(t, fmt.Sprintf("VIN%03d", i), line.VIN)
		assert.Equal(t, i%5 != 0, line.Succeeded(), line.VIN)
		if line.Succeeded() {
			ids[line.RequestID] = true
		}
	}
	assert.Len(t, ids, 16)
}

func TestProcessCanceledContext(t *testing.T) {
	h, stores := newTestHandler(t, nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := h.Process(ctx, "batch.csv", strings.NewReader(batchLine("VIN001", 84)))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.ErrorIs(t, summary.Err(), context.Canceled)
	assert.Empty(t, stores.records)
}

func TestProcessFile(t *testing.T) {
	h, _ := newTestHandler(t, nil, Options{})
	path := filepath.Join(t.TempDir(), "batch.csv")
	require.NoError(t, os.WriteFile(path, []byte(batchLine("VIN001", 84)+"\n"), 0o600))

	summary, err := h.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)

	_, err = h.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestHandleS3(t *testing.T) {
	scratch := t.TempDir()
	content := strings.Join([]string{
		batchLine("VIN001", 84),
		batchLine("VIN002", 83),
		batchLine("VIN003", 84),
	}, "\n") + "\n"
	fetcher := &fakeFetcher{content: []byte(content)}
	h, _ := newTestHandler(t, fetcher, Options{InferBucket: "bev-bms-infer", ScratchDir: scratch})

	event := events.S3Event{Records: []events.S3EventRecord{{
		EventSource: "aws:s3",
		S3: events.S3Entity{
			Bucket: events.S3Bucket{Name: "bev-bms-infer"},
			Object: events.S3Object{Key: "incoming/batch+file%3A1.csv"},
		},
	}}}

	resp, err := h.HandleS3(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMultiStatus, resp.StatusCode)
	assert.Equal(t, "bev-bms-infer", fetcher.bucket)
	assert.Equal(t, "incoming/batch file:1.csv", fetcher.key)

	var summaries []Summary
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "incoming/batch file:1.csv", summaries[0].Object)
	assert.Equal(t, 2, summaries[0].Succeeded)
	assert.Equal(t, 1, summaries[0].Failed)

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHandleS3DownloadFailure(t *testing.T) {
	scratch := t.TempDir()
	cause := errors.New("NoSuchKey")
	h, _ := newTestHandler(t, &fakeFetcher{err: cause}, Options{InferBucket: "bev-bms-infer", ScratchDir: scratch})

	event := events.S3Event{Records: []events.S3EventRecord{{
		S3: events.S3Entity{Object: events.S3Object{Key: "batch.csv"}},
	}}}

	_, err := h.HandleS3(context.Background(), event)
	assert.ErrorIs(t, err, cause)

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseLine(t *testing.T) {
	vin, date, features, err := parseLine("VIN001,2024-01-01,1,2,3")
	require.NoError(t, err)
	assert.Equal(t, "VIN001", vin)
	assert.Equal(t, "2024-01-01", date)
	assert.Equal(t, "1,2,3", features)

	vin, date, _, err = parseLine("VIN001,2024-01-01")
	var validationErr *pipeline.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "VIN001", vin)
	assert.Equal(t, "2024-01-01", date)
}
