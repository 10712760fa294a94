package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"battery-alarm-predictor/src/pipeline"
	"battery-alarm-predictor/src/types"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxLineBytes = 1 << 20

type Scorer interface {
	Score(ctx context.Context, vin, date, rawFeatures string) (types.ScoringResult, error)
}

type Fetcher interface {
	Download(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error)
}

type Options struct {
	// InferBucket is where batch files are read from.
	InferBucket string
	// Concurrency is the number of lines scored at once. Values below 1 mean 1.
	Concurrency int
	// ScratchDir holds downloaded files. Empty means os.TempDir().
	ScratchDir string
}

type Handler struct {
	scorer  Scorer
	fetcher Fetcher
	opts    Options
	log     *zap.Logger
}

func NewHandler(scorer Scorer, fetcher Fetcher, opts Options, log *zap.Logger) *Handler {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{scorer: scorer, fetcher: fetcher, opts: opts, log: log}
}

// Response is returned to the Lambda runtime after a notification has been handled.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// HandleS3 processes every object named in the notification. Line failures are reported in
// the response body, not as an error, so an async retry does not score persisted lines twice.
func (h *Handler) HandleS3(ctx context.Context, event events.S3Event) (Response, error) {
	summaries := make([]Summary, 0, len(event.Records))

	for _, record := range event.Records {
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return Response{}, fmt.Errorf("invalid object key %q: %w", record.S3.Object.Key, err)
		}

		if bucket := record.S3.Bucket.Name; bucket != "" && bucket != h.opts.InferBucket {
			h.log.Warn("notification bucket differs from infer bucket",
				zap.String("event_bucket", bucket),
				zap.String("infer_bucket", h.opts.InferBucket),
			)
		}

		summary, err := h.ProcessObject(ctx, h.opts.InferBucket, key)
		if err != nil {
			return Response{}, err
		}
		summaries = append(summaries, summary)
	}

	status := 200
	for _, s := range summaries {
		if code := s.Status(); code > status {
			status = code
		}
	}

	body, err := json.Marshal(summaries)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode summary: %w", err)
	}

	return Response{StatusCode: status, Body: string(body)}, nil
}

// ProcessObject downloads s3://bucket/key into a scratch file, scores it and removes the file.
func (h *Handler) ProcessObject(ctx context.Context, bucket, key string) (Summary, error) {
	scratch, err := os.CreateTemp(h.opts.ScratchDir, "batch-*.csv")
	if err != nil {
		return Summary{}, fmt.Errorf("failed to create scratch file: %w", err)
	}
	defer os.Remove(scratch.Name())
	defer scratch.Close()

	if _, err := h.fetcher.Download(ctx, bucket, key, scratch); err != nil {
		return Summary{}, err
	}

	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		return Summary{}, fmt.Errorf("failed to rewind scratch file: %w", err)
	}

	return h.Process(ctx, key, scratch)
}

// ProcessFile scores a local batch file.
func (h *Handler) ProcessFile(ctx context.Context, path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return h.Process(ctx, path, f)
}

type line struct {
	number int
	text   string
}

// Process scores every non-blank line of r. A failing line is logged and skipped; the
// remaining lines still run.
func (h *Handler) Process(ctx context.Context, name string, r io.Reader) (Summary, error) {
	lines, err := readLines(r)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read %s: %w", name, err)
	}

	outcomes := make([]LineOutcome, len(lines))

	var g errgroup.Group
	g.SetLimit(h.opts.Concurrency)

	for i, l := range lines {
		g.Go(func() error {
			outcomes[i] = h.scoreLine(ctx, l)
			h.logOutcome(i+1, len(lines), outcomes[i])
			return nil
		})
	}
	_ = g.Wait()

	summary := newSummary(name, outcomes)
	h.log.Info("batch complete",
		zap.String("object", name),
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)

	return summary, nil
}

func (h *Handler) scoreLine(ctx context.Context, l line) LineOutcome {
	vin, date, features, err := parseLine(l.text)
	outcome := LineOutcome{Line: l.number, VIN: vin, Date: date}

	if err == nil {
		err = ctx.Err()
	}

	if err == nil {
		var result types.ScoringResult
		result, err = h.scorer.Score(ctx, vin, date, features)
		if err == nil {
			prob := result.PredictedProbability
			outcome.RequestID = result.RequestID
			outcome.PredictedProbability = &prob
			return outcome
		}
	}

	outcome.err = err
	outcome.Error = err.Error()
	outcome.Kind = pipeline.Kind(err)
	outcome.RequestID = pipeline.RequestID(err)
	return outcome
}

func (h *Handler) logOutcome(index, total int, o LineOutcome) {
	fields := []zap.Field{
		zap.String("progress", fmt.Sprintf("%d / %d", index, total)),
		zap.Int("line", o.Line),
		zap.String("vin", o.VIN),
		zap.String("date", o.Date),
		zap.String("request_id", o.RequestID),
	}

	if o.Succeeded() {
		h.log.Info("line scored", append(fields, zap.Float64("predicted_prob", *o.PredictedProbability))...)
		return
	}

	h.log.Warn("line skipped", append(fields, zap.String("kind", o.Kind), zap.Error(o.err))...)
}

func readLines(r io.Reader) ([]line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []line
	number := 0
	for scanner.Scan() {
		number++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		lines = append(lines, line{number: number, text: text})
	}

	return lines, scanner.Err()
}
