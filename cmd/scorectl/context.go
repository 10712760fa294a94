package main

import (
	"context"

	"battery-alarm-predictor/src/app"
	"battery-alarm-predictor/src/batch"
	"battery-alarm-predictor/src/config"
	"battery-alarm-predictor/src/logging"
	"battery-alarm-predictor/src/types"

	"go.uber.org/zap"
)

type scorer interface {
	Score(ctx context.Context, vin, date, rawFeatures string) (types.ScoringResult, error)
}

type batchRunner interface {
	ProcessFile(ctx context.Context, path string) (batch.Summary, error)
	ProcessObject(ctx context.Context, bucket, key string) (batch.Summary, error)
}

type services struct {
	scorer      scorer
	batch       batchRunner
	inferBucket string
}

type commandContext struct {
	build func(ctx context.Context) (*services, error)
	cache *services
}

func newCommandContext() *commandContext {
	return &commandContext{build: buildServices}
}

func (c *commandContext) services(ctx context.Context) (*services, error) {
	if c.cache != nil {
		return c.cache, nil
	}
	s, err := c.build(ctx)
	if err != nil {
		return nil, err
	}
	c.cache = s
	return s, nil
}

func buildServices(ctx context.Context) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &services{
		scorer:      application.Pipeline,
		batch:       application.Batch,
		inferBucket: cfg.InferBucket,
	}, nil
}
