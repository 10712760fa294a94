// Package app wires the AWS clients, the pipeline and both drivers from a Config.
package app

import (
	"context"
	"fmt"

	"battery-alarm-predictor/src/api"
	"battery-alarm-predictor/src/archive"
	"battery-alarm-predictor/src/batch"
	"battery-alarm-predictor/src/config"
	"battery-alarm-predictor/src/dispatch"
	"battery-alarm-predictor/src/dynamo"
	"battery-alarm-predictor/src/pipeline"
	"battery-alarm-predictor/src/sagemaker"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"go.uber.org/zap"
)

type App struct {
	Config   config.Config
	Pipeline *pipeline.Pipeline
	API      *api.Handler
	Batch    *batch.Handler
	Router   *dispatch.Router
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	awsCfg := aws.NewConfig()
	if cfg.Region != "" {
		awsCfg = awsCfg.WithRegion(cfg.Region)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	runtime, err := sagemaker.NewClient(ctx, cfg.Region)
	if err != nil {
		return nil, err
	}

	objects := archive.NewFromSession(sess, log.Named("s3"))

	p := pipeline.New(
		sagemaker.NewEndpoint(runtime, cfg.EndpointName, log.Named("sagemaker")),
		dynamo.NewStore(dynamo.NewClient(sess), log.Named("dynamodb")),
		objects,
		pipeline.Settings{
			TableName:     cfg.TableName,
			PrimaryKey:    cfg.PrimaryKey,
			ArchiveBucket: cfg.DumpBucket,
			ArchivePrefix: cfg.DumpPrefix,
		},
		log.Named("pipeline"),
	)

	apiHandler := api.NewHandler(p, log.Named("api"))
	batchHandler := batch.NewHandler(p, objects, batch.Options{
		InferBucket: cfg.InferBucket,
		Concurrency: cfg.BatchConcurrency,
	}, log.Named("batch"))

	return &App{
		Config:   cfg,
		Pipeline: p,
		API:      apiHandler,
		Batch:    batchHandler,
		Router:   dispatch.NewRouter(apiHandler, batchHandler, log.Named("dispatch")),
	}, nil
}
