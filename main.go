package main

import (
	"context"
	"fmt"
	"os"

	"battery-alarm-predictor/src/app"
	"battery-alarm-predictor/src/config"
	"battery-alarm-predictor/src/logging"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// Determine which handler to start based on event type
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer log.Sync()

	application, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("failed to start", zap.Error(err))
	}

	lambda.Start(application.Router.Handle)
}
