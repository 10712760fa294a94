package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

const (
	EnvTableName        = "DYNAMODB_TABLE_NAME"
	EnvPrimaryKey       = "DYNAMODB_PRIMARY_KEY"
	EnvEndpointName     = "SAGEMAKER_ENDPOINT_NAME"
	EnvDumpBucket       = "DUMP_BUCKET_NAME"
	EnvDumpPrefix       = "DUMP_BUCKET_PREFIX"
	EnvInferBucket      = "INFER_BUCKET_NAME"
	EnvRegion           = "AWS_REGION"
	EnvLogLevel         = "LOG_LEVEL"
	EnvBatchConcurrency = "BATCH_CONCURRENCY"
)

type Config struct {
	TableName        string
	PrimaryKey       string
	EndpointName     string
	DumpBucket       string
	DumpPrefix       string
	InferBucket      string
	Region           string
	LogLevel         string
	BatchConcurrency int
}

// ConfigurationError lists every setting that is missing or malformed.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Load reads the environment, after applying a .env file if one exists.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, which has the signature of os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	var errs error

	required := func(key string) string {
		value, ok := lookup(key)
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s is not set", key))
		}
		return value
	}

	optional := func(key, fallback string) string {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
		return fallback
	}

	cfg := Config{
		TableName:    required(EnvTableName),
		PrimaryKey:   required(EnvPrimaryKey),
		EndpointName: required(EnvEndpointName),
		DumpBucket:   required(EnvDumpBucket),
		DumpPrefix:   required(EnvDumpPrefix),
		InferBucket:  required(EnvInferBucket),
		Region:       optional(EnvRegion, ""),
		LogLevel:     optional(EnvLogLevel, "info"),
	}

	concurrency, err := strconv.Atoi(optional(EnvBatchConcurrency, "1"))
	if err != nil || concurrency < 1 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be a positive integer", EnvBatchConcurrency))
	}
	cfg.BatchConcurrency = concurrency

	if errs != nil {
		return cfg, &ConfigurationError{Err: errs}
	}

	return cfg, nil
}
