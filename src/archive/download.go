package archive

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"
)

// Download copies s3://bucket/key into w and returns the number of bytes written.
func (s *Store) Download(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error) {
	s.log.Info("download start", zap.String("bucket", bucket), zap.String("key", key))

	n, err := s.downloader.DownloadWithContext(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}

	s.log.Info("download complete", zap.String("key", key), zap.Int64("bytes", n))

	return n, nil
}
