// Package archive reads batch input from S3 and writes JSON event records back to it.
package archive

import (
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"go.uber.org/zap"
)

type Store struct {
	client     s3iface.S3API
	downloader s3manageriface.DownloaderAPI
	log        *zap.Logger
}

func NewStore(client s3iface.S3API, downloader s3manageriface.DownloaderAPI, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{client: client, downloader: downloader, log: log}
}

// NewFromSession builds a Store backed by real S3 clients.
func NewFromSession(sess *session.Session, log *zap.Logger) *Store {
	client := s3.New(sess)
	return NewStore(client, s3manager.NewDownloaderWithClient(client), log)
}
