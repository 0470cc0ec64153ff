package aws

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// WithLogger sets a custom slog.Logger instance for the Controller struct to use for logging operations.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Controller) {
		a.logger = logger
	}
}

// WithContext sets the context used while loading the AWS configuration.
func WithContext(ctx context.Context) Option {
	return func(a *Controller) {
		a.ctx = ctx
	}
}

// WithConfig uses the given AWS configuration instead of the default chain.
func WithConfig(cfg *aws.Config) Option {
	return func(a *Controller) {
		a.config = cfg
	}
}

// WithArchive sets the bucket and key prefix of the conversation archive.
func WithArchive(bucket, prefix string) Option {
	return func(a *Controller) {
		a.archiveBucket = bucket
		a.archivePrefix = prefix
	}
}

func withS3Client(client s3API) Option {
	return func(a *Controller) {
		a.s3Client = client
	}
}

func withSSMClient(client ssmAPI) Option {
	return func(a *Controller) {
		a.ssmClient = client
	}
}
