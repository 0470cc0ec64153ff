// Package aws provides the Controller struct that wraps AWS services: SSM for secrets, S3 for the conversation archive and SES for mail delivery.
package aws

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/smithy-go/logging"
	"github.com/isometry/convai-webhook/internal/helpers"
	"github.com/isometry/convai-webhook/internal/models"
	"github.com/pkg/errors"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type ssmAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Controller represents a wrapper for AWS services with context and logging support.
type Controller struct {
	ctx    context.Context
	logger *slog.Logger

	config    *aws.Config
	s3Client  s3API
	ssmClient ssmAPI
	sesClient *sesv2.Client

	archiveBucket string
	archivePrefix string
}

// Option defines a function type used to configure an instance of the Controller struct.
type Option func(*Controller)

// NewController initializes a Controller with customizable options and default configurations if unspecified.
// It returns an instance of the Controller struct and an error if any required initialization steps fail.
func NewController(opts ...Option) (*Controller, error) {
	_inst := &Controller{}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.logger = _inst.logger.With("controller", "aws")
	if _inst.ctx == nil {
		_inst.ctx = context.Background()
	}
	if _inst.config == nil {
		_inst.logger.Debug("loading default AWS configuration...")
		cfg, err := config.LoadDefaultConfig(_inst.ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load AWS configuration")
		}
		cfg.Logger = newAWSLogger(_inst.logger)
		_inst.config = &cfg
	}

	if _inst.s3Client == nil {
		_inst.s3Client = s3.NewFromConfig(*_inst.config)
	}
	if _inst.ssmClient == nil {
		_inst.ssmClient = ssm.NewFromConfig(*_inst.config)
	}
	_inst.sesClient = sesv2.NewFromConfig(*_inst.config)
	return _inst, nil
}

// SES returns the SESv2 client bound to the controller's configuration.
func (a *Controller) SES() *sesv2.Client {
	return a.sesClient
}

// GetSecret retrieves a secret value from SSM Parameter Store using the provided key.
// If encrypted is true, the secret is returned decrypted.
func (a *Controller) GetSecret(ctx context.Context, key string, encrypted bool) (string, error) {
	if key == "" {
		return "", errors.New("missing SSM parameter name")
	}
	a.logger.With("key", key).Debug("fetching SSM secret...")
	ssmResponse, err := a.ssmClient.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(key),
		WithDecryption: aws.Bool(encrypted),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to load SSM parameter")
	}
	if ssmResponse.Parameter == nil || ssmResponse.Parameter.Value == nil {
		return "", errors.Errorf("SSM parameter %s has no value", key)
	}
	return *ssmResponse.Parameter.Value, nil
}

// PutS3Object uploads an object to the archive bucket under the given key.
func (a *Controller) PutS3Object(ctx context.Context, key, contentType string, body []byte) error {
	if a.archiveBucket == "" {
		return errors.New("missing archive bucket")
	}
	_, err := a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.archiveBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to put object %s to S3", key)
	}
	return nil
}

// ArchiveKeys returns the object keys used for a conversation's recording and transcript.
func (a *Controller) ArchiveKeys(conversationID string) (audioKey, transcriptKey string) {
	base := path.Join(strings.Trim(a.archivePrefix, "/"), conversationID)
	return path.Join(base, "audio.mp3"), path.Join(base, "transcript.txt")
}

// Archive stores the recording and the rendered notification text of a processed conversation.
func (a *Controller) Archive(ctx context.Context, event *models.WebhookEvent, asset *models.AudioAsset, text string) error {
	audioKey, transcriptKey := a.ArchiveKeys(event.ConversationID)
	if err := a.PutS3Object(ctx, transcriptKey, "text/plain; charset=utf-8", []byte(text)); err != nil {
		return err
	}
	if asset != nil {
		contentType := asset.ContentType
		if contentType == "" {
			contentType = "audio/mpeg"
		}
		if err := a.PutS3Object(ctx, audioKey, contentType, asset.Bytes); err != nil {
			return err
		}
	}
	a.logger.Debug("archived conversation", slog.String("conversationId", event.ConversationID), slog.String("bucket", a.archiveBucket))
	return nil
}

type awsLogger struct {
	logger *slog.Logger
}

func newAWSLogger(logger *slog.Logger) *awsLogger {
	return &awsLogger{logger}
}

func (a *awsLogger) Logf(classification logging.Classification, format string, args ...any) {
	a.logger.Debug(fmt.Sprintf("[%v] %s", classification, fmt.Sprintf(format, args...)))
}
