// Package aws provides the Controller struct that wraps AWS services and provides S3 and SSM functionality with context and logging support.
package aws

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/helpers"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/logging"
	"github.com/pkg/errors"
)

// S3API is the subset of the S3 client used by the Controller.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// SSMAPI is the subset of the SSM client used by the Controller.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Controller represents a wrapper for AWS services providing S3 and SSM functionality with context and logging support.
// It is built once per process and is safe for concurrent use.
type Controller struct {
	ctx    context.Context
	logger *slog.Logger

	config    *aws.Config
	s3Client  S3API
	ssmClient SSMAPI
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
	if _inst.s3Client != nil && _inst.ssmClient != nil {
		return _inst, nil
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
		// One attempt per fetch.
		_inst.s3Client = s3.NewFromConfig(*_inst.config, func(o *s3.Options) {
			o.RetryMaxAttempts = 1
		})
	}
	if _inst.ssmClient == nil {
		_inst.ssmClient = ssm.NewFromConfig(*_inst.config)
	}
	return _inst, nil
}

// GetS3Object reads the whole object stored under key in bucket.
// A non-empty region overrides the configured region for this call.
// Missing objects and denied reads are reported as storage.ErrNotFound and storage.ErrAccessDenied.
func (a *Controller) GetS3Object(ctx context.Context, bucket, region, key string) ([]byte, error) {
	a.logger.Debug("fetching S3 object...", slog.String("bucket", bucket), slog.String("key", key))
	var optFns []func(*s3.Options)
	if region != "" {
		optFns = append(optFns, func(o *s3.Options) { o.Region = region })
	}
	out, err := a.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, optFns...)
	if err != nil {
		return nil, errors.Wrapf(classify(err), "failed to get object s3://%s/%s", bucket, key)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read object s3://%s/%s", bucket, key)
	}
	return data, nil
}

// GetParameter retrieves a value from the SSM Parameter Store using the provided key.
// If encrypted is true, the value is returned decrypted.
func (a *Controller) GetParameter(ctx context.Context, key string, encrypted bool) (string, error) {
	a.logger.With("key", key).Debug("fetching SSM parameter...")
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

func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return storage.Classify(apiErr.ErrorCode(), err)
	}
	return err
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
