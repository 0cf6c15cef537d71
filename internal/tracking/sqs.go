package tracking

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/ignite/travel-crm/internal/config"
	"github.com/ignite/travel-crm/internal/pkg/logger"
)

// NewSQSClient builds the queue client. A configured endpoint (localstack,
// ElasticMQ) gets static dummy credentials.
func NewSQSClient(ctx context.Context, cfg config.TrackingConfig) (*sqs.Client, error) {
	configOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	var clientOpts []func(*sqs.Options)

	if cfg.Endpoint != "" {
		logger.Info("using local sqs endpoint", "endpoint", cfg.Endpoint)
		configOpts = append(configOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "")))
		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return sqs.NewFromConfig(awsCfg, clientOpts...), nil
}
