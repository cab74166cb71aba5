package relay

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/ignite/golden-ipa/internal/config"
)

// NewCredentialsProvider returns the signing credentials for the experience
// layer: the static key pair from configuration when present, otherwise the
// AWS default chain (IAM role on ECS/Lambda, profile locally). The provider
// is cached and refreshes itself before expiry.
func NewCredentialsProvider(ctx context.Context, cfg *config.Config) (aws.CredentialsProvider, error) {
	if cfg.Experience.HasStaticCredentials() {
		return aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.Experience.AccessKeyID,
			cfg.Experience.SecretAccessKey,
			cfg.Experience.SessionToken,
		)), nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWS.Region)}
	if profile := cfg.AWS.GetProfile(); profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	if awsCfg.Credentials == nil {
		return nil, fmt.Errorf("no AWS credentials available")
	}
	return awsCfg.Credentials, nil
}
