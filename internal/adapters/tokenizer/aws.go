package tokenizer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	secretsmanagertypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/kevin07696/ach-processor/internal/domain/ports"
)

// AWSConfig contains configuration for the Secrets Manager tokenizer
type AWSConfig struct {
	Region string

	// Optional: AWS profile name (for local development)
	Profile string

	// Optional: custom endpoint (for LocalStack testing)
	Endpoint string

	// Secret name prefix (default: "ach/bank-accounts")
	SecretPrefix string

	// Optional: customer managed KMS key for the secrets
	KMSKeyID string
}

// secretCreator is the subset of the Secrets Manager client the tokenizer needs
type secretCreator interface {
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
}

// AWSTokenizer stores each bank account as its own secret
type AWSTokenizer struct {
	client secretCreator
	config *AWSConfig
	logger ports.Logger
	now    func() time.Time
}

var _ ports.Tokenizer = (*AWSTokenizer)(nil)

// NewAWSTokenizer loads AWS credentials from the default chain (or Profile)
func NewAWSTokenizer(ctx context.Context, cfg *AWSConfig, logger ports.Logger) (*AWSTokenizer, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var clientOptions []func(*secretsmanager.Options)
	if cfg.Endpoint != "" {
		clientOptions = append(clientOptions, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	logger.Info("AWS Secrets Manager tokenizer initialized",
		ports.String("region", cfg.Region))

	return newAWSTokenizer(secretsmanager.NewFromConfig(awsConfig, clientOptions...), cfg, logger), nil
}

func newAWSTokenizer(client secretCreator, cfg *AWSConfig, logger ports.Logger) *AWSTokenizer {
	if cfg.SecretPrefix == "" {
		cfg.SecretPrefix = "ach/bank-accounts"
	}
	return &AWSTokenizer{client: client, config: cfg, logger: logger, now: time.Now}
}

func (t *AWSTokenizer) Tokenize(ctx context.Context, req *ports.TokenizeRequest) (*ports.Token, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	secret := newStoredSecret(req)
	doc, err := json.Marshal(secret)
	if err != nil {
		return nil, fmt.Errorf("marshal secret: %w", err)
	}

	tokenID := newTokenID()
	input := &secretsmanager.CreateSecretInput{
		Name:         aws.String(secretPath(t.config.SecretPrefix, req.OrganizationID, tokenID)),
		SecretString: aws.String(string(doc)),
		Description:  aws.String("ACH bank account token"),
		Tags: []secretsmanagertypes.Tag{
			{Key: aws.String("token_type"), Value: aws.String(secret.Type)},
		},
	}
	if t.config.KMSKeyID != "" {
		input.KmsKeyId = aws.String(t.config.KMSKeyID)
	}

	out, err := t.client.CreateSecret(ctx, input)
	if err != nil {
		t.logger.Error("Failed to create token secret",
			ports.String("token_id", tokenID),
			ports.Err(err))
		return nil, fmt.Errorf("create secret: %w", err)
	}

	return &ports.Token{
		ID:        tokenID,
		Type:      secret.Type,
		Version:   aws.ToString(out.VersionId),
		CreatedAt: t.now(),
	}, nil
}
