package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/hengadev/credstore"
)

// secretsManagerClient interface for AWS Secrets Manager operations (allows mocking)
type secretsManagerClient interface {
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
}

// BindingStore reads and writes one credstore binding in AWS Secrets Manager.
// It implements credstore.BindingSource.
type BindingStore struct {
	client secretsManagerClient
	region string
	alias  string
}

var _ credstore.BindingSource = (*BindingStore)(nil)

// NewBindingStore creates a BindingStore using the default AWS credential
// chain unless cfg.AWSConfig is set.
func NewBindingStore(ctx context.Context, cfg Config) (*BindingStore, error) {
	if cfg.Alias == "" {
		return nil, fmt.Errorf("%w: binding alias is required", credstore.ErrInvalidConfiguration)
	}

	var awsConfig aws.Config
	if cfg.AWSConfig != nil {
		awsConfig = *cfg.AWSConfig
	} else {
		opts := []func(*config.LoadOptions) error{}
		if cfg.Region != "" {
			opts = append(opts, config.WithRegion(cfg.Region))
		}

		var err error
		awsConfig, err = config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to load AWS config: %w", credstore.ErrBindingSourceUnavailable, err)
		}
	}

	return &BindingStore{
		client: secretsmanager.NewFromConfig(awsConfig),
		region: awsConfig.Region,
		alias:  cfg.Alias,
	}, nil
}

// GetStoragePath returns the secret name of the binding.
//
// Path format: "credstore/{alias}/binding"
func (s *BindingStore) GetStoragePath() string {
	return fmt.Sprintf(credstore.AWSBindingPathTemplate, s.alias)
}

// LoadBinding reads the current secret version and validates it.
func (s *BindingStore) LoadBinding(ctx context.Context) (credstore.Binding, error) {
	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.GetStoragePath()),
	})
	if err != nil {
		return credstore.Binding{}, fmt.Errorf("%w: failed to get binding from Secrets Manager: %w",
			credstore.ErrBindingSourceUnavailable, err)
	}
	if result.SecretString == nil {
		return credstore.Binding{}, fmt.Errorf("%w: binding not found for alias: %s",
			credstore.ErrBindingSourceUnavailable, s.alias)
	}

	return credstore.ParseBinding([]byte(*result.SecretString))
}

// StoreBinding creates the secret or puts a new version when it exists.
func (s *BindingStore) StoreBinding(ctx context.Context, binding credstore.Binding) error {
	if err := binding.Validate(); err != nil {
		return err
	}

	secret, err := json.Marshal(binding)
	if err != nil {
		return fmt.Errorf("%w: encode binding: %w", credstore.ErrInvalidConfiguration, err)
	}

	exists, err := s.BindingExists(ctx)
	if err != nil {
		return err
	}

	secretName := s.GetStoragePath()
	if exists {
		_, err = s.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
			SecretId:     aws.String(secretName),
			SecretString: aws.String(string(secret)),
		})
		if err != nil {
			return fmt.Errorf("%w: failed to update binding in Secrets Manager: %w",
				credstore.ErrBindingSourceUnavailable, err)
		}
		return nil
	}

	_, err = s.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(secretName),
		Description:  aws.String(fmt.Sprintf("credstore binding for %s", s.alias)),
		SecretString: aws.String(string(secret)),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create binding in Secrets Manager: %w",
			credstore.ErrBindingSourceUnavailable, err)
	}
	return nil
}

// BindingExists reports whether the secret exists. A missing secret is not
// an error.
func (s *BindingStore) BindingExists(ctx context.Context) (bool, error) {
	_, err := s.client.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{
		SecretId: aws.String(s.GetStoragePath()),
	})
	if err != nil {
		var notFoundErr *types.ResourceNotFoundException
		if errors.As(err, &notFoundErr) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to check if binding exists: %w",
			credstore.ErrBindingSourceUnavailable, err)
	}
	return true, nil
}

// Region returns the AWS region this store is configured for.
func (s *BindingStore) Region() string {
	return s.region
}
