package secretstores

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	dserrors "github.com/airlift-sh/airlift/internal/errors"
	"github.com/airlift-sh/airlift/internal/logging"
)

// SecretsManagerAPI is the slice of the Secrets Manager client the store
// uses. Narrowed to an interface so tests can inject a mock.
type SecretsManagerAPI interface {
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	ListSecrets(ctx context.Context, params *secretsmanager.ListSecretsInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error)
}

// SSMAPI is the slice of the SSM client used for variables.
type SSMAPI interface {
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// AWSStore writes secrets to AWS Secrets Manager and variables to SSM
// Parameter Store (String parameters). Both operations overwrite.
type AWSStore struct {
	name    string
	config  AWSConfig
	logger  *logging.Logger
	secrets SecretsManagerAPI
	params  SSMAPI
}

// AWSConfig holds AWS-specific settings.
type AWSConfig struct {
	Region          string
	Profile         string
	AssumeRole      string
	Endpoint        string // custom endpoint for LocalStack or testing
	AccessKeyID     string // static credentials, testing only
	SecretAccessKey string
	ParameterPrefix string // SSM path prefix for variables, e.g. /airlift
}

// AWSOption is a functional option for configuring the AWS store.
type AWSOption func(*AWSStore)

// WithSecretsManagerClient sets a custom Secrets Manager client (for testing).
func WithSecretsManagerClient(client SecretsManagerAPI) AWSOption {
	return func(s *AWSStore) { s.secrets = client }
}

// WithSSMClient sets a custom SSM client (for testing).
func WithSSMClient(client SSMAPI) AWSOption {
	return func(s *AWSStore) { s.params = client }
}

// NewAWSStore creates an AWS store from the raw config map.
func NewAWSStore(name string, configMap map[string]interface{}, logger *logging.Logger, opts ...AWSOption) (*AWSStore, error) {
	config := AWSConfig{Region: "us-east-1"}

	if region, ok := configMap["region"].(string); ok && region != "" {
		config.Region = region
	}
	if profile, ok := configMap["profile"].(string); ok {
		config.Profile = profile
	}
	if role, ok := configMap["assume_role"].(string); ok {
		config.AssumeRole = role
	}
	if endpoint, ok := configMap["endpoint"].(string); ok {
		config.Endpoint = endpoint
	}
	if ak, ok := configMap["access_key_id"].(string); ok {
		config.AccessKeyID = ak
	}
	if sk, ok := configMap["secret_access_key"].(string); ok {
		config.SecretAccessKey = sk
	}
	if prefix, ok := configMap["parameter_prefix"].(string); ok {
		config.ParameterPrefix = prefix
	}

	s := &AWSStore{name: name, config: config, logger: logger}

	for _, opt := range opts {
		opt(s)
	}

	if s.secrets == nil || s.params == nil {
		cfg, err := loadAWSConfig(config)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		if s.secrets == nil {
			var clientOpts []func(*secretsmanager.Options)
			if config.Endpoint != "" {
				clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
					o.BaseEndpoint = &config.Endpoint
				})
			}
			s.secrets = secretsmanager.NewFromConfig(cfg, clientOpts...)
		}
		if s.params == nil {
			var clientOpts []func(*ssm.Options)
			if config.Endpoint != "" {
				clientOpts = append(clientOpts, func(o *ssm.Options) {
					o.BaseEndpoint = &config.Endpoint
				})
			}
			s.params = ssm.NewFromConfig(cfg, clientOpts...)
		}
	}

	return s, nil
}

func loadAWSConfig(config AWSConfig) (aws.Config, error) {
	ctx := context.Background()

	var configOpts []func(*awsconfig.LoadOptions) error
	configOpts = append(configOpts, awsconfig.WithRegion(config.Region))

	if config.Profile != "" {
		configOpts = append(configOpts, awsconfig.WithSharedConfigProfile(config.Profile))
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return aws.Config{}, err
	}

	if config.AssumeRole != "" {
		stsClient := sts.NewFromConfig(cfg)
		cfg.Credentials = aws.NewCredentialsCache(
			stscreds.NewAssumeRoleProvider(stsClient, config.AssumeRole),
		)
	}

	return cfg, nil
}

// Name returns the store name.
func (s *AWSStore) Name() string { return s.name }

// Capabilities reports the AWS feature surface.
func (s *AWSStore) Capabilities() Capabilities {
	return Capabilities{
		NativeVariables: true,
		RequiresAuth:    true,
		AuthMethods:     []string{"iam", "profile", "assume-role"},
	}
}

// SetSecret writes a secret to Secrets Manager. PutSecretValue covers the
// overwrite path; a ResourceNotFoundException falls back to CreateSecret
// so first-time keys work without pre-provisioning.
func (s *AWSStore) SetSecret(ctx context.Context, name string, value []byte) error {
	body := string(value)

	_, err := s.secrets.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     &name,
		SecretString: &body,
	})
	if err == nil {
		return nil
	}

	var notFound *smtypes.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return s.wrapError("secret set "+name, err)
	}

	s.logger.Debug("secret %s does not exist yet, creating it", name)
	_, err = s.secrets.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         &name,
		SecretString: &body,
	})
	if err != nil {
		return s.wrapError("secret create "+name, err)
	}
	return nil
}

// SetVariable writes an SSM String parameter with Overwrite set.
func (s *AWSStore) SetVariable(ctx context.Context, name, value string) error {
	paramName := name
	if s.config.ParameterPrefix != "" {
		paramName = path.Join(s.config.ParameterPrefix, name)
	}

	overwrite := true
	_, err := s.params.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      &paramName,
		Value:     &value,
		Type:      ssmtypes.ParameterTypeString,
		Overwrite: &overwrite,
	})
	if err != nil {
		return s.wrapError("variable set "+name, err)
	}
	return nil
}

// Validate verifies credentials with a minimal ListSecrets call.
func (s *AWSStore) Validate(ctx context.Context) error {
	one := int32(1)
	_, err := s.secrets.ListSecrets(ctx, &secretsmanager.ListSecretsInput{MaxResults: &one})
	if err != nil {
		return AuthError{
			Store:   s.name,
			Message: fmt.Sprintf("AWS authentication failed: %v", err),
		}
	}
	return nil
}

func (s *AWSStore) wrapError(operation string, err error) error {
	if isAWSAuthError(err) {
		return AuthError{
			Store:   s.name,
			Message: fmt.Sprintf("AWS authorization failed: %v", err),
		}
	}
	return dserrors.StoreError("aws", operation, err)
}

func isAWSAuthError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "AccessDenied") ||
		strings.Contains(errStr, "UnauthorizedOperation") ||
		strings.Contains(errStr, "InvalidUserID") ||
		strings.Contains(errStr, "Forbidden")
}
