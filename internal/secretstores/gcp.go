package secretstores

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	dserrors "github.com/airlift-sh/airlift/internal/errors"
	"github.com/airlift-sh/airlift/internal/logging"
)

// GCPSecretsAPI is the slice of the Secret Manager client the store uses,
// narrowed for mocking.
type GCPSecretsAPI interface {
	AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.SecretVersion, error)
	CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error)
	GetSecret(ctx context.Context, req *secretmanagerpb.GetSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error)
}

// variableLabel marks secrets that emulate variables. Google Secret
// Manager has no separate variable store, so variables land in the same
// namespace distinguished by a label.
const variableLabel = "airlift-kind"

// GCPStore writes to Google Cloud Secret Manager. Each set adds a new
// secret version; the latest version is what consumers read, so the
// operation is an overwrite from the caller's perspective.
type GCPStore struct {
	name      string
	config    GCPConfig
	logger    *logging.Logger
	client    GCPSecretsAPI
	projectID string
}

// GCPConfig holds Secret Manager-specific settings.
type GCPConfig struct {
	ProjectID             string
	ServiceAccountKeyPath string
}

// GCPOption is a functional option for configuring the GCP store.
type GCPOption func(*GCPStore)

// WithGCPClient sets a custom Secret Manager client (for testing).
func WithGCPClient(client GCPSecretsAPI) GCPOption {
	return func(s *GCPStore) { s.client = client }
}

// NewGCPStore creates a GCP store from the raw config map.
func NewGCPStore(name string, configMap map[string]interface{}, logger *logging.Logger, opts ...GCPOption) (*GCPStore, error) {
	var config GCPConfig

	if projectID, ok := configMap["project_id"].(string); ok {
		config.ProjectID = projectID
	}
	if keyPath, ok := configMap["service_account_key_path"].(string); ok {
		config.ServiceAccountKeyPath = keyPath
	}

	if config.ProjectID == "" {
		if projectID := gcpProjectFromEnv(); projectID != "" {
			config.ProjectID = projectID
		} else {
			return nil, dserrors.ConfigError{
				Field:      "project_id",
				Message:    "project_id is required for Google Secret Manager",
				Suggestion: "Set project_id in airlift.yaml or the GOOGLE_CLOUD_PROJECT environment variable",
			}
		}
	}

	s := &GCPStore{
		name:      name,
		config:    config,
		logger:    logger,
		projectID: config.ProjectID,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		client, err := newGCPClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
		}
		s.client = client
	}

	return s, nil
}

func newGCPClient(config GCPConfig) (*secretmanager.Client, error) {
	ctx := context.Background()

	var clientOptions []option.ClientOption
	if config.ServiceAccountKeyPath != "" {
		keyPath := config.ServiceAccountKeyPath
		if strings.HasPrefix(keyPath, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			keyPath = filepath.Join(home, keyPath[2:])
		}
		clientOptions = append(clientOptions, option.WithCredentialsFile(keyPath))
	}

	return secretmanager.NewClient(ctx, clientOptions...)
}

func gcpProjectFromEnv() string {
	for _, name := range []string{"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT", "GCP_PROJECT"} {
		if projectID := os.Getenv(name); projectID != "" {
			return projectID
		}
	}
	return ""
}

// Name returns the store name.
func (p *GCPStore) Name() string { return p.name }

// Capabilities reports the GCP feature surface.
func (p *GCPStore) Capabilities() Capabilities {
	return Capabilities{
		NativeVariables: false,
		RequiresAuth:    true,
		AuthMethods:     []string{"service-account", "application-default"},
	}
}

// SetSecret adds a new version to the named secret, creating the secret
// container first when it does not exist yet.
func (p *GCPStore) SetSecret(ctx context.Context, name string, value []byte) error {
	return p.set(ctx, name, value, nil)
}

// SetVariable stores a variable as a labeled secret.
func (p *GCPStore) SetVariable(ctx context.Context, name, value string) error {
	return p.set(ctx, name, []byte(value), map[string]string{variableLabel: "variable"})
}

func (p *GCPStore) set(ctx context.Context, name string, value []byte, labels map[string]string) error {
	parent := fmt.Sprintf("projects/%s/secrets/%s", p.projectID, name)

	addVersion := func() error {
		_, err := p.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
			Parent:  parent,
			Payload: &secretmanagerpb.SecretPayload{Data: value},
		})
		return err
	}

	err := addVersion()
	if err == nil {
		return nil
	}
	if !isGCPNotFound(err) {
		return p.wrapError("set "+name, err)
	}

	p.logger.Debug("secret %s does not exist yet, creating it", name)
	_, err = p.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
		Parent:   "projects/" + p.projectID,
		SecretId: name,
		Secret: &secretmanagerpb.Secret{
			Labels: labels,
			Replication: &secretmanagerpb.Replication{
				Replication: &secretmanagerpb.Replication_Automatic_{
					Automatic: &secretmanagerpb.Replication_Automatic{},
				},
			},
		},
	})
	if err != nil && !isGCPAlreadyExists(err) {
		return p.wrapError("create "+name, err)
	}

	if err := addVersion(); err != nil {
		return p.wrapError("set "+name, err)
	}
	return nil
}

// Validate probes the project with a read of a name not expected to
// exist; a NotFound still proves the credentials and project are good.
func (p *GCPStore) Validate(ctx context.Context) error {
	_, err := p.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{
		Name: fmt.Sprintf("projects/%s/secrets/airlift-validate-probe", p.projectID),
	})
	if err == nil || isGCPNotFound(err) {
		return nil
	}
	return AuthError{
		Store:   p.name,
		Message: fmt.Sprintf("Secret Manager access failed: %v", err),
	}
}

func (p *GCPStore) wrapError(operation string, err error) error {
	if strings.Contains(err.Error(), "PermissionDenied") {
		return AuthError{
			Store:   p.name,
			Message: fmt.Sprintf("Secret Manager authorization failed: %v", err),
		}
	}
	return dserrors.StoreError("gcp", operation, err)
}

func isGCPNotFound(err error) bool {
	return strings.Contains(err.Error(), "NotFound")
}

func isGCPAlreadyExists(err error) bool {
	return strings.Contains(err.Error(), "AlreadyExists")
}
