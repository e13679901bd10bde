package secretstores

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	dserrors "github.com/airlift-sh/airlift/internal/errors"
	"github.com/airlift-sh/airlift/internal/logging"
)

// variableContentType marks Key Vault secrets that emulate variables.
const variableContentType = "text/x-airlift-variable"

// AzureSecretsAPI is the slice of the Key Vault client the store uses,
// narrowed for mocking.
type AzureSecretsAPI interface {
	SetSecret(ctx context.Context, name string, parameters azsecrets.SetSecretParameters, options *azsecrets.SetSecretOptions) (azsecrets.SetSecretResponse, error)
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// AzureStore writes to an Azure Key Vault. Key Vault versions on write,
// so repeated sets of the same name are overwrites of the current version.
type AzureStore struct {
	name   string
	config AzureConfig
	logger *logging.Logger
	client AzureSecretsAPI
}

// AzureConfig holds Key Vault-specific settings.
type AzureConfig struct {
	VaultURL           string
	TenantID           string
	ClientID           string
	ClientSecret       string
	UseManagedIdentity bool
}

// AzureOption is a functional option for configuring the Azure store.
type AzureOption func(*AzureStore)

// WithAzureClient sets a custom Key Vault client (for testing).
func WithAzureClient(client AzureSecretsAPI) AzureOption {
	return func(s *AzureStore) { s.client = client }
}

// NewAzureStore creates an Azure store from the raw config map.
func NewAzureStore(name string, configMap map[string]interface{}, logger *logging.Logger, opts ...AzureOption) (*AzureStore, error) {
	config := AzureConfig{UseManagedIdentity: true}

	if vaultURL, ok := configMap["vault_url"].(string); ok {
		config.VaultURL = vaultURL
	}
	if tenantID, ok := configMap["tenant_id"].(string); ok {
		config.TenantID = tenantID
	}
	if clientID, ok := configMap["client_id"].(string); ok {
		config.ClientID = clientID
	}
	if clientSecret, ok := configMap["client_secret"].(string); ok {
		config.ClientSecret = clientSecret
	}
	if useMI, ok := configMap["use_managed_identity"].(bool); ok {
		config.UseManagedIdentity = useMI
	}

	if config.VaultURL == "" {
		return nil, dserrors.ConfigError{
			Field:      "vault_url",
			Message:    "vault_url is required for Azure Key Vault",
			Suggestion: "Provide the Key Vault URL (e.g., https://my-vault.vault.azure.net/)",
		}
	}
	if _, err := url.Parse(config.VaultURL); err != nil {
		return nil, dserrors.ConfigError{
			Field:      "vault_url",
			Message:    "Invalid vault_url format",
			Suggestion: "Use format: https://vault-name.vault.azure.net/",
		}
	}

	s := &AzureStore{name: name, config: config, logger: logger}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		client, err := newAzureClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
		}
		s.client = client
	}

	return s, nil
}

func newAzureClient(config AzureConfig) (*azsecrets.Client, error) {
	var cred azcore.TokenCredential
	var err error

	if config.TenantID != "" && config.ClientID != "" && config.ClientSecret != "" {
		cred, err = azidentity.NewClientSecretCredential(config.TenantID, config.ClientID, config.ClientSecret, nil)
	} else if config.UseManagedIdentity {
		cred, err = azidentity.NewManagedIdentityCredential(nil)
	} else {
		cred, err = azidentity.NewDefaultAzureCredential(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	return azsecrets.NewClient(config.VaultURL, cred, nil)
}

// Name returns the store name.
func (s *AzureStore) Name() string { return s.name }

// Capabilities reports the Key Vault feature surface.
func (s *AzureStore) Capabilities() Capabilities {
	return Capabilities{
		NativeVariables: false,
		RequiresAuth:    true,
		AuthMethods:     []string{"managed-identity", "client-secret", "cli"},
	}
}

// SetSecret writes a Key Vault secret.
func (s *AzureStore) SetSecret(ctx context.Context, name string, value []byte) error {
	body := string(value)
	_, err := s.client.SetSecret(ctx, name, azsecrets.SetSecretParameters{Value: &body}, nil)
	if err != nil {
		return s.wrapError("secret set "+name, err)
	}
	return nil
}

// SetVariable writes a Key Vault secret tagged with the variable content
// type, since Key Vault has no separate variable store.
func (s *AzureStore) SetVariable(ctx context.Context, name, value string) error {
	contentType := variableContentType
	_, err := s.client.SetSecret(ctx, name, azsecrets.SetSecretParameters{
		Value:       &value,
		ContentType: &contentType,
	}, nil)
	if err != nil {
		return s.wrapError("variable set "+name, err)
	}
	return nil
}

// Validate probes the vault with a read of a name that is not expected to
// exist; a 404 still proves the credentials and vault URL are good.
func (s *AzureStore) Validate(ctx context.Context) error {
	_, err := s.client.GetSecret(ctx, "airlift-validate-probe", "", nil)
	if err == nil {
		return nil
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == 404 {
		return nil
	}
	return AuthError{
		Store:   s.name,
		Message: fmt.Sprintf("Key Vault access failed: %v", err),
	}
}

func (s *AzureStore) wrapError(operation string, err error) error {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && (respErr.StatusCode == 401 || respErr.StatusCode == 403) {
		return AuthError{
			Store:   s.name,
			Message: fmt.Sprintf("Key Vault authorization failed: %v", err),
		}
	}
	return dserrors.StoreError("azure", operation, err)
}
