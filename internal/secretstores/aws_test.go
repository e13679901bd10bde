package secretstores_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlift-sh/airlift/internal/secretstores"
)

type mockSecretsManager struct {
	putInputs    []*secretsmanager.PutSecretValueInput
	createInputs []*secretsmanager.CreateSecretInput
	putErr       error
	createErr    error
	listErr      error
}

func (m *mockSecretsManager) PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error) {
	m.putInputs = append(m.putInputs, params)
	if m.putErr != nil {
		return nil, m.putErr
	}
	return &secretsmanager.PutSecretValueOutput{}, nil
}

func (m *mockSecretsManager) CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error) {
	m.createInputs = append(m.createInputs, params)
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &secretsmanager.CreateSecretOutput{}, nil
}

func (m *mockSecretsManager) ListSecrets(ctx context.Context, params *secretsmanager.ListSecretsInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return &secretsmanager.ListSecretsOutput{}, nil
}

type mockSSM struct {
	putInputs []*ssm.PutParameterInput
	putErr    error
}

func (m *mockSSM) PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	m.putInputs = append(m.putInputs, params)
	if m.putErr != nil {
		return nil, m.putErr
	}
	return &ssm.PutParameterOutput{}, nil
}

func newAWSStore(t *testing.T, configMap map[string]interface{}, sm *mockSecretsManager, ps *mockSSM) *secretstores.AWSStore {
	t.Helper()
	store, err := secretstores.NewAWSStore("aws-prod", configMap, testLogger(),
		secretstores.WithSecretsManagerClient(sm),
		secretstores.WithSSMClient(ps))
	require.NoError(t, err)
	return store
}

func TestAWSStoreSetSecretOverwrite(t *testing.T) {
	t.Parallel()

	sm := &mockSecretsManager{}
	store := newAWSStore(t, map[string]interface{}{}, sm, &mockSSM{})

	err := store.SetSecret(context.Background(), "DB_PASSWORD", []byte("hunter2"))
	require.NoError(t, err)

	require.Len(t, sm.putInputs, 1)
	assert.Equal(t, "DB_PASSWORD", *sm.putInputs[0].SecretId)
	assert.Equal(t, "hunter2", *sm.putInputs[0].SecretString)
	assert.Empty(t, sm.createInputs)
}

func TestAWSStoreSetSecretCreatesWhenMissing(t *testing.T) {
	t.Parallel()

	sm := &mockSecretsManager{putErr: &smtypes.ResourceNotFoundException{}}
	store := newAWSStore(t, map[string]interface{}{}, sm, &mockSSM{})

	err := store.SetSecret(context.Background(), "NEW_KEY", []byte("v"))
	require.NoError(t, err)

	require.Len(t, sm.createInputs, 1)
	assert.Equal(t, "NEW_KEY", *sm.createInputs[0].Name)
	assert.Equal(t, "v", *sm.createInputs[0].SecretString)
}

func TestAWSStoreSetSecretOtherErrorsPropagate(t *testing.T) {
	t.Parallel()

	sm := &mockSecretsManager{putErr: errors.New("ThrottlingException: slow down")}
	store := newAWSStore(t, map[string]interface{}{}, sm, &mockSSM{})

	err := store.SetSecret(context.Background(), "KEY", []byte("v"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ThrottlingException")
	assert.Empty(t, sm.createInputs)
}

func TestAWSStoreAuthErrors(t *testing.T) {
	t.Parallel()

	sm := &mockSecretsManager{putErr: errors.New("AccessDenied: no permission")}
	store := newAWSStore(t, map[string]interface{}{}, sm, &mockSSM{})

	err := store.SetSecret(context.Background(), "KEY", []byte("v"))
	require.Error(t, err)

	var authErr secretstores.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "aws-prod", authErr.Store)
}

func TestAWSStoreSetVariable(t *testing.T) {
	t.Parallel()

	ps := &mockSSM{}
	store := newAWSStore(t, map[string]interface{}{}, &mockSecretsManager{}, ps)

	err := store.SetVariable(context.Background(), "REGION", "us-east-1")
	require.NoError(t, err)

	require.Len(t, ps.putInputs, 1)
	input := ps.putInputs[0]
	assert.Equal(t, "REGION", *input.Name)
	assert.Equal(t, "us-east-1", *input.Value)
	assert.Equal(t, ssmtypes.ParameterTypeString, input.Type)
	require.NotNil(t, input.Overwrite)
	assert.True(t, *input.Overwrite)
}

func TestAWSStoreSetVariableWithPrefix(t *testing.T) {
	t.Parallel()

	ps := &mockSSM{}
	store := newAWSStore(t, map[string]interface{}{"parameter_prefix": "/airlift/prod"}, &mockSecretsManager{}, ps)

	require.NoError(t, store.SetVariable(context.Background(), "REGION", "us-east-1"))
	assert.Equal(t, "/airlift/prod/REGION", *ps.putInputs[0].Name)
}

func TestAWSStoreValidate(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		store := newAWSStore(t, map[string]interface{}{}, &mockSecretsManager{}, &mockSSM{})
		assert.NoError(t, store.Validate(context.Background()))
	})

	t.Run("bad credentials", func(t *testing.T) {
		t.Parallel()
		sm := &mockSecretsManager{listErr: errors.New("InvalidClientTokenId")}
		store := newAWSStore(t, map[string]interface{}{}, sm, &mockSSM{})

		err := store.Validate(context.Background())
		var authErr secretstores.AuthError
		require.ErrorAs(t, err, &authErr)
	})
}
