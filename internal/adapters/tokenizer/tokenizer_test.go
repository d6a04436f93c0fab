package tokenizer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/ach-processor/internal/domain/ports"
	"github.com/kevin07696/ach-processor/internal/testutil/mocks"
)

func bankAccountRequest() *ports.TokenizeRequest {
	return &ports.TokenizeRequest{
		Type:           ports.TokenTypeBankAccount,
		OrganizationID: "org_1",
		SensitiveData: map[string]string{
			"routing_number": "021000021",
			"account_number": "1234567890",
		},
		Metadata: map[string]string{"invoice_id": "1001"},
	}
}

func TestMemoryTokenizer(t *testing.T) {
	tok := NewMemoryTokenizer()
	req := bankAccountRequest()

	token, err := tok.Tokenize(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token.ID, TokenPrefix))
	assert.Len(t, token.ID, len(TokenPrefix)+32)

	req.SensitiveData["account_number"] = "mutated"
	data, ok := tok.Detokenize(token.ID)
	require.True(t, ok)
	assert.Equal(t, "1234567890", data["account_number"])

	other, err := tok.Tokenize(context.Background(), bankAccountRequest())
	require.NoError(t, err)
	assert.NotEqual(t, token.ID, other.ID)

	_, err = tok.Tokenize(context.Background(), &ports.TokenizeRequest{})
	assert.Error(t, err)
}

func TestVaultTokenizer_Tokenize(t *testing.T) {
	var gotPath, gotToken string
	var gotBody map[string]map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Vault-Token")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"version":3}}`))
	}))
	defer server.Close()

	cfg := DefaultVaultConfig(server.URL)
	cfg.Token = "root"
	tok, err := NewVaultTokenizer(context.Background(), cfg, mocks.NewMockLogger())
	require.NoError(t, err)

	token, err := tok.Tokenize(context.Background(), bankAccountRequest())
	require.NoError(t, err)

	assert.Equal(t, "/v1/secret/data/ach/bank-accounts/org_1/"+token.ID, gotPath)
	assert.Equal(t, "root", gotToken)
	assert.Equal(t, "3", token.Version)
	assert.Equal(t, ports.TokenTypeBankAccount, token.Type)

	sensitive, ok := gotBody["data"]["sensitive_data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "1234567890", sensitive["account_number"])
}

func TestVaultTokenizer_WriteFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
	}))
	defer server.Close()

	cfg := DefaultVaultConfig(server.URL)
	cfg.Token = "limited"
	logger := mocks.NewMockLogger()
	tok, err := NewVaultTokenizer(context.Background(), cfg, logger)
	require.NoError(t, err)

	_, err = tok.Tokenize(context.Background(), bankAccountRequest())
	assert.ErrorContains(t, err, "permission denied")
	assert.True(t, logger.HasError("Failed to write token to Vault"))
}

func TestNewVaultTokenizer_AuthValidation(t *testing.T) {
	cfg := DefaultVaultConfig("http://127.0.0.1:1")
	_, err := NewVaultTokenizer(context.Background(), cfg, mocks.NewMockLogger())
	assert.ErrorContains(t, err, "token is required")

	cfg.AuthMethod = "approle"
	_, err = NewVaultTokenizer(context.Background(), cfg, mocks.NewMockLogger())
	assert.ErrorContains(t, err, "role_id and secret_id are required")

	cfg.AuthMethod = "kerberos"
	_, err = NewVaultTokenizer(context.Background(), cfg, mocks.NewMockLogger())
	assert.ErrorContains(t, err, "unsupported auth method")
}

type fakeSecretsManager struct {
	input *secretsmanager.CreateSecretInput
	err   error
}

func (f *fakeSecretsManager) CreateSecret(_ context.Context, params *secretsmanager.CreateSecretInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.CreateSecretOutput{VersionId: aws.String("v-1")}, nil
}

func TestAWSTokenizer_Tokenize(t *testing.T) {
	fake := &fakeSecretsManager{}
	tok := newAWSTokenizer(fake, &AWSConfig{Region: "us-east-1", KMSKeyID: "alias/ach"}, mocks.NewMockLogger())

	token, err := tok.Tokenize(context.Background(), bankAccountRequest())
	require.NoError(t, err)

	assert.Equal(t, "v-1", token.Version)
	assert.Equal(t, "ach/bank-accounts/org_1/"+token.ID, aws.ToString(fake.input.Name))
	assert.Equal(t, "alias/ach", aws.ToString(fake.input.KmsKeyId))

	var stored storedSecret
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(fake.input.SecretString)), &stored))
	assert.Equal(t, "021000021", stored.SensitiveData["routing_number"])
	assert.Equal(t, "org_1", stored.OrganizationID)
}

func TestAWSTokenizer_Failure(t *testing.T) {
	fake := &fakeSecretsManager{err: errors.New("AccessDeniedException")}
	logger := mocks.NewMockLogger()
	tok := newAWSTokenizer(fake, &AWSConfig{Region: "us-east-1"}, logger)

	_, err := tok.Tokenize(context.Background(), bankAccountRequest())
	assert.ErrorContains(t, err, "AccessDeniedException")
	assert.True(t, logger.HasError("Failed to create token secret"))
}

func TestSecretPath(t *testing.T) {
	assert.Equal(t, "ach/x/default/btok_1", secretPath("/ach/x/", "", "btok_1"))
	assert.Equal(t, "p/org/btok_1", secretPath("p", "org", "btok_1"))
}
