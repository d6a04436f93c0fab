// Package tokenizer vaults bank account details and hands back opaque tokens
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kevin07696/ach-processor/internal/domain/ports"
	apperrors "github.com/kevin07696/ach-processor/pkg/errors"
)

// TokenPrefix marks bank account tokens
const TokenPrefix = "btok_"

func newTokenID() string {
	return TokenPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// secretPath places each token under its organization
func secretPath(prefix, organizationID, tokenID string) string {
	org := organizationID
	if org == "" {
		org = "default"
	}
	return fmt.Sprintf("%s/%s/%s", strings.Trim(prefix, "/"), org, tokenID)
}

func validateRequest(req *ports.TokenizeRequest) error {
	if req == nil {
		return apperrors.NewValidationError("request", "tokenize request is required")
	}
	if len(req.SensitiveData) == 0 {
		return apperrors.NewValidationError("sensitive_data", "tokenize request has no sensitive data")
	}
	return nil
}

// storedSecret is the document written to the backing vault
type storedSecret struct {
	Type           string            `json:"type"`
	OrganizationID string            `json:"organization_id,omitempty"`
	SensitiveData  map[string]string `json:"sensitive_data"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

func newStoredSecret(req *ports.TokenizeRequest) storedSecret {
	typ := req.Type
	if typ == "" {
		typ = ports.TokenTypeBankAccount
	}
	return storedSecret{
		Type:           typ,
		OrganizationID: req.OrganizationID,
		SensitiveData:  req.SensitiveData,
		Metadata:       req.Metadata,
	}
}
