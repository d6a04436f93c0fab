package tokenizer

import (
	"context"
	"sync"
	"time"

	"github.com/kevin07696/ach-processor/internal/domain/ports"
)

// MemoryTokenizer keeps tokens in process memory. For local runs and test mode only.
type MemoryTokenizer struct {
	secrets map[string]storedSecret
	mu      sync.RWMutex
}

var _ ports.Tokenizer = (*MemoryTokenizer)(nil)

// NewMemoryTokenizer creates an empty in-memory vault
func NewMemoryTokenizer() *MemoryTokenizer {
	return &MemoryTokenizer{secrets: make(map[string]storedSecret)}
}

func (t *MemoryTokenizer) Tokenize(_ context.Context, req *ports.TokenizeRequest) (*ports.Token, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	secret := newStoredSecret(req)
	data := make(map[string]string, len(req.SensitiveData))
	for k, v := range req.SensitiveData {
		data[k] = v
	}
	secret.SensitiveData = data

	id := newTokenID()
	t.mu.Lock()
	t.secrets[id] = secret
	t.mu.Unlock()

	return &ports.Token{ID: id, Type: secret.Type, Version: "1", CreatedAt: time.Now()}, nil
}

// Detokenize returns the stored sensitive data for a token
func (t *MemoryTokenizer) Detokenize(id string) (map[string]string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	secret, ok := t.secrets[id]
	if !ok {
		return nil, false
	}
	return secret.SensitiveData, true
}
