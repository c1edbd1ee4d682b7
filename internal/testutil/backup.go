package testutil

import (
	"hg-go/internal/encryption"
	"hg-go/internal/hg"
	"hg-go/internal/vault"
)

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() hg.Vault {
	return vault.NewMemoryVault("test-vault")
}

// NewTestSealer creates a non-cryptographic sealer for testing.
func NewTestSealer() hg.Sealer {
	return encryption.NewTestSealer()
}
