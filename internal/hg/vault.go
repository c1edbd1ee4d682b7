package hg

import (
	"context"
	"io"
)

// Vault stores sealed backup snapshots, one current snapshot per user.
type Vault interface {
	// PutSnapshot stores size bytes read from r as userID's snapshot,
	// tagged with version.
	PutSnapshot(ctx context.Context, userID string, r io.Reader, size int64, version int64) error

	// GetSnapshot writes userID's snapshot to w.
	GetSnapshot(ctx context.Context, userID string, w io.Writer) error

	// SnapshotVersion returns the stored version, or 0 if there is none.
	SnapshotVersion(ctx context.Context, userID string) (int64, error)

	// ValidateSetup verifies the vault is reachable and writable.
	ValidateSetup(ctx context.Context) error
}

// Sealer encrypts backup snapshots. Sealing only needs the public key;
// opening needs the passphrase that protects the private key.
type Sealer interface {
	// Setup generates a key pair, protecting the private key with passphrase.
	Setup(passphrase string) error

	// Seal encrypts r into w.
	Seal(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key and returns an Opener for this run.
	Unlock(passphrase string) (Opener, error)

	// IsConfigured reports whether keys exist.
	IsConfigured() bool
}

// Opener decrypts data sealed by a Sealer.
type Opener interface {
	Open(r io.Reader, w io.Writer) error
}
