package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"hg-go/internal/hg"
)

// plainHeader marks data "sealed" by TestSealer.
var plainHeader = []byte("HGPLAIN\x00")

// TestSealer is a deterministic, non-cryptographic Sealer for tests and
// throwaway setups. It prefixes a fixed header and strips it on Open.
type TestSealer struct {
	configured bool
	passphrase string
}

var _ hg.Sealer = (*TestSealer)(nil)

// NewTestSealer returns a TestSealer that reports itself configured.
func NewTestSealer() *TestSealer {
	return &TestSealer{configured: true}
}

func (s *TestSealer) Setup(passphrase string) error {
	s.configured = true
	s.passphrase = passphrase
	return nil
}

func (s *TestSealer) Seal(r io.Reader, w io.Writer) error {
	if _, err := w.Write(plainHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

// Unlock accepts any passphrase unless Setup recorded one.
func (s *TestSealer) Unlock(passphrase string) (hg.Opener, error) {
	if s.passphrase != "" && passphrase != s.passphrase {
		return nil, errors.New("incorrect passphrase")
	}
	return plainOpener{}, nil
}

func (s *TestSealer) IsConfigured() bool {
	return s.configured
}

type plainOpener struct{}

func (plainOpener) Open(r io.Reader, w io.Writer) error {
	header := make([]byte, len(plainHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	if !bytes.Equal(header, plainHeader) {
		return errors.New("invalid header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
