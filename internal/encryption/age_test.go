package encryption

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hg-go/internal/config"
)

func newTestAgeSealer(t *testing.T) *AgeSealer {
	t.Helper()
	dir := t.TempDir()
	return NewAgeSealer(config.EncryptionConfig{
		PublicKeyPath:  filepath.Join(dir, "keys", "hg.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "hg.key"),
	})
}

func TestAgeSealer_Setup(t *testing.T) {
	t.Parallel()
	s := newTestAgeSealer(t)
	assert.False(t, s.IsConfigured())

	require.NoError(t, s.Setup("test-passphrase"))
	assert.True(t, s.IsConfigured())
}

func TestAgeSealer_SetupRejectsEmptyPassphrase(t *testing.T) {
	t.Parallel()
	s := newTestAgeSealer(t)
	assert.Error(t, s.Setup(""))
	assert.False(t, s.IsConfigured())
}

func TestAgeSealer_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "snapshot text", input: []byte("format: 1\nuser:\n  id: u1\n")},
		{name: "empty", input: []byte{}},
		{name: "large", input: bytes.Repeat([]byte("water: 250\n"), 5000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestAgeSealer(t)
			require.NoError(t, s.Setup("pw"))

			var sealed bytes.Buffer
			require.NoError(t, s.Seal(bytes.NewReader(tt.input), &sealed))
			if len(tt.input) > 0 {
				assert.NotContains(t, sealed.String(), string(tt.input))
			}

			opener, err := s.Unlock("pw")
			require.NoError(t, err)

			var plain bytes.Buffer
			require.NoError(t, opener.Open(&sealed, &plain))
			assert.Equal(t, tt.input, plain.Bytes())
		})
	}
}

func TestAgeSealer_UnlockWrongPassphrase(t *testing.T) {
	t.Parallel()
	s := newTestAgeSealer(t)
	require.NoError(t, s.Setup("correct"))

	_, err := s.Unlock("wrong")
	assert.Error(t, err)
}

func TestAgeSealer_BeforeSetup(t *testing.T) {
	t.Parallel()
	s := newTestAgeSealer(t)

	var buf bytes.Buffer
	assert.Error(t, s.Seal(bytes.NewReader([]byte("data")), &buf))

	_, err := s.Unlock("pw")
	assert.Error(t, err)
}
