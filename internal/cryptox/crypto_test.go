package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/socialfeed/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSealer(t *testing.T) *Sealer {
	t.Helper()
	s, err := NewSealer(common.GenerateRandByteArray(KeySize))
	require.NoError(t, err)
	return s
}

func TestNewSealer_RejectsShortKey(t *testing.T) {
	_, err := NewSealer([]byte("short"))
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	s := newTestSealer(t)

	ct, nonce, err := s.Seal([]byte("access-token"), []byte("social_media_token"))
	require.NoError(t, err)
	assert.NotEqual(t, []byte("access-token"), ct)

	pt, err := s.Open(ct, nonce, []byte("social_media_token"))
	require.NoError(t, err)
	assert.Equal(t, []byte("access-token"), pt)
}

func TestOpen_WrongAdditionalDataFails(t *testing.T) {
	s := newTestSealer(t)

	ct, nonce, err := s.Seal([]byte("v"), []byte("a"))
	require.NoError(t, err)

	_, err = s.Open(ct, nonce, []byte("b"))
	require.Error(t, err)
}

func TestOpen_BadNonceLength(t *testing.T) {
	s := newTestSealer(t)
	_, err := s.Open([]byte("x"), []byte{1, 2, 3}, nil)
	require.ErrorContains(t, err, "bad nonce length")
}

func TestSeal_UsesFreshNonce(t *testing.T) {
	s := newTestSealer(t)
	_, n1, err := s.Seal([]byte("v"), nil)
	require.NoError(t, err)
	_, n2, err := s.Seal([]byte("v"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, n1, n2)
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "client.key")

	k1, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	require.Len(t, k1, KeySize)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	k2, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	assert.Equal(t, k1, k2, "second call must reuse the stored key")
}

func TestLoadOrCreateKey_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.key")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o600))

	_, err := LoadOrCreateKey(path)
	require.ErrorIs(t, err, ErrInvalidKey)
}
