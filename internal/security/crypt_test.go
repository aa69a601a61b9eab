package security

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	return bytes.Repeat([]byte{7}, 32)
}

func TestTokenCipher_RoundTrip(t *testing.T) {
	c, err := NewTokenCipher(testKey())
	require.NoError(t, err)

	sealed, err := c.Encrypt("shpat_abc123")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "shpat_abc123")

	again, err := c.Encrypt("shpat_abc123")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per call")

	plain, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "shpat_abc123", plain)
}

func TestTokenCipher_RejectsTampering(t *testing.T) {
	c, _ := NewTokenCipher(testKey())
	sealed, _ := c.Encrypt("secret")

	raw, _ := base64.RawURLEncoding.DecodeString(sealed)
	raw[len(raw)-1] ^= 0x01

	_, err := c.Decrypt(base64.RawURLEncoding.EncodeToString(raw))
	assert.Error(t, err)

	_, err = c.Decrypt("AAAA")
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestLoadKeyFromBase64(t *testing.T) {
	k, err := LoadKeyFromBase64(base64.StdEncoding.EncodeToString(testKey()))
	require.NoError(t, err)
	assert.Len(t, k, 32)

	_, err = LoadKeyFromBase64(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)

	_, err = LoadKeyFromBase64("%%%")
	assert.Error(t, err)
}
