package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeySize)
	aead, err := NewGCM(key)
	require.NoError(t, err)

	ct, err := Encrypt(aead, []byte("hello"))
	require.NoError(t, err)
	assert.NotContains(t, string(ct), "hello")

	plain, err := Decrypt(aead, ct)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plain))

	// every encryption draws a fresh nonce
	ct2, err := Encrypt(aead, []byte("hello"))
	require.NoError(t, err)
	assert.NotEqual(t, ct, ct2)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	aead1, err := NewGCM(bytes.Repeat([]byte{0x01}, KeySize))
	require.NoError(t, err)
	aead2, err := NewGCM(bytes.Repeat([]byte{0x02}, KeySize))
	require.NoError(t, err)

	ct, err := Encrypt(aead1, []byte("secret"))
	require.NoError(t, err)

	_, err = Decrypt(aead2, ct)
	assert.Error(t, err)
}

func TestDecryptRejectsTruncated(t *testing.T) {
	aead, err := NewGCM(bytes.Repeat([]byte{0x01}, KeySize))
	require.NoError(t, err)

	_, err = Decrypt(aead, []byte("too short"))
	assert.Error(t, err)
}

func TestKeySizeEnforced(t *testing.T) {
	_, err := NewGCM([]byte("short"))
	assert.Error(t, err)
}
