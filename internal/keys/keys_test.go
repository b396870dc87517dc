package keys

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aesmodes "github.com/jedisct1/go-aes-modes"
)

func TestParse(t *testing.T) {
	key, err := Parse(" 140b41b22a29beb4061bda66b6747e14\n")
	require.NoError(t, err)
	assert.Equal(t, "140b41b22a29beb4061bda66b6747e14", hex.EncodeToString(key))

	_, err = Parse("140b41")
	assert.ErrorIs(t, err, aesmodes.ErrInvalidKeyLength)

	_, err = Parse("not hex")
	assert.Error(t, err)
}

func TestFromPassphrase(t *testing.T) {
	salt := []byte("salt")
	// RFC 7914 section 11 (PBKDF2-HMAC-SHA256, 1 iteration),
	// truncated to 16 bytes.
	key := FromPassphrase("passwd", salt, 1)
	assert.Equal(t, "55ac046e56e3089fec1691c22544b605", hex.EncodeToString(key))

	a := FromPassphrase("correct horse", salt, 10)
	b := FromPassphrase("correct horse", salt, 10)
	c := FromPassphrase("correct horse", []byte("pepper"), 10)
	assert.Len(t, a, aesmodes.KeySize)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestResolve(t *testing.T) {
	key, err := Resolve("36f18357be4dbd77f050515c73fcf9f2", "ignored", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "36f18357be4dbd77f050515c73fcf9f2", hex.EncodeToString(key))

	key, err = Resolve("", "passwd", hex.EncodeToString([]byte("salt")), 1)
	require.NoError(t, err)
	assert.Equal(t, "55ac046e56e3089fec1691c22544b605", hex.EncodeToString(key))

	_, err = Resolve("", "", "", 0)
	assert.ErrorIs(t, err, ErrNoKey)

	_, err = Resolve("", "passwd", "zz", 1)
	assert.Error(t, err)
}
