package vectors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aesmodes "github.com/jedisct1/go-aes-modes"
)

func TestDefault(t *testing.T) {
	vs := Default()
	require.Len(t, vs, 4)

	for _, v := range vs {
		t.Run(v.Name, func(t *testing.T) {
			plaintext, err := v.Check()
			require.NoError(t, err)
			assert.Equal(t, v.Plaintext, string(plaintext))
		})
	}
	assert.Equal(t, 0, RunAll(vs))
}

func TestLoad(t *testing.T) {
	doc := `
vectors:
  - name: custom
    mode: ctr
    key: 36f18357be4dbd77f050515c73fcf9f2
    ciphertext: 770b80259ec33beb2561358a9f2dc617e46218c0a53cbeca695ae45faa8952aa0e311bde9d4e01726d3184c34451
`
	vs, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, ModeCTR, vs[0].Mode)
	assert.Empty(t, vs[0].Plaintext)

	plaintext, err := vs[0].Check()
	require.NoError(t, err)
	assert.Equal(t, "Always avoid the two time pad!", string(plaintext))
}

func TestLoadEmpty(t *testing.T) {
	vs, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, vs)
}

func TestLoadRejects(t *testing.T) {
	_, err := Load(strings.NewReader("vectors:\n  - name: x\n    mode: ecb\n"))
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = Load(strings.NewReader("vectors:\n  - name: x\n    cipher: cbc\n"))
	assert.Error(t, err)
}

func TestCheckFailures(t *testing.T) {
	v := Default()[0]

	wrong := v
	wrong.Plaintext = "something else"
	_, err := wrong.Check()
	assert.ErrorIs(t, err, ErrMismatch)

	tampered := v
	tampered.Ciphertext = v.Ciphertext[:len(v.Ciphertext)-2] + "00"
	_, err = tampered.Check()
	assert.ErrorIs(t, err, aesmodes.ErrPadding)

	short := v
	short.Key = "1234"
	_, err = short.Check()
	assert.ErrorIs(t, err, aesmodes.ErrInvalidKeyLength)

	assert.Equal(t, 3, RunAll([]Vector{wrong, tampered, short}))
}
