package aesmodes

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
)

// BlockSize is the size of a cipher block in bytes.
const BlockSize = aes.BlockSize

// BlockFactory builds a keyed single-block primitive. The engines call it
// once per Encrypt or Decrypt and then invoke the block once per 16 bytes.
type BlockFactory func(key []byte) (cipher.Block, error)

// NewAES128 returns raw AES-128 on one block, without chaining or padding.
func NewAES128(key []byte) (cipher.Block, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher() failed: %w", err)
	}
	return block, nil
}

// EncryptBlock encrypts exactly one block under key and returns a new block.
func EncryptBlock(key, block []byte) ([]byte, error) {
	return transformBlock(key, block, true)
}

// DecryptBlock decrypts exactly one block under key and returns a new block.
func DecryptBlock(key, block []byte) ([]byte, error) {
	return transformBlock(key, block, false)
}

func transformBlock(key, block []byte, encrypt bool) ([]byte, error) {
	b, err := NewAES128(key)
	if err != nil {
		return nil, err
	}
	if len(block) != BlockSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidBlockLength, len(block), BlockSize)
	}

	out := make([]byte, BlockSize)
	if encrypt {
		b.Encrypt(out, block)
	} else {
		b.Decrypt(out, block)
	}
	return out, nil
}

// xorBlock writes a XOR b into dst. All three must be at least one block.
func xorBlock(dst, a, b []byte) {
	subtle.XORBytes(dst[:BlockSize], a[:BlockSize], b[:BlockSize])
}
