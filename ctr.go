package aesmodes

import (
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
)

// CTR encrypts and decrypts with AES-128 in counter mode. The IV is the
// initial counter and travels unencrypted as the first block of the message.
// A CTR is safe for concurrent use.
type CTR struct {
	opts options
}

// NewCTR creates a CTR engine.
func NewCTR(opts ...Option) *CTR {
	return &CTR{opts: newOptions(opts)}
}

// Encrypt returns iv followed by plaintext XORed with the keystream
// E(iv), E(iv+1), ... The output is exactly len(plaintext) + 16 bytes.
func (c *CTR) Encrypt(key, iv, plaintext []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	ctr, err := CounterFrom(iv)
	if err != nil {
		return nil, err
	}
	b, err := c.opts.newBlock(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, BlockSize+len(plaintext))
	copy(out, iv)
	c.xorKeyStream(b, ctr, out[BlockSize:], plaintext)
	return out, nil
}

// Decrypt reverses Encrypt. The first block of ciphertext is the initial
// counter; the result is len(ciphertext) - 16 bytes.
func (c *CTR) Decrypt(key, ciphertext []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if len(ciphertext) < BlockSize {
		return nil, fmt.Errorf("%w: got %d bytes, want at least %d",
			ErrInvalidCiphertextLength, len(ciphertext), BlockSize)
	}
	b, err := c.opts.newBlock(key)
	if err != nil {
		return nil, err
	}

	var ctr Counter
	copy(ctr[:], ciphertext[:BlockSize])

	out := make([]byte, len(ciphertext)-BlockSize)
	c.xorKeyStream(b, ctr, out, ciphertext[BlockSize:])
	return out, nil
}

// xorKeyStream XORs src with the keystream starting at ctr into dst. The
// keystream for block i is E(ctr+i), so the work splits across workers.
func (c *CTR) xorKeyStream(b cipher.Block, ctr Counter, dst, src []byte) {
	n := (len(src) + BlockSize - 1) / BlockSize
	c.opts.forEachRange(n, len(src), func(lo, hi int) {
		end := min(hi*BlockSize, len(src))
		keyStream(b, ctr.Add(uint64(lo)), dst[lo*BlockSize:end], src[lo*BlockSize:end])
	})
}

func keyStream(b cipher.Block, ctr Counter, dst, src []byte) {
	var ks [BlockSize]byte
	for len(src) > 0 {
		b.Encrypt(ks[:], ctr[:])
		n := subtle.XORBytes(dst, src, ks[:])
		dst, src = dst[n:], src[n:]
		ctr = ctr.Next()
	}
}
