package aesmodes

import (
	"crypto/cipher"
	"fmt"
)

// CBC encrypts and decrypts with AES-128 in cipher block chaining mode.
// The IV travels in encrypted form as the first block of the message.
// A CBC is safe for concurrent use.
type CBC struct {
	opts options
}

// NewCBC creates a CBC engine.
func NewCBC(opts ...Option) *CBC {
	return &CBC{opts: newOptions(opts)}
}

// Encrypt pads plaintext and returns E(iv) followed by the chained
// ciphertext blocks. The output is always 16 * (len(plaintext)/16 + 2) bytes.
func (c *CBC) Encrypt(key, iv, plaintext []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if err := checkIV(iv); err != nil {
		return nil, err
	}
	b, err := c.opts.newBlock(key)
	if err != nil {
		return nil, err
	}

	full := len(plaintext) / BlockSize * BlockSize
	out := make([]byte, full+2*BlockSize)

	b.Encrypt(out[:BlockSize], iv)
	prev := out[:BlockSize]
	for i := 0; i < full; i += BlockSize {
		dst := out[BlockSize+i : 2*BlockSize+i]
		xorBlock(dst, plaintext[i:], prev)
		b.Encrypt(dst, dst)
		prev = dst
	}

	var last [BlockSize]byte
	padBlock(&last, plaintext[full:])
	dst := out[len(out)-BlockSize:]
	xorBlock(dst, last[:], prev)
	b.Encrypt(dst, dst)

	return out, nil
}

// Decrypt reverses Encrypt. iv is the first block of the message exactly as
// transmitted, and ciphertext is the rest of the message. The padding is
// checked and removed; ErrPadding is returned if it is malformed.
func (c *CBC) Decrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if err := checkIV(iv); err != nil {
		return nil, err
	}
	if len(ciphertext) < BlockSize || len(ciphertext)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: got %d bytes, want a non-zero multiple of %d",
			ErrInvalidCiphertextLength, len(ciphertext), BlockSize)
	}
	b, err := c.opts.newBlock(key)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	c.opts.forEachRange(len(ciphertext)/BlockSize, len(ciphertext), func(lo, hi int) {
		decryptBlocksCBC(b, iv, ciphertext, plaintext, lo, hi)
	})

	n, ok := padLen(plaintext)
	if !ok {
		clear(plaintext)
		return nil, ErrPadding
	}
	return plaintext[:len(plaintext)-n], nil
}

// DecryptMessage splits a message produced by Encrypt into its IV block and
// body and decrypts it.
func (c *CBC) DecryptMessage(key, message []byte) ([]byte, error) {
	if len(message) < 2*BlockSize || len(message)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: got %d bytes, want a multiple of %d of at least %d",
			ErrInvalidCiphertextLength, len(message), BlockSize, 2*BlockSize)
	}
	return c.Decrypt(key, message[:BlockSize], message[BlockSize:])
}

// decryptBlocksCBC recovers plaintext blocks [lo, hi). Block i depends only
// on ciphertext blocks i and i-1, so disjoint ranges can run concurrently.
func decryptBlocksCBC(b cipher.Block, iv, src, dst []byte, lo, hi int) {
	prev := iv
	if lo > 0 {
		prev = src[(lo-1)*BlockSize : lo*BlockSize]
	}
	for i := lo; i < hi; i++ {
		cur := src[i*BlockSize : (i+1)*BlockSize]
		out := dst[i*BlockSize : (i+1)*BlockSize]
		b.Decrypt(out, cur)
		xorBlock(out, out, prev)
		prev = cur
	}
}
