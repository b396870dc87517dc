package aesmodes

import (
	"crypto/rand"
	"errors"
	"fmt"
	"runtime"
)

const (
	// KeySize is the key size for AES-128 in bytes.
	KeySize = 16

	// DefaultParallelThreshold is the input size in bytes below which the
	// parallelizable paths run inline on the calling goroutine.
	DefaultParallelThreshold = 64 * 1024
)

var (
	// ErrInvalidKeyLength is returned when the key is not KeySize bytes long.
	ErrInvalidKeyLength = errors.New("aesmodes: invalid key length")

	// ErrInvalidIVLength is returned when the IV is not exactly one block.
	ErrInvalidIVLength = errors.New("aesmodes: invalid IV length")

	// ErrInvalidBlockLength is returned by EncryptBlock and DecryptBlock when
	// the input is not exactly one block.
	ErrInvalidBlockLength = errors.New("aesmodes: invalid block length")

	// ErrInvalidCiphertextLength is returned when a ciphertext cannot have
	// been produced by the corresponding Encrypt.
	ErrInvalidCiphertextLength = errors.New("aesmodes: invalid ciphertext length")

	// ErrPadding is returned when the decrypted CBC plaintext does not end
	// with well-formed padding.
	ErrPadding = errors.New("aesmodes: invalid padding")
)

type options struct {
	newBlock  BlockFactory
	workers   int
	threshold int
}

// Option configures a CBC or CTR engine.
type Option func(*options)

// WithBlockFactory replaces the single-block primitive. The blocks it
// returns must be safe for concurrent use when more than one worker is
// enabled.
func WithBlockFactory(f BlockFactory) Option {
	return func(o *options) {
		o.newBlock = f
	}
}

// WithWorkers bounds the number of goroutines used by the parallel paths.
// A value of 1 or less processes every block on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithParallelThreshold sets the input size in bytes from which work is
// spread across workers.
func WithParallelThreshold(n int) Option {
	return func(o *options) {
		o.threshold = n
	}
}

func newOptions(opts []Option) options {
	o := options{
		newBlock:  NewAES128,
		workers:   runtime.GOMAXPROCS(0),
		threshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.newBlock == nil {
		o.newBlock = NewAES128
	}
	return o
}

// NewIV returns a random block suitable as a CBC IV or an initial CTR counter.
func NewIV() ([]byte, error) {
	iv := make([]byte, BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("rand.Read() failed: %w", err)
	}
	return iv, nil
}

func checkKey(key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeyLength, len(key), KeySize)
	}
	return nil
}

func checkIV(iv []byte) error {
	if len(iv) != BlockSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidIVLength, len(iv), BlockSize)
	}
	return nil
}
