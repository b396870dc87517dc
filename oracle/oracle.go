// Package oracle recovers CBC plaintext from a padding oracle: anything that
// reveals whether a submitted message decrypts to well-formed padding.
//
// Every block after the first is recovered independently by forging the
// block in front of it, one byte at a time from the end. Only the Oracle
// interface is needed, so the same attack runs against an in-process
// decrypter or a remote service wrapped by the caller.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	aesmodes "github.com/jedisct1/go-aes-modes"
)

const blockSize = aesmodes.BlockSize

// ErrNoValidGuess is returned when no byte value produced valid padding,
// which means the oracle is not a CBC padding oracle for this message.
var ErrNoValidGuess = errors.New("oracle: no guess produced valid padding")

// Oracle reports whether a CBC message ([IV][C1]...[Cn]) has valid padding.
// Implementations must be safe for concurrent use when the attack runs
// with more than one worker.
type Oracle interface {
	ValidPadding(ctx context.Context, message []byte) (bool, error)
}

// Local is an in-process Oracle that decrypts with a CBC engine and leaks
// only whether the padding was valid.
type Local struct {
	cbc     *aesmodes.CBC
	key     []byte
	queries atomic.Int64
}

var _ Oracle = (*Local)(nil)

// NewLocal creates a Local oracle holding a copy of key. A nil cbc uses
// aesmodes.NewCBC().
func NewLocal(key []byte, cbc *aesmodes.CBC) (*Local, error) {
	if len(key) != aesmodes.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", aesmodes.ErrInvalidKeyLength, len(key), aesmodes.KeySize)
	}
	if cbc == nil {
		cbc = aesmodes.NewCBC()
	}
	return &Local{
		cbc: cbc,
		key: append([]byte(nil), key...),
	}, nil
}

// ValidPadding decrypts message and reports whether its padding is valid.
// Errors other than a padding error are returned as is.
func (l *Local) ValidPadding(ctx context.Context, message []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.queries.Add(1)

	_, err := l.cbc.DecryptMessage(l.key, message)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, aesmodes.ErrPadding):
		return false, nil
	default:
		return false, err
	}
}

// Queries returns the number of ValidPadding calls made so far.
func (l *Local) Queries() int64 {
	return l.queries.Load()
}

// Result is the outcome of an Attack.
type Result struct {
	// Plaintext is the recovered message with its padding removed.
	Plaintext []byte

	// Padded is the recovered message including padding.
	Padded []byte

	// Queries is the number of oracle calls the attack made.
	Queries int64
}

// frequencyOrder lists likely ASCII plaintext bytes first: English letters
// by frequency, then punctuation, digits and whitespace.
const frequencyOrder = " etaoinshrdlucmfwypvbgkqjxzETAOINSHRDLUCMFWYPVBGKQJXZ.,!/:1234567890\t\n"

type attackConfig struct {
	order   []byte
	workers int
}

// AttackOption configures Attack.
type AttackOption func(*attackConfig)

// WithGuessOrder sets the plaintext byte values to try first. All other
// values are still tried afterwards.
func WithGuessOrder(order []byte) AttackOption {
	return func(c *attackConfig) {
		c.order = guessOrder(order)
	}
}

// WithWorkers sets how many blocks are attacked concurrently.
func WithWorkers(n int) AttackOption {
	return func(c *attackConfig) {
		c.workers = n
	}
}

// guessOrder returns first followed by every remaining byte value, each
// value appearing once.
func guessOrder(first []byte) []byte {
	var seen [256]bool
	order := make([]byte, 0, 256)
	for _, b := range first {
		if !seen[b] {
			seen[b] = true
			order = append(order, b)
		}
	}
	for i := 0; i < 256; i++ {
		if !seen[i] {
			order = append(order, byte(i))
		}
	}
	return order
}

type attacker struct {
	oracle  Oracle
	order   []byte
	queries atomic.Int64
}

// Attack recovers the plaintext of a CBC message using only o.
func Attack(ctx context.Context, o Oracle, message []byte, opts ...AttackOption) (*Result, error) {
	if len(message) < 2*blockSize || len(message)%blockSize != 0 {
		return nil, fmt.Errorf("%w: got %d bytes, want a multiple of %d of at least %d",
			aesmodes.ErrInvalidCiphertextLength, len(message), blockSize, 2*blockSize)
	}

	cfg := attackConfig{
		order:   guessOrder([]byte(frequencyOrder)),
		workers: 1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	a := &attacker{oracle: o, order: cfg.order}
	n := len(message)/blockSize - 1
	padded := make([]byte, n*blockSize)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	sem := make(chan struct{}, max(cfg.workers, 1))
	for i := 0; i < n; i++ {
		prev := message[i*blockSize : (i+1)*blockSize]
		cur := message[(i+1)*blockSize : (i+2)*blockSize]
		dst := padded[i*blockSize : (i+1)*blockSize]

		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer func() {
				<-sem
				wg.Done()
			}()
			if err := a.block(ctx, prev, cur, dst); err != nil {
				errOnce.Do(func() {
					firstErr = fmt.Errorf("block %d: %w", i+1, err)
					cancel()
				})
				return
			}
			log.WithFields(log.Fields{
				"block":   i + 1,
				"of":      n,
				"queries": a.queries.Load(),
			}).Debug("block recovered")
		}(i)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	plaintext, err := aesmodes.Unpad(padded)
	if err != nil {
		return nil, fmt.Errorf("recovered plaintext: %w", err)
	}
	return &Result{
		Plaintext: plaintext,
		Padded:    padded,
		Queries:   a.queries.Load(),
	}, nil
}

// block recovers the plaintext of cur into dst. The oracle decrypts
// forged||cur to D(cur) XOR forged, so choosing forged so that the tail is
// valid padding reveals D(cur) one byte at a time.
func (a *attacker) block(ctx context.Context, prev, cur, dst []byte) error {
	var inter [blockSize]byte

	forged := make([]byte, 2*blockSize)
	copy(forged, prev)
	copy(forged[blockSize:], cur)

	for pos := blockSize - 1; pos >= 0; pos-- {
		pad := byte(blockSize - pos)
		for j := pos + 1; j < blockSize; j++ {
			forged[j] = inter[j] ^ pad
		}

		found := false
		for _, guess := range a.order {
			forged[pos] = prev[pos] ^ guess ^ pad
			ok, err := a.query(ctx, forged)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if pos == blockSize-1 {
				// A longer padding such as 02 02 also passes; changing the
				// byte before the last must not affect a one-byte pad.
				forged[pos-1] ^= 0xff
				ok, err = a.query(ctx, forged)
				forged[pos-1] ^= 0xff
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
			}
			inter[pos] = forged[pos] ^ pad
			found = true
			break
		}
		if !found {
			return fmt.Errorf("%w at byte %d", ErrNoValidGuess, pos)
		}
	}

	for i := range dst {
		dst[i] = inter[i] ^ prev[i]
	}
	return nil
}

func (a *attacker) query(ctx context.Context, message []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a.queries.Add(1)
	return a.oracle.ValidPadding(ctx, message)
}
