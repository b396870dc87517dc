package aesmodes

import (
	"encoding/binary"
	"math/bits"
)

// Counter is a 128-bit big-endian unsigned integer used as CTR keystream
// input. It is a value type: Next and Add return new counters.
type Counter [BlockSize]byte

// CounterFrom copies iv into a Counter.
func CounterFrom(iv []byte) (Counter, error) {
	var c Counter
	if err := checkIV(iv); err != nil {
		return c, err
	}
	copy(c[:], iv)
	return c, nil
}

// Next returns c+1 modulo 2^128. The all-0xff counter wraps to zero.
func (c Counter) Next() Counter {
	for i := BlockSize - 1; i >= 0; i-- {
		c[i]++
		if c[i] != 0 {
			break
		}
	}
	return c
}

// Add returns c+n modulo 2^128.
func (c Counter) Add(n uint64) Counter {
	hi := binary.BigEndian.Uint64(c[:8])
	lo := binary.BigEndian.Uint64(c[8:])

	lo, carry := bits.Add64(lo, n, 0)
	hi += carry

	var out Counter
	binary.BigEndian.PutUint64(out[:8], hi)
	binary.BigEndian.PutUint64(out[8:], lo)
	return out
}
