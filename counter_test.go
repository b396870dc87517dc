package aesmodes

import (
	"bytes"
	"errors"
	"testing"
)

func counterFromHex(s string) Counter {
	var c Counter
	copy(c[:], mustDecodeHex(s))
	return c
}

func TestCounterNext(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"zero", "00000000000000000000000000000000", "00000000000000000000000000000001"},
		{"carry one byte", "000000000000000000000000000000ff", "00000000000000000000000000000100"},
		{"carry across words", "0000000000000000ffffffffffffffff", "00000000000000010000000000000000"},
		{"top byte", "feffffffffffffffffffffffffffffff", "ff000000000000000000000000000000"},
		{"wraparound", "ffffffffffffffffffffffffffffffff", "00000000000000000000000000000000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := counterFromHex(tc.in)
			got := in.Next()
			want := counterFromHex(tc.expected)
			if got != want {
				t.Errorf("Next() mismatch\ngot:  %x\nwant: %x", got[:], want[:])
			}
			if in != counterFromHex(tc.in) {
				t.Error("Next() modified the receiver")
			}
		})
	}
}

func TestCounterAdd(t *testing.T) {
	start := counterFromHex("0123456789abcdeffffffffffffffff0")

	c := start
	for i := uint64(0); i < 40; i++ {
		if got := start.Add(i); got != c {
			t.Fatalf("Add(%d) mismatch\ngot:  %x\nwant: %x", i, got[:], c[:])
		}
		c = c.Next()
	}

	top := counterFromHex("ffffffffffffffffffffffffffffffff")
	if got := top.Add(3); got != counterFromHex("00000000000000000000000000000002") {
		t.Errorf("Add() did not wrap: %x", got[:])
	}
}

func TestCounterFrom(t *testing.T) {
	iv := mustDecodeHex("000102030405060708090a0b0c0d0e0f")
	c, err := CounterFrom(iv)
	if err != nil {
		t.Fatalf("CounterFrom() failed: %v", err)
	}
	if !bytes.Equal(c[:], iv) {
		t.Errorf("counter mismatch: %x", c[:])
	}

	if next := c.Next(); next[15] != 0x10 || iv[15] != 0x0f {
		t.Errorf("unexpected increment: counter %x, iv %x", next[:], iv)
	}

	if _, err := CounterFrom(iv[:8]); !errors.Is(err, ErrInvalidIVLength) {
		t.Errorf("expected ErrInvalidIVLength, got %v", err)
	}
}
