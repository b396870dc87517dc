// Package vectors loads and checks known-answer CBC and CTR vectors
// described in YAML.
package vectors

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	aesmodes "github.com/jedisct1/go-aes-modes"
	"github.com/jedisct1/go-aes-modes/internal/keys"
)

// Mode names a block cipher mode of operation.
type Mode string

const (
	ModeCBC Mode = "cbc"
	ModeCTR Mode = "ctr"
)

var (
	// ErrUnknownMode is returned for a mode other than cbc or ctr.
	ErrUnknownMode = errors.New("vectors: unknown mode")

	// ErrMismatch is returned when a vector decrypts to an unexpected plaintext.
	ErrMismatch = errors.New("vectors: plaintext mismatch")
)

//go:embed course.yaml
var course []byte

// Vector is one known-answer test. Plaintext may be empty when the answer
// is not known; Check then only requires decryption to succeed.
type Vector struct {
	Name       string `json:"name" yaml:"name"`
	Mode       Mode   `json:"mode" yaml:"mode"`
	Key        string `json:"key" yaml:"key"`
	Ciphertext string `json:"ciphertext" yaml:"ciphertext"`
	Plaintext  string `json:"plaintext,omitempty" yaml:"plaintext,omitempty"`
}

type document struct {
	Vectors []Vector `yaml:"vectors"`
}

// Load parses a YAML document with a top-level "vectors" list.
func Load(r io.Reader) ([]Vector, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("yaml decode failed: %w", err)
	}
	for i, v := range doc.Vectors {
		if v.Mode != ModeCBC && v.Mode != ModeCTR {
			return nil, fmt.Errorf("vector %d (%s): %w %q", i, v.Name, ErrUnknownMode, v.Mode)
		}
	}
	return doc.Vectors, nil
}

// LoadFile reads vectors from a YAML file.
func LoadFile(path string) ([]Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Default returns the built-in course vectors.
func Default() []Vector {
	vs, err := Load(bytes.NewReader(course))
	if err != nil {
		panic(err)
	}
	return vs
}

// Decrypt decodes the vector and decrypts it with its mode.
func (v Vector) Decrypt() ([]byte, error) {
	key, err := keys.Parse(v.Key)
	if err != nil {
		return nil, err
	}
	ciphertext, err := hex.DecodeString(v.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("hex.DecodeString() failed: %w", err)
	}

	switch v.Mode {
	case ModeCBC:
		return aesmodes.NewCBC().DecryptMessage(key, ciphertext)
	case ModeCTR:
		return aesmodes.NewCTR().Decrypt(key, ciphertext)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownMode, v.Mode)
	}
}

// Check decrypts the vector and compares against the expected plaintext.
func (v Vector) Check() ([]byte, error) {
	plaintext, err := v.Decrypt()
	if err != nil {
		return nil, err
	}
	if v.Plaintext != "" && string(plaintext) != v.Plaintext {
		return plaintext, fmt.Errorf("%w: got %q, want %q", ErrMismatch, plaintext, v.Plaintext)
	}
	return plaintext, nil
}

// RunAll checks every vector, logging each outcome, and returns the number
// of failures.
func RunAll(vs []Vector) int {
	failed := 0
	for _, v := range vs {
		entry := log.WithFields(log.Fields{
			"name": v.Name,
			"mode": v.Mode,
		})
		plaintext, err := v.Check()
		if err != nil {
			failed++
			entry.WithError(err).Error("vector failed")
			continue
		}
		entry.WithField("plaintext", string(plaintext)).Info("vector ok")
	}
	return failed
}
