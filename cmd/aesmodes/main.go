// Command aesmodes encrypts and decrypts hex-encoded messages with AES-128
// in CBC or CTR mode, checks known-answer vectors and demonstrates a CBC
// padding-oracle attack.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	aesmodes "github.com/jedisct1/go-aes-modes"
	"github.com/jedisct1/go-aes-modes/internal/keys"
	"github.com/jedisct1/go-aes-modes/internal/vectors"
	"github.com/jedisct1/go-aes-modes/oracle"
)

const usage = `usage: aesmodes [-v] [-log-format text|json] <command> [flags]

commands:
  encrypt   encrypt text, print the hex message
  decrypt   decrypt a hex message, print the text
  vectors   check known-answer vectors
  attack    recover a CBC message through a local padding oracle
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		log.WithError(err).Error("aesmodes failed")
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("aesmodes", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	verbose := fs.Bool("v", false, "enable debug logging")
	logFormat := fs.String("log-format", "text", "log format: text or json")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := setupLogging(*verbose, *logFormat); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		return errUsage
	}
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "encrypt":
		return runEncrypt(rest, stdin, stdout)
	case "decrypt":
		return runDecrypt(rest, stdin, stdout)
	case "vectors":
		return runVectors(rest)
	case "attack":
		return runAttack(rest, stdin, stdout)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func setupLogging(verbose bool, format string) error {
	switch format {
	case "text":
		log.SetFormatter(&log.TextFormatter{})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("%w: unknown log format %q", errUsage, format)
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	return nil
}

type keyFlags struct {
	key        string
	passphrase string
	salt       string
	iterations int
}

func (k *keyFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&k.key, "key", "", "hex-encoded 16-byte key")
	fs.StringVar(&k.passphrase, "passphrase", "", "derive the key from a passphrase instead")
	fs.StringVar(&k.salt, "salt", "", "hex-encoded PBKDF2 salt")
	fs.IntVar(&k.iterations, "iterations", keys.DefaultIterations, "PBKDF2 iterations")
}

func (k *keyFlags) resolve() ([]byte, error) {
	return keys.Resolve(k.key, k.passphrase, k.salt, k.iterations)
}

// input returns the -in value, or all of stdin when it is empty.
func input(in string, stdin io.Reader) ([]byte, error) {
	if in != "" {
		return []byte(in), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return data, nil
}

func inputHex(in string, stdin io.Reader) ([]byte, error) {
	data, err := input(in, stdin)
	if err != nil {
		return nil, err
	}
	decoded, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("hex.DecodeString() failed: %w", err)
	}
	return decoded, nil
}

func runEncrypt(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("encrypt", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var kf keyFlags
	kf.register(fs)
	mode := fs.String("mode", "cbc", "cbc or ctr")
	ivHex := fs.String("iv", "", "hex-encoded IV (random when empty)")
	in := fs.String("in", "", "plaintext (stdin when empty)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	key, err := kf.resolve()
	if err != nil {
		return err
	}
	plaintext, err := input(*in, stdin)
	if err != nil {
		return err
	}

	var iv []byte
	if *ivHex == "" {
		iv, err = aesmodes.NewIV()
	} else {
		iv, err = hex.DecodeString(*ivHex)
	}
	if err != nil {
		return fmt.Errorf("iv: %w", err)
	}

	var message []byte
	switch vectors.Mode(*mode) {
	case vectors.ModeCBC:
		message, err = aesmodes.NewCBC().Encrypt(key, iv, plaintext)
	case vectors.ModeCTR:
		message, err = aesmodes.NewCTR().Encrypt(key, iv, plaintext)
	default:
		return fmt.Errorf("%w %q", vectors.ErrUnknownMode, *mode)
	}
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"mode":      *mode,
		"plaintext": len(plaintext),
		"message":   len(message),
	}).Debug("encrypted")
	_, err = fmt.Fprintln(stdout, hex.EncodeToString(message))
	return err
}

func runDecrypt(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("decrypt", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var kf keyFlags
	kf.register(fs)
	mode := fs.String("mode", "cbc", "cbc or ctr")
	in := fs.String("in", "", "hex message (stdin when empty)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	key, err := kf.resolve()
	if err != nil {
		return err
	}
	message, err := inputHex(*in, stdin)
	if err != nil {
		return err
	}

	var plaintext []byte
	switch vectors.Mode(*mode) {
	case vectors.ModeCBC:
		plaintext, err = aesmodes.NewCBC().DecryptMessage(key, message)
	case vectors.ModeCTR:
		plaintext, err = aesmodes.NewCTR().Decrypt(key, message)
	default:
		return fmt.Errorf("%w %q", vectors.ErrUnknownMode, *mode)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, string(plaintext))
	return err
}

func runVectors(args []string) error {
	fs := flag.NewFlagSet("vectors", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	file := fs.String("file", "", "YAML vectors file (built-in course vectors when empty)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	vs := vectors.Default()
	if *file != "" {
		var err error
		if vs, err = vectors.LoadFile(*file); err != nil {
			return err
		}
	}

	if failed := vectors.RunAll(vs); failed > 0 {
		return fmt.Errorf("%d of %d vectors failed", failed, len(vs))
	}
	log.WithField("count", len(vs)).Info("all vectors passed")
	return nil
}

func runAttack(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("attack", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var kf keyFlags
	kf.register(fs)
	in := fs.String("in", "", "hex CBC message (stdin when empty)")
	workers := fs.Int("workers", 4, "blocks attacked concurrently")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	key, err := kf.resolve()
	if err != nil {
		return err
	}
	message, err := inputHex(*in, stdin)
	if err != nil {
		return err
	}

	local, err := oracle.NewLocal(key, nil)
	if err != nil {
		return err
	}
	result, err := oracle.Attack(context.Background(), local, message, oracle.WithWorkers(*workers))
	if err != nil {
		return err
	}

	log.WithField("queries", result.Queries).Info("message recovered")
	_, err = fmt.Fprintln(stdout, string(result.Plaintext))
	return err
}
