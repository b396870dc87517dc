/*
Package aesmodes implements the CBC (Cipher Block Chaining) and CTR (Counter)
modes of operation on top of a raw, unpadded, single-block AES-128 primitive.

Both engines are pure functions of their inputs: the key, IV and plaintext
passed by the caller are never modified, and every call allocates a fresh
output buffer sized from the known output length.

Wire Layout:

  - CBC: [E(IV)][C1]...[Cn]. The IV is transmitted in encrypted form and the
    chain starts from that encrypted block. The plaintext is always padded
    with 1 to 16 bytes whose value equals the pad length, so the output is
    16 * (len(plaintext)/16 + 2) bytes.
  - CTR: [IV][plaintext XOR keystream]. The IV is the initial big-endian
    128-bit counter and is transmitted as is. The output is exactly
    len(plaintext) + 16 bytes; the counter wraps modulo 2^128.

Basic Usage:

	key := make([]byte, aesmodes.KeySize)
	// Fill key with random bytes...

	iv, err := aesmodes.NewIV()
	if err != nil {
		panic(err)
	}

	cbc := aesmodes.NewCBC()
	message, err := cbc.Encrypt(key, iv, []byte("secret message"))
	if err != nil {
		panic(err)
	}

	plaintext, err := cbc.DecryptMessage(key, message)
	if errors.Is(err, aesmodes.ErrPadding) {
		// tampered or truncated ciphertext
	}

	ctr := aesmodes.NewCTR()
	sealed, _ := ctr.Encrypt(key, iv, []byte("secret message"))
	opened, _ := ctr.Decrypt(key, sealed)

Neither mode authenticates the ciphertext, and the padding check is not
constant time. CBC decryption errors must not be exposed to untrusted parties
as a distinguishable response; see the oracle package for why.
*/
package aesmodes
