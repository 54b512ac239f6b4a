// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package noisecrypto

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/noisysockets/noise-xx/internal/noiseerr"
)

// CipherState is a keyed AEAD together with its 64-bit nonce counter. At
// most one AEAD operation is ever performed per (key, nonce) pair; the
// nonce is monotonically increasing and exhaustion is fatal.
type CipherState struct {
	key    [KeyLen]byte
	hasKey bool
	n      uint64
}

// InitializeKey sets the cipher key and resets the nonce counter to zero.
func (cs *CipherState) InitializeKey(key [KeyLen]byte) {
	cs.key = key
	cs.hasKey = true
	cs.n = 0
}

// HasKey reports whether a key has been set.
func (cs *CipherState) HasKey() bool {
	return cs.hasKey
}

func nonceBytes(n uint64) [chacha20poly1305.NonceSize]byte {
	var nonce [chacha20poly1305.NonceSize]byte
	binary.LittleEndian.PutUint64(nonce[4:], n)
	return nonce
}

// EncryptWithAD encrypts plaintext under the current key and nonce, using ad
// as associated data, and advances the nonce counter. If no key has been
// set, it is a no-op that returns the plaintext unchanged.
func (cs *CipherState) EncryptWithAD(ad, plaintext []byte) ([]byte, error) {
	if !cs.hasKey {
		out := make([]byte, len(plaintext))
		copy(out, plaintext)
		return out, nil
	}
	if cs.n == math.MaxUint64 {
		return nil, noiseerr.ErrNonceExhausted
	}

	aead, err := chacha20poly1305.New(cs.key[:])
	if err != nil {
		return nil, err
	}
	nonce := nonceBytes(cs.n)
	ciphertext := aead.Seal(nil, nonce[:], plaintext, ad)
	cs.n++
	return ciphertext, nil
}

// DecryptWithAD decrypts ciphertext under the current key and nonce, using
// ad as associated data, and advances the nonce counter. On an
// authentication tag mismatch it returns ErrAeadAuthFailure and leaves the
// CipherState as it was (the nonce is not advanced); it does not disable the
// CipherState for later calls. If no key has been set, it is a no-op that
// returns the ciphertext unchanged.
func (cs *CipherState) DecryptWithAD(ad, ciphertext []byte) ([]byte, error) {
	if !cs.hasKey {
		out := make([]byte, len(ciphertext))
		copy(out, ciphertext)
		return out, nil
	}
	if cs.n == math.MaxUint64 {
		return nil, noiseerr.ErrNonceExhausted
	}

	aead, err := chacha20poly1305.New(cs.key[:])
	if err != nil {
		return nil, err
	}
	nonce := nonceBytes(cs.n)
	plaintext, err := aead.Open(nil, nonce[:], ciphertext, ad)
	if err != nil {
		return nil, noiseerr.ErrAeadAuthFailure
	}
	cs.n++
	return plaintext, nil
}

// Nonce returns the current nonce counter value, for tests asserting
// monotonicity.
func (cs *CipherState) Nonce() uint64 {
	return cs.n
}

// Rekey replaces the current key with the first 32 bytes of
// ENCRYPT(k, maxnonce, zerolen, zeros), where zeros is 32 zero bytes, per the
// Noise framework's optional rekey operation. It is defined for
// completeness; the XX pattern never calls it.
func (cs *CipherState) Rekey() error {
	if !cs.hasKey {
		return nil
	}
	aead, err := chacha20poly1305.New(cs.key[:])
	if err != nil {
		return err
	}
	nonce := nonceBytes(math.MaxUint64)
	var zero [KeyLen]byte
	out := aead.Seal(nil, nonce[:], zero[:], nil)
	copy(cs.key[:], out[:KeyLen])
	return nil
}

// Zero overwrites the cipher key in place and clears the key-present flag.
func (cs *CipherState) Zero() {
	setZero(cs.key[:])
	cs.hasKey = false
	cs.n = 0
}
