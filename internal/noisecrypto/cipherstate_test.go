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
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noisysockets/noise-xx/internal/noiseerr"
)

func TestCipherStateNoKeyIsPassthrough(t *testing.T) {
	var cs CipherState
	require.False(t, cs.HasKey())

	ciphertext, err := cs.EncryptWithAD(nil, []byte("plaintext"))
	require.NoError(t, err)
	require.Equal(t, []byte("plaintext"), ciphertext)

	plaintext, err := cs.DecryptWithAD(nil, []byte("unchanged"))
	require.NoError(t, err)
	require.Equal(t, []byte("unchanged"), plaintext)
}

func TestCipherStateRoundTrip(t *testing.T) {
	var key [KeyLen]byte
	copy(key[:], "a fixed 32 byte cipher key!!!!!")

	var enc, dec CipherState
	enc.InitializeKey(key)
	dec.InitializeKey(key)

	ad := []byte("associated-data")
	for i := 0; i < 4; i++ {
		ciphertext, err := enc.EncryptWithAD(ad, []byte("message"))
		require.NoError(t, err)

		plaintext, err := dec.DecryptWithAD(ad, ciphertext)
		require.NoError(t, err)
		require.Equal(t, []byte("message"), plaintext)
	}

	require.Equal(t, uint64(4), enc.Nonce())
	require.Equal(t, uint64(4), dec.Nonce())
}

func TestCipherStateAuthFailureOnTamperedCiphertext(t *testing.T) {
	var key [KeyLen]byte
	copy(key[:], "a fixed 32 byte cipher key!!!!!")

	var enc, dec CipherState
	enc.InitializeKey(key)
	dec.InitializeKey(key)

	ciphertext, err := enc.EncryptWithAD(nil, []byte("message"))
	require.NoError(t, err)
	ciphertext[0] ^= 0xFF

	_, err = dec.DecryptWithAD(nil, ciphertext)
	require.ErrorIs(t, err, noiseerr.ErrAeadAuthFailure)
}

func TestCipherStateAuthFailureOnWrongAD(t *testing.T) {
	var key [KeyLen]byte
	copy(key[:], "a fixed 32 byte cipher key!!!!!")

	var enc, dec CipherState
	enc.InitializeKey(key)
	dec.InitializeKey(key)

	ciphertext, err := enc.EncryptWithAD([]byte("ad-a"), []byte("message"))
	require.NoError(t, err)

	_, err = dec.DecryptWithAD([]byte("ad-b"), ciphertext)
	require.ErrorIs(t, err, noiseerr.ErrAeadAuthFailure)
}

func TestCipherStateNonceExhaustion(t *testing.T) {
	var key [KeyLen]byte
	copy(key[:], "a fixed 32 byte cipher key!!!!!")

	var cs CipherState
	cs.InitializeKey(key)
	cs.n = math.MaxUint64

	_, err := cs.EncryptWithAD(nil, []byte("message"))
	require.ErrorIs(t, err, noiseerr.ErrNonceExhausted)
}

func TestCipherStateZero(t *testing.T) {
	var key [KeyLen]byte
	copy(key[:], "a fixed 32 byte cipher key!!!!!")

	var cs CipherState
	cs.InitializeKey(key)
	cs.Zero()

	require.False(t, cs.HasKey())
	require.Equal(t, uint64(0), cs.Nonce())
}
