// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 *
 * Portions of this file are based on code originally from wireguard-go,
 *
 * Copyright (C) 2017-2023 WireGuard LLC. All Rights Reserved.
 */

// Package noisecrypto implements the fixed primitive suite behind
// Noise_XX_25519_ChaChaPoly_SHA256: X25519, ChaCha20-Poly1305, SHA-256 and
// HKDF-SHA-256. It also implements the CipherState and SymmetricState
// machinery built on top of those primitives.
package noisecrypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/noisysockets/noise-xx/internal/noiseerr"
)

const (
	// DHLen is the length in bytes of an X25519 public or private key.
	DHLen = 32
	// HashLen is the length in bytes of a SHA-256 digest.
	HashLen = 32
	// KeyLen is the length in bytes of a ChaCha20-Poly1305 key.
	KeyLen = chacha20poly1305.KeySize
	// TagLen is the length in bytes of the Poly1305 authentication tag.
	TagLen = chacha20poly1305.Overhead
)

// PrivateKey is an X25519 scalar.
type PrivateKey [DHLen]byte

// PublicKey is an X25519 group element.
type PublicKey [DHLen]byte

var zeroDH [DHLen]byte

func isZero(b []byte) bool {
	return subtle.ConstantTimeCompare(b, zeroDH[:len(b)]) == 1
}

// GenerateKeypair produces a fresh X25519 key pair.
func GenerateKeypair() (PrivateKey, PublicKey, error) {
	var priv PrivateKey
	if _, err := rand.Read(priv[:]); err != nil {
		return PrivateKey{}, PublicKey{}, err
	}
	pub, err := priv.Public()
	if err != nil {
		return PrivateKey{}, PublicKey{}, err
	}
	return priv, pub, nil
}

// Public derives the public key matching a private key.
func (priv PrivateKey) Public() (PublicKey, error) {
	out, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return PublicKey{}, err
	}
	var pub PublicKey
	copy(pub[:], out)
	return pub, nil
}

// DH computes the X25519 shared secret between priv and pub. A zero result
// (indicating a low-order or otherwise invalid remote public key) is
// rejected, per libsodium-style validation.
func DH(priv PrivateKey, pub PublicKey) ([DHLen]byte, error) {
	out, err := curve25519.X25519(priv[:], pub[:])
	if err != nil {
		return [DHLen]byte{}, noiseerr.ErrInvalidPublicKey
	}

	var ss [DHLen]byte
	copy(ss[:], out)
	if isZero(ss[:]) {
		return [DHLen]byte{}, noiseerr.ErrInvalidPublicKey
	}
	return ss, nil
}

// hkdfSplit implements the spec's hkdf(ck, ikm, n) operation: an
// HKDF-Extract(salt=ck, ikm=ikm) followed by an HKDF-Expand with empty info,
// split into n 32-byte outputs.
func hkdfSplit(ck [HashLen]byte, ikm []byte, n int) ([][HashLen]byte, error) {
	reader := hkdf.New(sha256.New, ikm, ck[:], nil)
	out := make([]byte, HashLen*n)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}

	chunks := make([][HashLen]byte, n)
	for i := 0; i < n; i++ {
		copy(chunks[i][:], out[i*HashLen:(i+1)*HashLen])
	}
	return chunks, nil
}

func setZero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Zero overwrites the private key material in place.
func (priv *PrivateKey) Zero() {
	setZero(priv[:])
}
