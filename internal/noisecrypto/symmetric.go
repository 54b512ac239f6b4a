// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package noisecrypto

import "crypto/sha256"

// SymmetricState holds the chaining key, handshake hash, and the single
// CipherState used for EncryptAndHash/DecryptAndHash during the handshake
// phase of Noise.
type SymmetricState struct {
	ck     [HashLen]byte
	h      [HashLen]byte
	cipher CipherState
}

// NewSymmetricState initializes ck = h = protocolName (padded or hashed to
// 32 bytes per the Noise framework), with no cipher key set.
func NewSymmetricState(protocolName string) *SymmetricState {
	s := &SymmetricState{}
	if len(protocolName) <= HashLen {
		var h [HashLen]byte
		copy(h[:], protocolName)
		s.h = h
	} else {
		s.h = sha256.Sum256([]byte(protocolName))
	}
	s.ck = s.h
	s.cipher = CipherState{}
	return s
}

// MixHash folds data into the running transcript hash: h = SHA256(h || data).
func (s *SymmetricState) MixHash(data []byte) {
	hash := sha256.New()
	hash.Write(s.h[:])
	hash.Write(data)
	var out [HashLen]byte
	hash.Sum(out[:0])
	s.h = out
}

// MixKey derives a new chaining key and cipher key from ikm and the current
// chaining key, and (re)initializes the CipherState with the new key,
// resetting its nonce to zero.
func (s *SymmetricState) MixKey(ikm []byte) error {
	chunks, err := hkdfSplit(s.ck, ikm, 2)
	if err != nil {
		return err
	}
	s.ck = chunks[0]
	s.cipher.InitializeKey(chunks[1])
	return nil
}

// MixKeyAndHash is the 3-output variant used by pre-shared-key patterns.
// The XX pattern never calls it; it is implemented for completeness per
// the Noise framework spec.
func (s *SymmetricState) MixKeyAndHash(ikm []byte) error {
	chunks, err := hkdfSplit(s.ck, ikm, 3)
	if err != nil {
		return err
	}
	s.ck = chunks[0]
	s.MixHash(chunks[1][:])
	s.cipher.InitializeKey(chunks[2])
	return nil
}

// EncryptAndHash encrypts plaintext under h as associated data, then mixes
// the resulting ciphertext into h.
func (s *SymmetricState) EncryptAndHash(plaintext []byte) ([]byte, error) {
	ciphertext, err := s.cipher.EncryptWithAD(s.h[:], plaintext)
	if err != nil {
		return nil, err
	}
	s.MixHash(ciphertext)
	return ciphertext, nil
}

// DecryptAndHash decrypts ciphertext under h as associated data, then mixes
// the (still-encrypted) ciphertext bytes into h.
func (s *SymmetricState) DecryptAndHash(ciphertext []byte) ([]byte, error) {
	plaintext, err := s.cipher.DecryptWithAD(s.h[:], ciphertext)
	if err != nil {
		return nil, err
	}
	s.MixHash(ciphertext)
	return plaintext, nil
}

// Split derives the pair of transport CipherStates from the final chaining
// key. The caller is responsible for assigning cs1/cs2 to the correct
// direction based on its role.
func (s *SymmetricState) Split() (cs1, cs2 *CipherState, err error) {
	chunks, err := hkdfSplit(s.ck, nil, 2)
	if err != nil {
		return nil, nil, err
	}
	cs1 = &CipherState{}
	cs1.InitializeKey(chunks[0])
	cs2 = &CipherState{}
	cs2.InitializeKey(chunks[1])
	return cs1, cs2, nil
}

// HandshakeHash returns the current transcript hash, usable as a channel
// binding value once the handshake is complete.
func (s *SymmetricState) HandshakeHash() [HashLen]byte {
	return s.h
}

// Zero overwrites the chaining key, hash, and cipher key in place.
func (s *SymmetricState) Zero() {
	setZero(s.ck[:])
	setZero(s.h[:])
	s.cipher.Zero()
}
