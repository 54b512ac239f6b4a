// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package noisexx

import (
	"github.com/noisysockets/noise-xx/internal/noisecrypto"
)

// Session is the post-handshake pair of CipherStates for application data.
// encrypt uses the send-direction cipher, decrypt the receive-direction
// cipher; each call advances that direction's nonce counter independently.
type Session struct {
	send *noisecrypto.CipherState
	recv *noisecrypto.CipherState

	transport Transport

	remotePeerID    []byte
	remoteStaticKey noisecrypto.PublicKey
	handshakeHash   [noisecrypto.HashLen]byte
}

// Encrypt seals plaintext under the session's send key. It does not touch
// the transport; callers decide how to frame and deliver the result.
func (s *Session) Encrypt(plaintext []byte) ([]byte, error) {
	return s.send.EncryptWithAD(nil, plaintext)
}

// Decrypt opens ciphertext under the session's receive key.
func (s *Session) Decrypt(ciphertext []byte) ([]byte, error) {
	return s.recv.DecryptWithAD(nil, ciphertext)
}

// Send encrypts plaintext and writes it as a single frame on the
// transport, reusing the same length-delimited framing the handshake used.
func (s *Session) Send(plaintext []byte) error {
	ciphertext, err := s.Encrypt(plaintext)
	if err != nil {
		return err
	}
	return s.transport.WriteFrame(ciphertext)
}

// Receive reads a single frame from the transport and decrypts it.
func (s *Session) Receive() ([]byte, error) {
	ciphertext, err := s.transport.ReadFrame()
	if err != nil {
		return nil, err
	}
	return s.Decrypt(ciphertext)
}

// RemotePeerID returns the remote peer's canonical libp2p identifier, as
// derived from its handshake payload.
func (s *Session) RemotePeerID() []byte {
	return s.remotePeerID
}

// RemoteStaticKey returns the remote party's Noise static public key.
func (s *Session) RemoteStaticKey() noisecrypto.PublicKey {
	return s.remoteStaticKey
}

// HandshakeHash returns the final transcript hash, usable as a channel
// binding value.
func (s *Session) HandshakeHash() [noisecrypto.HashLen]byte {
	return s.handshakeHash
}
