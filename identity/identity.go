// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package identity provides the external identity-provider interface the
// Noise-XX core depends on, plus a concrete Ed25519-backed implementation
// grounded on go-libp2p's crypto marshalling and peer-id derivation rules,
// for use in tests and the demo CLI. The core itself never owns or
// constructs a Provider; it is always supplied by the caller.
package identity

// Provider is the external, long-term libp2p identity an XX handshake
// binds its ephemeral Noise static key to. Its signature algorithm
// (Ed25519, RSA, Secp256k1, ...) is opaque to the handshake core.
type Provider interface {
	// Sign signs data with the long-term private key.
	Sign(data []byte) ([]byte, error)
	// PublicKeyBytes returns the libp2p-marshalled public key envelope.
	PublicKeyBytes() []byte
	// PeerIDBytes returns this identity's canonical peer id.
	PeerIDBytes() []byte
	// Verify checks a signature over data against a marshalled public key.
	Verify(publicKeyBytes, data, signature []byte) (bool, error)
	// PeerIDFromPublicKey derives the canonical peer id for a marshalled
	// public key, per the libp2p rules (hash-of-marshalled-key, with an
	// "identity" short-circuit for keys at or below 42 bytes).
	PeerIDFromPublicKey(publicKeyBytes []byte) ([]byte, error)
}
