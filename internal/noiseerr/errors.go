// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package noiseerr defines the terminal error kinds a Noise-XX handshake
// can fail with. Every one of them is fatal for the handshake that raised
// it; there is no recovery inside the core.
package noiseerr

import "errors"

var (
	// ErrMalformedFrame is returned when a handshake message is shorter
	// than the fixed minimum for its step, or its length prefix disagrees
	// with the frame body.
	ErrMalformedFrame = errors.New("noise: malformed handshake frame")

	// ErrInvalidPublicKey is returned when a received static or ephemeral
	// public key fails X25519 validation, or a DH computation yields the
	// all-zero shared secret.
	ErrInvalidPublicKey = errors.New("noise: invalid public key")

	// ErrAeadAuthFailure is returned when Poly1305 tag verification fails
	// on any encrypted field or message.
	ErrAeadAuthFailure = errors.New("noise: AEAD authentication failure")

	// ErrPayloadDecodeError is returned when payload bytes do not parse as
	// the declared TLV record, or a required field is missing.
	ErrPayloadDecodeError = errors.New("noise: payload decode error")

	// ErrPeerIDMismatch is returned when the derived peer id disagrees
	// with the caller's expected peer id.
	ErrPeerIDMismatch = errors.New("Peer ID doesn't match libp2p public key.")

	// ErrStaticKeyNotAuthenticated is returned when the signature over
	// the static-key proof does not verify.
	ErrStaticKeyNotAuthenticated = errors.New("noise: static key not authenticated")

	// ErrEarlyDataNotAuthenticated is returned when the signature over the
	// early-data proof does not verify.
	ErrEarlyDataNotAuthenticated = errors.New("noise: early data not authenticated")

	// ErrNonceExhausted is returned when the 64-bit nonce counter would
	// overflow on the next AEAD operation.
	ErrNonceExhausted = errors.New("noise: nonce counter exhausted")

	// ErrStateMisuse is returned when handshake steps are invoked out of
	// order, or on an already-consumed (finished or failed) state.
	ErrStateMisuse = errors.New("noise: handshake step invoked out of order")
)

// VerificationErrorPrefix is prepended to every error surfaced out of
// payload verification, so upstream callers can pattern-match on it
// regardless of the specific underlying cause.
const VerificationErrorPrefix = "Error occurred while verifying signed payload: "
