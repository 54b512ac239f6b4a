// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package identity

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEd25519IdentitySignVerifyRoundTrip(t *testing.T) {
	id, err := NewEd25519Identity()
	require.NoError(t, err)

	sig, err := id.Sign([]byte("message"))
	require.NoError(t, err)

	ok, err := id.Verify(id.PublicKeyBytes(), []byte("message"), sig)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEd25519IdentityVerifyRejectsTamperedMessage(t *testing.T) {
	id, err := NewEd25519Identity()
	require.NoError(t, err)

	sig, err := id.Sign([]byte("message"))
	require.NoError(t, err)

	ok, err := id.Verify(id.PublicKeyBytes(), []byte("tampered"), sig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEd25519IdentityPeerIDStableForSameKey(t *testing.T) {
	id, err := NewEd25519Identity()
	require.NoError(t, err)

	a := id.PeerIDBytes()
	b, err := id.PeerIDFromPublicKey(id.PublicKeyBytes())
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestEd25519IdentityPeerIDDiffersAcrossKeys(t *testing.T) {
	a, err := NewEd25519Identity()
	require.NoError(t, err)
	b, err := NewEd25519Identity()
	require.NoError(t, err)
	require.NotEqual(t, a.PeerIDBytes(), b.PeerIDBytes())
}

func TestFromEd25519SeedIsDeterministic(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}

	a := FromEd25519Seed(seed)
	b := FromEd25519Seed(seed)
	require.Equal(t, a.PublicKeyBytes(), b.PublicKeyBytes())
	require.Equal(t, a.PeerIDBytes(), b.PeerIDBytes())
}

func TestEd25519IdentityPeerIDEmbedsEnvelopeVerbatim(t *testing.T) {
	id, err := NewEd25519Identity()
	require.NoError(t, err)

	// An Ed25519 public key envelope is well under the 42-byte
	// identity-multihash cutoff, so the peer id must contain the envelope
	// bytes verbatim (with a short multihash header) rather than a hash
	// of it.
	envelope := id.PublicKeyBytes()
	peerID := id.PeerIDBytes()
	require.Contains(t, string(peerID), string(envelope))
}
