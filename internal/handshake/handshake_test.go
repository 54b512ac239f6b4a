// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package handshake

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noisysockets/noise-xx/internal/noiseerr"
	"github.com/noisysockets/noise-xx/internal/noisecrypto"
)

func newTestPeer(t *testing.T, role Role) *State {
	t.Helper()
	priv, pub, err := noisecrypto.GenerateKeypair()
	require.NoError(t, err)
	return New(role, priv, pub, []byte("test-prologue"))
}

// runFullHandshake drives both sides of the XX pattern to completion and
// returns their transport CipherStates, already split. It is the shared
// fixture every happy-path test builds on.
func runFullHandshake(t *testing.T) (initiator, responder *State, iCS1, iCS2, rCS1, rCS2 *noisecrypto.CipherState) {
	t.Helper()

	initiator = newTestPeer(t, Initiator)
	responder = newTestPeer(t, Responder)

	msg1, err := initiator.WriteMessage1()
	require.NoError(t, err)
	require.NoError(t, responder.ReadMessage1(msg1))

	msg2, err := responder.WriteMessage2([]byte("responder-payload"))
	require.NoError(t, err)
	respPayload, err := initiator.ReadMessage2(msg2)
	require.NoError(t, err)
	require.Equal(t, []byte("responder-payload"), respPayload)

	msg3, err := initiator.WriteMessage3([]byte("initiator-payload"))
	require.NoError(t, err)
	initPayload, err := responder.ReadMessage3(msg3)
	require.NoError(t, err)
	require.Equal(t, []byte("initiator-payload"), initPayload)

	iCS1, iCS2, err = initiator.Split()
	require.NoError(t, err)
	rCS1, rCS2, err = responder.Split()
	require.NoError(t, err)

	return initiator, responder, iCS1, iCS2, rCS1, rCS2
}

func TestHandshakeHappyPathDerivesSharedKeys(t *testing.T) {
	initiator, responder, iCS1, iCS2, rCS1, rCS2 := runFullHandshake(t)

	require.Equal(t, initiator.HandshakeHash(), responder.HandshakeHash())

	ciphertext, err := iCS1.EncryptWithAD(nil, []byte("encryptthis"))
	require.NoError(t, err)
	plaintext, err := rCS1.DecryptWithAD(nil, ciphertext)
	require.NoError(t, err)
	require.Equal(t, []byte("encryptthis"), plaintext)

	ciphertext, err = rCS2.EncryptWithAD(nil, []byte("and this"))
	require.NoError(t, err)
	plaintext, err = iCS2.DecryptWithAD(nil, ciphertext)
	require.NoError(t, err)
	require.Equal(t, []byte("and this"), plaintext)
}

func TestHandshakeRemoteStaticLearned(t *testing.T) {
	initiator, responder, _, _, _, _ := runFullHandshake(t)

	respRS, ok := initiator.RemoteStatic()
	require.True(t, ok)
	require.Equal(t, responder.sPub, respRS)

	initRS, ok := responder.RemoteStatic()
	require.True(t, ok)
	require.Equal(t, initiator.sPub, initRS)
}

func TestResponderRejectsAllZeroEphemeral(t *testing.T) {
	responder := newTestPeer(t, Responder)

	var zeroEphemeral [noisecrypto.DHLen]byte
	msg1 := zeroEphemeral[:]

	// Message 1 mixes the (unvalidated) ephemeral into the transcript and
	// decrypts an empty payload; it performs no DH, so a zero ephemeral is
	// accepted at this step.
	require.NoError(t, responder.ReadMessage1(msg1))

	// The rejection surfaces in WriteMessage2, at the first DH(e, re).
	_, err := responder.WriteMessage2(nil)
	require.ErrorIs(t, err, noiseerr.ErrInvalidPublicKey)

	// The state is now consumed.
	_, err = responder.WriteMessage2(nil)
	require.ErrorIs(t, err, noiseerr.ErrStateMisuse)
}

func TestStepsOutOfOrderAreRejected(t *testing.T) {
	initiator := newTestPeer(t, Initiator)

	// Initiator cannot read message 1, it wrote it.
	err := initiator.ReadMessage1(make([]byte, noisecrypto.DHLen))
	require.ErrorIs(t, err, noiseerr.ErrStateMisuse)

	// The rejected call consumed the state, so even its own first step is
	// now refused.
	_, err = initiator.WriteMessage1()
	require.ErrorIs(t, err, noiseerr.ErrStateMisuse)

	fresh := newTestPeer(t, Initiator)
	_, err = fresh.WriteMessage1()
	require.NoError(t, err)

	// Calling WriteMessage1 again on an already-advanced state fails.
	_, err = fresh.WriteMessage1()
	require.ErrorIs(t, err, noiseerr.ErrStateMisuse)
}

func TestSplitBeforeMessage3IsRejected(t *testing.T) {
	initiator := newTestPeer(t, Initiator)
	responder := newTestPeer(t, Responder)

	msg1, err := initiator.WriteMessage1()
	require.NoError(t, err)
	require.NoError(t, responder.ReadMessage1(msg1))

	_, _, err = initiator.Split()
	require.ErrorIs(t, err, noiseerr.ErrStateMisuse)

	_, _, err = responder.Split()
	require.ErrorIs(t, err, noiseerr.ErrStateMisuse)
}

func TestSplitIsSingleUse(t *testing.T) {
	initiator, _, _, _, _, _ := runFullHandshake(t)

	_, _, err := initiator.Split()
	require.ErrorIs(t, err, noiseerr.ErrStateMisuse)
}

func TestAbortZeroisesAndBlocksFurtherUse(t *testing.T) {
	initiator := newTestPeer(t, Initiator)

	_, err := initiator.WriteMessage1()
	require.NoError(t, err)

	initiator.Abort()
	require.Equal(t, noisecrypto.PrivateKey{}, initiator.e)

	_, _, err = initiator.Split()
	require.ErrorIs(t, err, noiseerr.ErrStateMisuse)
}

func TestTamperedMessage2StaticFailsAuth(t *testing.T) {
	initiator := newTestPeer(t, Initiator)
	responder := newTestPeer(t, Responder)

	msg1, err := initiator.WriteMessage1()
	require.NoError(t, err)
	require.NoError(t, responder.ReadMessage1(msg1))

	msg2, err := responder.WriteMessage2(nil)
	require.NoError(t, err)

	tampered := append([]byte(nil), msg2...)
	tampered[noisecrypto.DHLen] ^= 0xFF

	_, err = initiator.ReadMessage2(tampered)
	require.ErrorIs(t, err, noiseerr.ErrAeadAuthFailure)
}
