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

// Package handshake implements the XX pattern state machine: e, e,ee,s,es,
// s,se. It drives noisecrypto.SymmetricState/CipherState and owns the
// ephemeral and static key material for a single handshake.
package handshake

import (
	"fmt"
	"sync"

	"github.com/noisysockets/noise-xx/internal/noiseerr"
	"github.com/noisysockets/noise-xx/internal/noisecrypto"
)

// ProtocolName is the frozen Noise protocol name this core implements.
const ProtocolName = "Noise_XX_25519_ChaChaPoly_SHA256"

// Role identifies which side of the XX pattern a State plays.
type Role int

const (
	Initiator Role = iota
	Responder
)

func (r Role) String() string {
	if r == Initiator {
		return "initiator"
	}
	return "responder"
}

type step int

const (
	stepInit step = iota
	stepMsg1Sent
	stepMsg1Recv
	stepMsg2Sent
	stepMsg2Recv
	stepMsg3Sent
	stepMsg3Recv
	stepDone
	stepFailed
)

func (s step) String() string {
	switch s {
	case stepInit:
		return "init"
	case stepMsg1Sent:
		return "msg1Sent"
	case stepMsg1Recv:
		return "msg1Recv"
	case stepMsg2Sent:
		return "msg2Sent"
	case stepMsg2Recv:
		return "msg2Recv"
	case stepMsg3Sent:
		return "msg3Sent"
	case stepMsg3Recv:
		return "msg3Recv"
	case stepDone:
		return "done"
	case stepFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(UNKNOWN:%d)", int(s))
	}
}

// State drives the three XX messages over a single handshake. It is
// single-use: once Split succeeds or any step returns an error, the state
// is consumed and every further call returns ErrStateMisuse.
type State struct {
	mutex sync.Mutex

	role Role
	sym  *noisecrypto.SymmetricState

	s    noisecrypto.PrivateKey
	sPub noisecrypto.PublicKey

	e    noisecrypto.PrivateKey
	ePub noisecrypto.PublicKey

	re    noisecrypto.PublicKey
	hasRE bool

	rs    noisecrypto.PublicKey
	hasRS bool

	step step
}

// New initializes a HandshakeState: SymmetricState.initialize(ProtocolName)
// followed by mix_hash(prologue). XX has no pre-messages, so no static keys
// are mixed here.
func New(role Role, static noisecrypto.PrivateKey, staticPub noisecrypto.PublicKey, prologue []byte) *State {
	sym := noisecrypto.NewSymmetricState(ProtocolName)
	sym.MixHash(prologue)
	return &State{
		role: role,
		sym:  sym,
		s:    static,
		sPub: staticPub,
		step: stepInit,
	}
}

// fail zeroises all key material and transitions the state to Failed. It is
// called on every error return path.
func (hs *State) fail() {
	hs.sym.Zero()
	hs.e.Zero()
	hs.s.Zero()
	hs.step = stepFailed
}

func (hs *State) checkStep(role Role, want step) error {
	if hs.role != role || hs.step != want {
		hs.fail()
		return noiseerr.ErrStateMisuse
	}
	return nil
}

// WriteMessage1 produces the first XX message: -> e. Called by the
// initiator.
func (hs *State) WriteMessage1() ([]byte, error) {
	hs.mutex.Lock()
	defer hs.mutex.Unlock()

	if err := hs.checkStep(Initiator, stepInit); err != nil {
		return nil, err
	}

	priv, pub, err := noisecrypto.GenerateKeypair()
	if err != nil {
		hs.fail()
		return nil, err
	}
	hs.e, hs.ePub = priv, pub

	hs.sym.MixHash(pub[:])
	payloadCiphertext, err := hs.sym.EncryptAndHash(nil)
	if err != nil {
		hs.fail()
		return nil, err
	}

	hs.step = stepMsg1Sent
	return append(append([]byte{}, pub[:]...), payloadCiphertext...), nil
}

// ReadMessage1 consumes the first XX message. Called by the responder.
func (hs *State) ReadMessage1(msg []byte) error {
	hs.mutex.Lock()
	defer hs.mutex.Unlock()

	if err := hs.checkStep(Responder, stepInit); err != nil {
		return err
	}
	if len(msg) < noisecrypto.DHLen {
		hs.fail()
		return noiseerr.ErrMalformedFrame
	}

	var re noisecrypto.PublicKey
	copy(re[:], msg[:noisecrypto.DHLen])
	hs.re, hs.hasRE = re, true

	hs.sym.MixHash(re[:])
	if _, err := hs.sym.DecryptAndHash(msg[noisecrypto.DHLen:]); err != nil {
		hs.fail()
		return err
	}

	hs.step = stepMsg1Recv
	return nil
}

// WriteMessage2 produces the second XX message: <- e, ee, s, es. Called by
// the responder with its (already-signed) libp2p payload bytes.
func (hs *State) WriteMessage2(payload []byte) ([]byte, error) {
	hs.mutex.Lock()
	defer hs.mutex.Unlock()

	if err := hs.checkStep(Responder, stepMsg1Recv); err != nil {
		return nil, err
	}

	priv, pub, err := noisecrypto.GenerateKeypair()
	if err != nil {
		hs.fail()
		return nil, err
	}
	hs.e, hs.ePub = priv, pub

	hs.sym.MixHash(pub[:])

	ee, err := noisecrypto.DH(priv, hs.re)
	if err != nil {
		hs.fail()
		return nil, err
	}
	if err := hs.sym.MixKey(ee[:]); err != nil {
		hs.fail()
		return nil, err
	}

	staticCiphertext, err := hs.sym.EncryptAndHash(hs.sPub[:])
	if err != nil {
		hs.fail()
		return nil, err
	}

	es, err := noisecrypto.DH(hs.s, hs.re)
	if err != nil {
		hs.fail()
		return nil, err
	}
	if err := hs.sym.MixKey(es[:]); err != nil {
		hs.fail()
		return nil, err
	}

	payloadCiphertext, err := hs.sym.EncryptAndHash(payload)
	if err != nil {
		hs.fail()
		return nil, err
	}

	hs.step = stepMsg2Sent
	out := append(append([]byte{}, pub[:]...), staticCiphertext...)
	return append(out, payloadCiphertext...), nil
}

// ReadMessage2 consumes the second XX message, returning the decrypted
// libp2p payload for the caller to verify. Called by the initiator.
func (hs *State) ReadMessage2(msg []byte) ([]byte, error) {
	hs.mutex.Lock()
	defer hs.mutex.Unlock()

	if err := hs.checkStep(Initiator, stepMsg1Sent); err != nil {
		return nil, err
	}

	const staticCiphertextLen = noisecrypto.DHLen + noisecrypto.TagLen
	if len(msg) < noisecrypto.DHLen+staticCiphertextLen {
		hs.fail()
		return nil, noiseerr.ErrMalformedFrame
	}

	var re noisecrypto.PublicKey
	copy(re[:], msg[:noisecrypto.DHLen])
	hs.re, hs.hasRE = re, true
	hs.sym.MixHash(re[:])

	ee, err := noisecrypto.DH(hs.e, re)
	if err != nil {
		hs.fail()
		return nil, err
	}
	if err := hs.sym.MixKey(ee[:]); err != nil {
		hs.fail()
		return nil, err
	}

	rest := msg[noisecrypto.DHLen:]
	staticPlain, err := hs.sym.DecryptAndHash(rest[:staticCiphertextLen])
	if err != nil {
		hs.fail()
		return nil, err
	}
	if len(staticPlain) != noisecrypto.DHLen {
		hs.fail()
		return nil, noiseerr.ErrMalformedFrame
	}
	var rs noisecrypto.PublicKey
	copy(rs[:], staticPlain)
	hs.rs, hs.hasRS = rs, true

	es, err := noisecrypto.DH(hs.e, rs)
	if err != nil {
		hs.fail()
		return nil, err
	}
	if err := hs.sym.MixKey(es[:]); err != nil {
		hs.fail()
		return nil, err
	}

	payload, err := hs.sym.DecryptAndHash(rest[staticCiphertextLen:])
	if err != nil {
		hs.fail()
		return nil, err
	}

	hs.step = stepMsg2Recv
	return payload, nil
}

// WriteMessage3 produces the third XX message: -> s, se. Called by the
// initiator with its (already-signed) libp2p payload bytes.
func (hs *State) WriteMessage3(payload []byte) ([]byte, error) {
	hs.mutex.Lock()
	defer hs.mutex.Unlock()

	if err := hs.checkStep(Initiator, stepMsg2Recv); err != nil {
		return nil, err
	}

	staticCiphertext, err := hs.sym.EncryptAndHash(hs.sPub[:])
	if err != nil {
		hs.fail()
		return nil, err
	}

	se, err := noisecrypto.DH(hs.s, hs.re)
	if err != nil {
		hs.fail()
		return nil, err
	}
	if err := hs.sym.MixKey(se[:]); err != nil {
		hs.fail()
		return nil, err
	}

	payloadCiphertext, err := hs.sym.EncryptAndHash(payload)
	if err != nil {
		hs.fail()
		return nil, err
	}

	hs.step = stepMsg3Sent
	return append(staticCiphertext, payloadCiphertext...), nil
}

// ReadMessage3 consumes the third XX message, returning the decrypted
// libp2p payload for the caller to verify. Called by the responder.
func (hs *State) ReadMessage3(msg []byte) ([]byte, error) {
	hs.mutex.Lock()
	defer hs.mutex.Unlock()

	if err := hs.checkStep(Responder, stepMsg2Sent); err != nil {
		return nil, err
	}

	const staticCiphertextLen = noisecrypto.DHLen + noisecrypto.TagLen
	if len(msg) < staticCiphertextLen {
		hs.fail()
		return nil, noiseerr.ErrMalformedFrame
	}

	staticPlain, err := hs.sym.DecryptAndHash(msg[:staticCiphertextLen])
	if err != nil {
		hs.fail()
		return nil, err
	}
	if len(staticPlain) != noisecrypto.DHLen {
		hs.fail()
		return nil, noiseerr.ErrMalformedFrame
	}
	var rs noisecrypto.PublicKey
	copy(rs[:], staticPlain)
	hs.rs, hs.hasRS = rs, true

	se, err := noisecrypto.DH(hs.e, rs)
	if err != nil {
		hs.fail()
		return nil, err
	}
	if err := hs.sym.MixKey(se[:]); err != nil {
		hs.fail()
		return nil, err
	}

	payload, err := hs.sym.DecryptAndHash(msg[staticCiphertextLen:])
	if err != nil {
		hs.fail()
		return nil, err
	}

	hs.step = stepMsg3Recv
	return payload, nil
}

// Split derives the pair of transport CipherStates and consumes the
// handshake state. It is valid only immediately after the final message of
// the pattern has been written or read.
func (hs *State) Split() (cs1, cs2 *noisecrypto.CipherState, err error) {
	hs.mutex.Lock()
	defer hs.mutex.Unlock()

	if hs.step != stepMsg3Sent && hs.step != stepMsg3Recv {
		return nil, nil, noiseerr.ErrStateMisuse
	}

	cs1, cs2, err = hs.sym.Split()
	if err != nil {
		hs.fail()
		return nil, nil, err
	}

	hs.sym.Zero()
	hs.e.Zero()
	hs.step = stepDone
	return cs1, cs2, nil
}

// RemoteStatic returns the remote static public key learned during the
// handshake, if any has been received yet.
func (hs *State) RemoteStatic() (noisecrypto.PublicKey, bool) {
	hs.mutex.Lock()
	defer hs.mutex.Unlock()
	return hs.rs, hs.hasRS
}

// HandshakeHash returns the current transcript hash. Split zeroises it
// together with the rest of the symmetric state, so after Split (or a
// failure) it reads as all zeros.
func (hs *State) HandshakeHash() [noisecrypto.HashLen]byte {
	hs.mutex.Lock()
	defer hs.mutex.Unlock()
	return hs.sym.HandshakeHash()
}

// Abort zeroises all key material and marks the state failed, for
// cooperative cancellation when the transport is dropped mid-handshake.
func (hs *State) Abort() {
	hs.mutex.Lock()
	defer hs.mutex.Unlock()
	if hs.step != stepDone && hs.step != stepFailed {
		hs.fail()
	}
}
