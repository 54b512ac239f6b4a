// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 *
 * Portions of this file are based on code originally from go-libp2p's
 * noise transport (p2p/security/noise), Copyright libp2p authors.
 */

// Package noisexx orchestrates the Noise-XX handshake core for libp2p: it
// drives the internal/handshake state machine over a framed transport,
// attaches and verifies the libp2p identity payload at the right points,
// and hands back a post-handshake Session.
package noisexx

import (
	"log/slog"

	"github.com/noisysockets/noise-xx/identity"
	"github.com/noisysockets/noise-xx/internal/framing"
	"github.com/noisysockets/noise-xx/internal/handshake"
	"github.com/noisysockets/noise-xx/internal/noisecrypto"
	"github.com/noisysockets/noise-xx/internal/payload"
)

// Role selects which side of the XX pattern this handshake plays.
type Role = handshake.Role

const (
	Initiator Role = handshake.Initiator
	Responder Role = handshake.Responder
)

// Transport is the ordered, reliable, length-delimited duplex byte channel
// the handshake and post-handshake session communicate over.
type Transport = framing.Transport

// NewTransport wraps any io.ReadWriter (e.g. a net.Conn) with the framing
// this package expects.
var NewTransport = framing.New

// Config carries everything an XXHandshake needs at construction.
type Config struct {
	// Role is Initiator or Responder.
	Role Role
	// Prologue is mixed into the transcript hash before message 1, binding
	// outer-protocol context. May be nil.
	Prologue []byte
	// StaticPrivateKey/StaticPublicKey are this side's long-term Noise
	// static DH keypair.
	StaticPrivateKey noisecrypto.PrivateKey
	StaticPublicKey  noisecrypto.PublicKey
	// Identity signs and verifies the libp2p payload binding StaticPublicKey
	// to this side's long-term libp2p identity.
	Identity identity.Provider
	// EarlyData, if non-nil, is signed and sent alongside the static-key
	// proof.
	EarlyData []byte
	// ExpectedRemotePeerID, if non-nil, is checked against the remote
	// peer id derived from its payload during Exchange/Finish.
	ExpectedRemotePeerID []byte
	// Transport is the framed duplex channel both sides communicate over.
	Transport Transport
	// Logger receives structured debug logs of handshake progress and
	// failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// XXHandshake drives propose/exchange/finish over Config.Transport. Each
// call must be made in order by both sides; the transport itself enforces
// cross-side ordering (message N+1 cannot be read before message N is
// written).
type XXHandshake struct {
	cfg    Config
	hs     *handshake.State
	logger *slog.Logger

	remotePayload *payload.Payload
}

// New constructs an XXHandshake ready to run propose/exchange/finish.
func New(cfg Config) *XXHandshake {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &XXHandshake{
		cfg:    cfg,
		hs:     handshake.New(cfg.Role, cfg.StaticPrivateKey, cfg.StaticPublicKey, cfg.Prologue),
		logger: logger,
	}
}

// Propose sends (initiator) or reads (responder) the first XX message.
func (x *XXHandshake) Propose() error {
	if x.cfg.Role == Initiator {
		msg, err := x.hs.WriteMessage1()
		if err != nil {
			x.logger.Debug("propose: failed to write message 1", "err", err)
			return err
		}
		return x.cfg.Transport.WriteFrame(msg)
	}

	msg, err := x.cfg.Transport.ReadFrame()
	if err != nil {
		return err
	}
	if err := x.hs.ReadMessage1(msg); err != nil {
		x.logger.Debug("propose: failed to read message 1", "err", err)
		return err
	}
	return nil
}

// Exchange sends (responder) or reads-and-verifies (initiator) the second
// XX message. For the initiator, this is where the remote (responder)
// identity is learned and checked.
func (x *XXHandshake) Exchange() error {
	if x.cfg.Role == Responder {
		payloadBytes, err := x.signedPayload()
		if err != nil {
			return err
		}
		msg, err := x.hs.WriteMessage2(payloadBytes)
		if err != nil {
			x.logger.Debug("exchange: failed to write message 2", "err", err)
			return err
		}
		return x.cfg.Transport.WriteFrame(msg)
	}

	msg, err := x.cfg.Transport.ReadFrame()
	if err != nil {
		return err
	}
	plaintext, err := x.hs.ReadMessage2(msg)
	if err != nil {
		x.logger.Debug("exchange: failed to read message 2", "err", err)
		return err
	}
	return x.verifyRemotePayload(plaintext)
}

// Finish sends (initiator) or reads-and-verifies (responder) the third XX
// message, then splits the handshake into a transport Session.
func (x *XXHandshake) Finish() (*Session, error) {
	if x.cfg.Role == Initiator {
		payloadBytes, err := x.signedPayload()
		if err != nil {
			return nil, err
		}
		msg, err := x.hs.WriteMessage3(payloadBytes)
		if err != nil {
			x.logger.Debug("finish: failed to write message 3", "err", err)
			return nil, err
		}
		if err := x.cfg.Transport.WriteFrame(msg); err != nil {
			return nil, err
		}
	} else {
		msg, err := x.cfg.Transport.ReadFrame()
		if err != nil {
			return nil, err
		}
		plaintext, err := x.hs.ReadMessage3(msg)
		if err != nil {
			x.logger.Debug("finish: failed to read message 3", "err", err)
			return nil, err
		}
		if err := x.verifyRemotePayload(plaintext); err != nil {
			return nil, err
		}
	}

	// Split zeroises the transcript hash, so read it first.
	handshakeHash := x.hs.HandshakeHash()
	cs1, cs2, err := x.hs.Split()
	if err != nil {
		x.logger.Debug("finish: failed to split transport keys", "err", err)
		return nil, err
	}

	var send, recv *noisecrypto.CipherState
	if x.cfg.Role == Initiator {
		send, recv = cs1, cs2
	} else {
		send, recv = cs2, cs1
	}

	remoteStatic, _ := x.hs.RemoteStatic()

	var remotePeerID []byte
	if x.remotePayload != nil {
		remotePeerID, _ = x.cfg.Identity.PeerIDFromPublicKey(x.remotePayload.IdentityPublicKey)
	}

	return &Session{
		send:            send,
		recv:            recv,
		transport:       x.cfg.Transport,
		remotePeerID:    remotePeerID,
		remoteStaticKey: remoteStatic,
		handshakeHash:   handshakeHash,
	}, nil
}

func (x *XXHandshake) signedPayload() ([]byte, error) {
	p, err := payload.Construct(x.cfg.Identity, x.cfg.StaticPublicKey, x.cfg.EarlyData)
	if err != nil {
		return nil, err
	}
	return payload.Encode(p), nil
}

func (x *XXHandshake) verifyRemotePayload(plaintext []byte) error {
	remoteStatic, _ := x.hs.RemoteStatic()
	verified, err := payload.Verify(x.cfg.Identity, plaintext, remoteStatic, x.cfg.ExpectedRemotePeerID)
	if err != nil {
		x.logger.Debug("payload verification failed", "role", x.cfg.Role, "err", err)
		return err
	}
	x.remotePayload = verified
	return nil
}

// Abort zeroises all key material for a handshake that will not be
// finished, e.g. because the transport was dropped or a cancellation
// signal arrived between steps.
func (x *XXHandshake) Abort() {
	x.hs.Abort()
}
