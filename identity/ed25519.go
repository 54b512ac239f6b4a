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
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// Ed25519Identity is a concrete Provider backed by an Ed25519 keypair. It
// exists for tests and the demo CLI; production callers bring their own
// libp2p identity.
type Ed25519Identity struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewEd25519Identity generates a fresh Ed25519 identity.
func NewEd25519Identity() (*Ed25519Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Ed25519Identity{priv: priv, pub: pub}, nil
}

// FromEd25519Seed reconstructs an identity from a 32-byte Ed25519 seed, the
// way a loaded config file supplies long-term identity key material.
func FromEd25519Seed(seed []byte) *Ed25519Identity {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Ed25519Identity{priv: priv, pub: pub}
}

func (id *Ed25519Identity) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(id.priv, data), nil
}

func (id *Ed25519Identity) PublicKeyBytes() []byte {
	return marshalPublicKeyEnvelope(KeyTypeEd25519, id.pub)
}

func (id *Ed25519Identity) PeerIDBytes() []byte {
	peerID, _ := peerIDFromEnvelope(id.PublicKeyBytes())
	return peerID
}

func (id *Ed25519Identity) Verify(publicKeyBytes, data, signature []byte) (bool, error) {
	kt, raw, err := unmarshalPublicKeyEnvelope(publicKeyBytes)
	if err != nil {
		return false, err
	}
	if kt != KeyTypeEd25519 {
		return false, fmt.Errorf("identity: unsupported key type %d", kt)
	}
	if len(raw) != ed25519.PublicKeySize {
		return false, fmt.Errorf("identity: invalid ed25519 public key length %d", len(raw))
	}
	return ed25519.Verify(ed25519.PublicKey(raw), data, signature), nil
}

func (id *Ed25519Identity) PeerIDFromPublicKey(publicKeyBytes []byte) ([]byte, error) {
	return peerIDFromEnvelope(publicKeyBytes)
}

// String renders the identity's peer id the way a log line would,
// base58-encoded per libp2p convention.
func (id *Ed25519Identity) String() string {
	return base58.Encode(id.PeerIDBytes())
}

var _ Provider = (*Ed25519Identity)(nil)
