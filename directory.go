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
	"encoding/hex"
	"fmt"
)

// PeerDirectory maps human-friendly peer names to the expected peer ids
// they must prove during a handshake, and back. Rather than routing
// packets to addresses, it resolves names to the identity a remote must
// authenticate as.
type PeerDirectory struct {
	peerNamesToIDs map[string]string
	peerIDsToNames map[string]string
}

// NewPeerDirectory returns an empty directory ready for AddPeer calls.
func NewPeerDirectory() *PeerDirectory {
	return &PeerDirectory{
		peerNamesToIDs: make(map[string]string),
		peerIDsToNames: make(map[string]string),
	}
}

// AddPeer registers a named peer's expected peer id (the canonical
// identifier returned by identity.Provider.PeerIDBytes).
func (pd *PeerDirectory) AddPeer(name string, peerID []byte) error {
	id := hex.EncodeToString(peerID)
	if existing, ok := pd.peerIDsToNames[id]; ok && existing != name {
		return fmt.Errorf("peer id %s already registered under name %q", id, existing)
	}

	if name != "" {
		pd.peerNamesToIDs[name] = id
	}
	pd.peerIDsToNames[id] = name

	return nil
}

// LookupPeerIDByName resolves a registered peer name to its expected peer
// id.
func (pd *PeerDirectory) LookupPeerIDByName(name string) ([]byte, bool) {
	id, ok := pd.peerNamesToIDs[name]
	if !ok {
		return nil, false
	}
	decoded, err := hex.DecodeString(id)
	if err != nil {
		return nil, false
	}
	return decoded, true
}

// LookupNameByPeerID resolves a peer id back to its registered name, if
// any.
func (pd *PeerDirectory) LookupNameByPeerID(peerID []byte) (string, bool) {
	name, ok := pd.peerIDsToNames[hex.EncodeToString(peerID)]
	return name, ok
}
