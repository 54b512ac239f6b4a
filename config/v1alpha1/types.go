// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package v1alpha1

import (
	"fmt"

	"github.com/noisysockets/noise-xx/config/types"
)

const ApiVersion = "noise-xx.noisysockets.github.com/v1alpha1"

// Config is the on-disk description of a Noise-XX peer: its own identity
// key material and the directory of peers it is willing to handshake with.
type Config struct {
	types.TypeMeta `yaml:",inline" mapstructure:",squash"`
	// Name is the optional hostname of this peer.
	Name string `yaml:"name,omitempty" mapstructure:"name,omitempty"`
	// IdentityPrivateKey is the base64-encoded Ed25519 private key seed
	// used to sign handshake payloads.
	IdentityPrivateKey string `yaml:"identityPrivateKey" mapstructure:"identityPrivateKey"`
	// Peers is a list of known peers this identity may handshake with.
	Peers []PeerConfig `yaml:"peers,omitempty" mapstructure:"peers,omitempty"`
}

// PeerConfig is the configuration for a known remote peer.
type PeerConfig struct {
	// Name is the optional hostname of the peer.
	Name string `yaml:"name,omitempty" mapstructure:"name,omitempty"`
	// PeerID is the expected base58-encoded libp2p peer id of this peer,
	// checked against the identity proven during the handshake.
	PeerID string `yaml:"peerId" mapstructure:"peerId"`
	// PublicKey is the base64-encoded libp2p-marshalled public key
	// envelope of the peer, if known in advance.
	PublicKey string `yaml:"publicKey,omitempty" mapstructure:"publicKey,omitempty"`
}

func (c Config) GetKind() string {
	return "Config"
}

func (c Config) GetAPIVersion() string {
	return ApiVersion
}

func GetConfigByKind(kind string) (types.Config, error) {
	switch kind {
	case "Config":
		return &Config{}, nil
	default:
		return nil, fmt.Errorf("unsupported kind: %s", kind)
	}
}
