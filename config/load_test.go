// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package config

import (
	"crypto/ed25519"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadParsesConfig(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	encodedSeed := base64.StdEncoding.EncodeToString(seed)

	doc := "kind: Config\n" +
		"apiVersion: noise-xx.noisysockets.github.com/v1alpha1\n" +
		"name: alice\n" +
		"identityPrivateKey: " + encodedSeed + "\n" +
		"peers:\n" +
		"  - name: bob\n" +
		"    peerId: QmSomePeerIDPlaceholder\n"

	cfg, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, "alice", cfg.Name)
	require.Len(t, cfg.Peers, 1)
	require.Equal(t, "bob", cfg.Peers[0].Name)
}

func TestLoadEd25519IdentityRoundTrips(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	encodedSeed := base64.StdEncoding.EncodeToString(seed)

	doc := "kind: Config\n" +
		"identityPrivateKey: " + encodedSeed + "\n"

	cfg, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	id, err := LoadEd25519Identity(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, id.PeerIDBytes())
}

func TestLoadEd25519IdentityRejectsBadSeedLength(t *testing.T) {
	doc := "kind: Config\nidentityPrivateKey: " + base64.StdEncoding.EncodeToString([]byte("too-short")) + "\n"

	cfg, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	_, err = LoadEd25519Identity(cfg)
	require.Error(t, err)
}
