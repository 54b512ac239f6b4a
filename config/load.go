// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package config loads the YAML peer-directory format (config/v1alpha1)
// that describes a Noise-XX peer's own identity and its known peers.
package config

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/noisysockets/noise-xx/config/v1alpha1"
	"github.com/noisysockets/noise-xx/identity"
)

// Load parses a v1alpha1 Config document from r.
func Load(r io.Reader) (*v1alpha1.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg v1alpha1.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// LoadEd25519Identity decodes the identity private key embedded in cfg into
// a concrete identity.Ed25519Identity.
func LoadEd25519Identity(cfg *v1alpha1.Config) (*identity.Ed25519Identity, error) {
	seed, err := base64.StdEncoding.DecodeString(cfg.IdentityPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode identity private key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("identity private key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return identity.FromEd25519Seed(seed), nil
}
