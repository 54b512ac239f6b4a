// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package types holds the versioned-config scaffolding shared by every
// config/vX package: a TypeMeta envelope and a Config interface so callers
// can load a file without knowing its schema version ahead of time.
package types

// TypeMeta identifies the kind and apiVersion of a config document, the
// way a Kubernetes-style manifest does.
type TypeMeta struct {
	Kind       string `yaml:"kind" mapstructure:"kind"`
	APIVersion string `yaml:"apiVersion" mapstructure:"apiVersion"`
}

// Config is implemented by every versioned config document.
type Config interface {
	GetKind() string
	GetAPIVersion() string
}
