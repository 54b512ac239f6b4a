// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package framing implements the 16-bit big-endian length-delimited
// framing libp2p secure channels use, over any io.ReadWriter. It is the
// concrete Transport the XXHandshake orchestrator and post-handshake
// Session drive reads and writes through.
package framing

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/noisysockets/noise-xx/internal/noiseerr"
)

// MaxFrameSize is the largest handshake or transport message this framing
// can carry; it is the limit of the 16-bit length prefix.
const MaxFrameSize = 0xFFFF

const headerSize = 2

// Transport is the ordered, reliable, length-delimited duplex byte channel
// the handshake core and post-handshake session communicate over.
type Transport interface {
	ReadFrame() ([]byte, error)
	WriteFrame(frame []byte) error
}

type lengthPrefixed struct {
	rw       io.ReadWriter
	writeMu  sync.Mutex
	readMu   sync.Mutex
}

// New wraps rw with 16-bit big-endian length-prefixed framing.
func New(rw io.ReadWriter) Transport {
	return &lengthPrefixed{rw: rw}
}

func (t *lengthPrefixed) WriteFrame(frame []byte) error {
	if len(frame) > MaxFrameSize {
		return noiseerr.ErrMalformedFrame
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	var header [headerSize]byte
	binary.BigEndian.PutUint16(header[:], uint16(len(frame)))

	if _, err := t.rw.Write(header[:]); err != nil {
		return err
	}
	if _, err := t.rw.Write(frame); err != nil {
		return err
	}
	return nil
}

func (t *lengthPrefixed) ReadFrame() ([]byte, error) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	var header [headerSize]byte
	if _, err := io.ReadFull(t.rw, header[:]); err != nil {
		return nil, err
	}

	n := binary.BigEndian.Uint16(header[:])
	frame := make([]byte, n)
	if _, err := io.ReadFull(t.rw, frame); err != nil {
		return nil, err
	}
	return frame, nil
}
