// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package framing

import (
	"bytes"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noisysockets/noise-xx/internal/noiseerr"
)

func TestWriteFrameReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rw := &loopback{&buf}
	transport := New(rw)

	require.NoError(t, transport.WriteFrame([]byte("hello")))
	frame, err := transport.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), frame)
}

func TestWriteFrameRejectsOversize(t *testing.T) {
	var buf bytes.Buffer
	transport := New(&loopback{&buf})

	err := transport.WriteFrame(make([]byte, MaxFrameSize+1))
	require.ErrorIs(t, err, noiseerr.ErrMalformedFrame)
}

func TestWriteFrameAcceptsMaxSize(t *testing.T) {
	var buf bytes.Buffer
	transport := New(&loopback{&buf})

	frame := make([]byte, MaxFrameSize)
	require.NoError(t, transport.WriteFrame(frame))

	got, err := transport.ReadFrame()
	require.NoError(t, err)
	require.Len(t, got, MaxFrameSize)
}

func TestFramingOverNetPipe(t *testing.T) {
	connA, connB := net.Pipe()
	defer connA.Close()
	defer connB.Close()

	a := New(connA)
	b := New(connB)

	done := make(chan error, 1)
	go func() {
		done <- a.WriteFrame([]byte("over the wire"))
	}()

	frame, err := b.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, []byte("over the wire"), frame)
	require.NoError(t, <-done)
}

// loopback adapts a bytes.Buffer to io.ReadWriter for the simple
// write-then-read framing tests.
type loopback struct {
	buf *bytes.Buffer
}

func (l *loopback) Write(p []byte) (int, error) { return l.buf.Write(p) }
func (l *loopback) Read(p []byte) (int, error)  { return l.buf.Read(p) }
