// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package payload constructs, signs, serializes, parses and verifies the
// libp2p handshake payload that binds a peer's long-term identity to its
// ephemeral Noise static key. The wire format is a tag-length-value record
// encoded with the protobuf wire primitives directly (no .proto/codegen
// step), grounded on go-libp2p noise's NoiseHandshakePayload field layout:
// identity_public_key=1, noise_static_signature=2, early_data=3,
// early_data_signature=4.
package payload

import (
	"bytes"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/noisysockets/noise-xx/internal/noiseerr"
)

const (
	tagIdentityPublicKey   = 1
	tagNoiseStaticSig      = 2
	tagEarlyData           = 3
	tagEarlyDataSig        = 4
)

// Frozen, ASCII, no terminator.
const (
	StaticKeySigPrefix = "noise-libp2p-static-key:"
	EarlyDataSigPrefix = "noise-libp2p-early-data:"
)

// Payload is the decoded libp2p handshake payload.
type Payload struct {
	IdentityPublicKey    []byte
	NoiseStaticSignature []byte
	EarlyData            []byte
	EarlyDataSignature   []byte
}

// Signer is the subset of the identity provider interface needed to
// construct a payload.
type Signer interface {
	Sign(data []byte) ([]byte, error)
	PublicKeyBytes() []byte
}

// Verifier is the subset of the identity provider interface needed to
// verify a received payload.
type Verifier interface {
	Verify(publicKeyBytes, data, signature []byte) (bool, error)
	PeerIDFromPublicKey(publicKeyBytes []byte) ([]byte, error)
}

// Construct builds and signs a handshake payload binding signer's identity
// to staticPublic. If earlyData is non-nil, it is signed too.
func Construct(signer Signer, staticPublic [32]byte, earlyData []byte) (*Payload, error) {
	toSign := append([]byte(StaticKeySigPrefix), staticPublic[:]...)
	sig, err := signer.Sign(toSign)
	if err != nil {
		return nil, err
	}

	p := &Payload{
		IdentityPublicKey:    signer.PublicKeyBytes(),
		NoiseStaticSignature: sig,
	}

	if earlyData != nil {
		edToSign := append([]byte(EarlyDataSigPrefix), earlyData...)
		edSig, err := signer.Sign(edToSign)
		if err != nil {
			return nil, err
		}
		p.EarlyData = earlyData
		p.EarlyDataSignature = edSig
	}

	return p, nil
}

// Encode serializes p in ascending tag order. Absent optional fields are
// omitted.
func Encode(p *Payload) []byte {
	var b []byte
	b = appendBytesField(b, tagIdentityPublicKey, p.IdentityPublicKey)
	b = appendBytesField(b, tagNoiseStaticSig, p.NoiseStaticSignature)
	if p.EarlyData != nil {
		b = appendBytesField(b, tagEarlyData, p.EarlyData)
	}
	if p.EarlyDataSignature != nil {
		b = appendBytesField(b, tagEarlyDataSig, p.EarlyDataSignature)
	}
	return b
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendBytes(b, v)
	return b
}

// Decode parses a payload record. Unknown tags are skipped. Missing
// required fields (identity_public_key, noise_static_signature) are a
// decode error.
func Decode(data []byte) (*Payload, error) {
	p := &Payload{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, noiseerr.ErrPayloadDecodeError
		}
		data = data[n:]

		if typ != protowire.BytesType {
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, noiseerr.ErrPayloadDecodeError
			}
			data = data[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, noiseerr.ErrPayloadDecodeError
		}
		data = data[n:]

		switch protowire.Number(num) {
		case tagIdentityPublicKey:
			p.IdentityPublicKey = append([]byte(nil), v...)
		case tagNoiseStaticSig:
			p.NoiseStaticSignature = append([]byte(nil), v...)
		case tagEarlyData:
			p.EarlyData = append([]byte(nil), v...)
		case tagEarlyDataSig:
			p.EarlyDataSignature = append([]byte(nil), v...)
		default:
			// Unknown tags are ignored on decode.
		}
	}

	if p.IdentityPublicKey == nil || p.NoiseStaticSignature == nil {
		return nil, noiseerr.ErrPayloadDecodeError
	}
	return p, nil
}

// Verify decodes data, derives the sender's peer id from its embedded
// identity key, checks it against expectedPeerID (if non-nil), verifies the
// static-key signature over remoteStatic and, if an early-data signature is
// present, verifies it over the early data. Every failure is wrapped with
// noiseerr.VerificationErrorPrefix.
func Verify(verifier Verifier, data []byte, remoteStatic [32]byte, expectedPeerID []byte) (*Payload, error) {
	p, err := Decode(data)
	if err != nil {
		return nil, wrap(noiseerr.ErrPayloadDecodeError)
	}

	derivedPeerID, err := verifier.PeerIDFromPublicKey(p.IdentityPublicKey)
	if err != nil {
		return nil, wrapf("%v", err)
	}

	if expectedPeerID != nil && !bytes.Equal(expectedPeerID, derivedPeerID) {
		return nil, wrap(noiseerr.ErrPeerIDMismatch)
	}

	toVerify := append([]byte(StaticKeySigPrefix), remoteStatic[:]...)
	ok, err := verifier.Verify(p.IdentityPublicKey, toVerify, p.NoiseStaticSignature)
	if err != nil || !ok {
		return nil, wrap(noiseerr.ErrStaticKeyNotAuthenticated)
	}

	if p.EarlyDataSignature != nil {
		edToVerify := append([]byte(EarlyDataSigPrefix), p.EarlyData...)
		ok, err := verifier.Verify(p.IdentityPublicKey, edToVerify, p.EarlyDataSignature)
		if err != nil || !ok {
			return nil, wrap(noiseerr.ErrEarlyDataNotAuthenticated)
		}
	}

	return p, nil
}

func wrap(err error) error {
	return &verificationError{cause: err}
}

func wrapf(format string, args ...any) error {
	return wrap(fmt.Errorf(format, args...))
}
