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
	"errors"

	"github.com/multiformats/go-multihash"
	"google.golang.org/protobuf/encoding/protowire"
)

// KeyType tags the algorithm of a marshalled public key, matching
// go-libp2p's crypto.pb PublicKey.Type enum.
type KeyType int32

const (
	KeyTypeRSA       KeyType = 0
	KeyTypeEd25519   KeyType = 1
	KeyTypeSecp256k1 KeyType = 2
	KeyTypeECDSA     KeyType = 3
)

// identityMultihashMaxLen is the libp2p rule for when a peer id embeds the
// marshalled public key directly (the "identity" multihash) rather than
// hashing it.
const identityMultihashMaxLen = 42

var errMalformedEnvelope = errors.New("identity: malformed public key envelope")

// marshalPublicKeyEnvelope encodes a (type, raw key) pair the same way
// go-libp2p's generated crypto.pb.PublicKey protobuf message would, using
// the protobuf wire primitives directly rather than a .proto/codegen step.
func marshalPublicKeyEnvelope(kt KeyType, raw []byte) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(kt))
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, raw)
	return b
}

func unmarshalPublicKeyEnvelope(data []byte) (KeyType, []byte, error) {
	var kt KeyType
	var raw []byte
	var sawType, sawKey bool

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return 0, nil, errMalformedEnvelope
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return 0, nil, errMalformedEnvelope
			}
			kt, sawType = KeyType(v), true
			data = data[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return 0, nil, errMalformedEnvelope
			}
			raw, sawKey = append([]byte(nil), v...), true
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return 0, nil, errMalformedEnvelope
			}
			data = data[n:]
		}
	}

	if !sawType || !sawKey {
		return 0, nil, errMalformedEnvelope
	}
	return kt, raw, nil
}

// peerIDFromEnvelope implements the libp2p peer-id derivation rule: an
// "identity" multihash (the envelope verbatim) for envelopes at or below
// identityMultihashMaxLen bytes, otherwise a SHA2-256 multihash of the
// envelope.
func peerIDFromEnvelope(envelope []byte) ([]byte, error) {
	mhType := uint64(multihash.SHA2_256)
	if len(envelope) <= identityMultihashMaxLen {
		mhType = multihash.IDENTITY
	}

	mh, err := multihash.Sum(envelope, mhType, -1)
	if err != nil {
		return nil, err
	}
	return []byte(mh), nil
}
