// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

import (
	"crypto/subtle"
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
)

// velvetSweatshop is the password Excel substitutes when the caller supplies
// none, per MS-OFFCRYPTO §2.3.5.2.
const velvetSweatshop = "VelvetSweatshop"

// Reserved Agile block keys (MS-OFFCRYPTO §2.3.4.13-14). The verifier and
// key-value block keys are appended to the password base hash before one
// final hash to derive a purpose-specific key; the two HMAC block keys are
// hashed with the key-data salt to derive an IV.
var (
	blockKeyVerifierHashInput = []byte{0xFE, 0xA7, 0xD2, 0x76, 0x3B, 0x4B, 0x9E, 0x79}
	blockKeyVerifierHashValue = []byte{0xD7, 0xAA, 0x0F, 0x6D, 0x30, 0x61, 0x34, 0x4E}
	blockKeyKeyValue          = []byte{0x14, 0x6E, 0x0B, 0xE7, 0xAB, 0xAC, 0xD0, 0xD6}
	blockKeyHmacKey           = []byte{0x5F, 0xB2, 0xAD, 0x01, 0x0C, 0xB9, 0xE1, 0xF6}
	blockKeyHmacValue         = []byte{0xA0, 0x67, 0x7F, 0x02, 0xB2, 0x2C, 0x84, 0x33}
)

// passwordToUTF16LE encodes password as UTF-16LE without a BOM or terminator,
// substituting the VelvetSweatshop default when password is empty.
func passwordToUTF16LE(password string) ([]byte, error) {
	if password == "" {
		password = velvetSweatshop
	}
	encoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	return encoder.Bytes([]byte(password))
}

// saltAndPassword concatenates salt and the UTF-16LE encoding of password,
// salt first, per MS-OFFCRYPTO §2.3.4.7/§2.3.4.11.
func saltAndPassword(salt []byte, password string) ([]byte, error) {
	pw, err := passwordToUTF16LE(password)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(salt)+len(pw))
	buf = append(buf, salt...)
	buf = append(buf, pw...)
	return buf, nil
}

// fixHashSize truncates or right-pads b with fill to exactly n bytes. fill is
// 0x00 for plain hash truncation/padding and 0x36 for the Agile IV/key
// padding MS-OFFCRYPTO requires (spec.md §9).
func fixHashSize(b []byte, n int, fill byte) []byte {
	switch {
	case len(b) == n:
		return b
	case len(b) < n:
		out := make([]byte, n)
		copy(out, b)
		for i := len(b); i < n; i++ {
			out[i] = fill
		}
		return out
	default:
		return b[:n]
	}
}

// uint32le little-endian encodes v into a fresh 4-byte buffer.
func uint32le(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

// uint64le little-endian encodes v into a fresh 8-byte buffer.
func uint64le(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

// constantTimeEqual reports whether a and b are identical without leaking
// timing information about the position of the first mismatch. Verifier and
// HMAC comparisons must use this rather than bytes.Equal (spec.md §7/§9).
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
