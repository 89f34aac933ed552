// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStandardDeriveKeyDeterministic covers the §8 invariant that key
// derivation is a pure function of (salt, password, keyBits).
func TestStandardDeriveKeyDeterministic(t *testing.T) {
	salt := make([]byte, 16)
	for i := range salt {
		salt[i] = byte(i)
	}
	k1, err := standardDeriveKey(salt, "pass", 128)
	require.NoError(t, err)
	k2, err := standardDeriveKey(salt, "pass", 128)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 16)

	k256, err := standardDeriveKey(salt, "pass", 256)
	require.NoError(t, err)
	assert.Len(t, k256, 32)
	// Both key sizes derive from the same X1 = H(D1) block; a 256-bit key
	// only appends X2 rather than recomputing X1 differently.
	assert.Equal(t, k1, k256[:16])
}

// TestStandardEncryptDecryptRoundTrip covers seed vector S1: Standard
// AES-128, password "pass", 32-byte cleartext.
func TestStandardEncryptDecryptRoundTrip(t *testing.T) {
	cleartext := make([]byte, 32)
	for i := range cleartext {
		cleartext[i] = byte(i)
	}
	opt := Options{Password: "pass", Profile: ProfileStandard, Algorithm: AlgorithmAES128}
	infoStream, pkgStream, err := standardEncrypt(cleartext, opt)
	require.NoError(t, err)

	header, verifier, err := parseStandardEncryptionInfo(infoStream)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0000660E), header.AlgID)
	assert.Equal(t, uint32(128), header.KeySize)
	assert.Equal(t, uint32(16), verifier.SaltSize)
	assert.Equal(t, uint32(0x20), verifier.VerifierHashSize)

	plain, err := standardDecrypt(infoStream, pkgStream, "pass")
	require.NoError(t, err)
	assert.Equal(t, cleartext, plain)

	_, err = standardDecrypt(infoStream, pkgStream, "Pass")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

// TestStandardEncryptDecryptEmptyPassword covers seed vector S2: Standard
// AES-256, empty (VelvetSweatshop) password, 1-byte cleartext.
func TestStandardEncryptDecryptEmptyPassword(t *testing.T) {
	cleartext := []byte{0xFF}
	opt := Options{Profile: ProfileStandard, Algorithm: AlgorithmAES256}
	infoStream, pkgStream, err := standardEncrypt(cleartext, opt)
	require.NoError(t, err)
	assert.Len(t, pkgStream, 8+16)

	plain, err := standardDecrypt(infoStream, pkgStream, "")
	require.NoError(t, err)
	assert.Equal(t, cleartext, plain)

	plainSweatshop, err := standardDecrypt(infoStream, pkgStream, velvetSweatshop)
	require.NoError(t, err)
	assert.Equal(t, cleartext, plainSweatshop)
}

func TestStandardDecryptMalformedPackage(t *testing.T) {
	opt := Options{Password: "pass", Profile: ProfileStandard, Algorithm: AlgorithmAES128}
	infoStream, _, err := standardEncrypt([]byte("hello world"), opt)
	require.NoError(t, err)

	_, err = standardDecrypt(infoStream, []byte{0x01, 0x02, 0x03}, "pass")
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestStandardCleartextLengthPrefix(t *testing.T) {
	cleartext := []byte("the quick brown fox jumps over the lazy dog")
	opt := Options{Password: "pass", Profile: ProfileStandard, Algorithm: AlgorithmAES192}
	_, pkgStream, err := standardEncrypt(cleartext, opt)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(cleartext)), binary.LittleEndian.Uint64(pkgStream[:8]))
}
