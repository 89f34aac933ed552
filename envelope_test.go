// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEncryptDecryptStandardRoundTrip exercises the full public API with a
// CFB-wrapped Standard-profile container.
func TestEncryptDecryptStandardRoundTrip(t *testing.T) {
	cleartext := []byte("PK\x03\x04 pretend ooxml zip payload")
	opt := Options{Password: "pass", Profile: ProfileStandard, Algorithm: AlgorithmAES128}

	raw, err := Encrypt(cleartext, opt)
	require.NoError(t, err)
	assert.True(t, IsEncrypted(raw))

	plain, err := Decrypt(raw, Options{Password: "pass"})
	require.NoError(t, err)
	assert.Equal(t, cleartext, plain)

	_, err = Decrypt(raw, Options{Password: "Pass"})
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

// TestEncryptDecryptAgileRoundTrip exercises the full public API with a
// CFB-wrapped Agile-profile container.
func TestEncryptDecryptAgileRoundTrip(t *testing.T) {
	cleartext := bytes.Repeat([]byte("agile-payload-"), 400)
	opt := Options{
		Password:       "secret",
		Profile:        ProfileAgile,
		AgileSpinCount: 1000,
	}

	raw, err := Encrypt(cleartext, opt)
	require.NoError(t, err)

	plain, err := Decrypt(raw, Options{Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, cleartext, plain)
}

// TestDecryptRejectsNonCompoundFile covers seed vector S6's second case.
func TestDecryptRejectsNonCompoundFile(t *testing.T) {
	_, err := Decrypt([]byte("not a compound file at all"), Options{Password: "x"})
	assert.ErrorIs(t, err, ErrNotEncryptedPackage)
	assert.False(t, IsEncrypted([]byte("not a compound file at all")))
}

// TestDecryptRejectsMissingEncryptionInfo covers seed vector S6's first case:
// a well-formed CFB that lacks EncryptionInfo entirely.
func TestDecryptRejectsMissingEncryptionInfo(t *testing.T) {
	tree := newCFBTree()
	tree.putStream("SomeOtherStream", []byte("not an encrypted package"))
	raw := tree.write()

	_, err := Decrypt(raw, Options{Password: "x"})
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

// TestEncryptRejectsUnsupportedStandardAlgorithm covers the eager
// unsupported-algorithm check, before any key material is generated.
func TestEncryptRejectsUnsupportedStandardAlgorithm(t *testing.T) {
	_, err := Encrypt([]byte("x"), Options{Profile: ProfileStandard, Algorithm: Algorithm(99)})
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

// TestCFBTreeNestedStorageRoundTrip exercises the DataSpaces nested-storage
// path directly against the mscfb reader.
func TestCFBTreeNestedStorageRoundTrip(t *testing.T) {
	tree := newCFBTree()
	tree.putStream("EncryptionInfo", []byte("info-bytes"))
	tree.putStream("EncryptedPackage", []byte("package-bytes"))
	tree.putStream("\x06DataSpaces/Version", []byte("version-bytes"))
	raw := tree.write()

	assert.True(t, isCompoundFile(raw))
	info, pkg, err := extractEnvelopeParts(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte("info-bytes"), info)
	assert.Equal(t, []byte("package-bytes"), pkg)
}
