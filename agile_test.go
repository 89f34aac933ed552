// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAgileBaseKeyDeterministic covers the §8 invariant that the Agile base
// hash is a pure function of (salt, password, spinCount).
func TestAgileBaseKeyDeterministic(t *testing.T) {
	salt := bytes.Repeat([]byte{0x07}, 16)
	h1, err := agileBaseKey("SHA512", salt, "secret", 1000)
	require.NoError(t, err)
	h2, err := agileBaseKey("SHA512", salt, "secret", 1000)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

// TestAgileEncryptDecryptRoundTrip covers seed vector S3: Agile
// AES-256/SHA-512/CBC, password "secret", 10,000 bytes of 0xAB.
func TestAgileEncryptDecryptRoundTrip(t *testing.T) {
	cleartext := bytes.Repeat([]byte{0xAB}, 10000)
	opt := Options{
		Password:       "secret",
		Profile:        ProfileAgile,
		AgileCipher:    CipherAES,
		AgileChaining:  ChainingCBC,
		AgileHash:      HashSHA512,
		AgileKeyBits:   256,
		AgileSpinCount: 1000, // smaller than the 100,000 production default to keep the test fast
	}
	infoStream, pkgStream, err := agileEncrypt(cleartext, opt)
	require.NoError(t, err)

	// 8-byte length prefix + three 4096-byte segments rounded up to the
	// 16-byte AES block size: 4096, 4096, 1808 all already block-aligned.
	assert.Equal(t, 8+4096+4096+1808, len(pkgStream))

	plain, err := agileDecrypt(infoStream, pkgStream, "secret")
	require.NoError(t, err)
	assert.Equal(t, cleartext, plain)

	_, err = agileDecrypt(infoStream, pkgStream, "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

// TestAgileIntegrityFailureOnBitFlip covers round-trip law 4: flipping a
// single bit of EncryptedPackage must fail with ErrIntegrityFailure, never
// silently decrypt or report ErrInvalidPassword.
func TestAgileIntegrityFailureOnBitFlip(t *testing.T) {
	opt := Options{
		Password:       "secret",
		Profile:        ProfileAgile,
		AgileSpinCount: 1000,
	}.withDefaults()
	infoStream, pkgStream, err := agileEncrypt([]byte("hello agile world"), opt)
	require.NoError(t, err)

	corrupted := append([]byte(nil), pkgStream...)
	corrupted[len(corrupted)-1] ^= 0x01

	_, err = agileDecrypt(infoStream, corrupted, "secret")
	assert.ErrorIs(t, err, ErrIntegrityFailure)
}

// TestAgileEmptyPasswordUsesVelvetSweatshop covers round-trip law 3.
func TestAgileEmptyPasswordUsesVelvetSweatshop(t *testing.T) {
	opt := Options{Profile: ProfileAgile, AgileSpinCount: 1000}.withDefaults()
	infoStream, pkgStream, err := agileEncrypt([]byte("payload"), opt)
	require.NoError(t, err)

	plain, err := agileDecrypt(infoStream, pkgStream, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), plain)

	plainSweatshop, err := agileDecrypt(infoStream, pkgStream, velvetSweatshop)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), plainSweatshop)
}

// TestAgileDecryptExternalReferenceVector covers seed vector S4: decrypting
// an EncryptionInfo/EncryptedPackage pair produced by a conformant writer
// independent of this package. The fixture under test/ was generated with
// Python's hashlib (SHA-512) and the openssl CLI (AES-256-CBC), not this
// package's own Encrypt, so this checks interoperability rather than a
// self-produced round trip; see test/gen_agile_reference.py.
func TestAgileDecryptExternalReferenceVector(t *testing.T) {
	infoStream, err := os.ReadFile(filepath.Join("test", "agile_reference.EncryptionInfo.bin"))
	require.NoError(t, err)
	pkgStream, err := os.ReadFile(filepath.Join("test", "agile_reference.EncryptedPackage.bin"))
	require.NoError(t, err)

	want := []byte("This is the reference cleartext payload used by the external " +
		"MS-OFFCRYPTO Agile interoperability fixture.\n")

	got, err := agileDecrypt(infoStream, pkgStream, "OfficeAgileSecret!")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = agileDecrypt(infoStream, pkgStream, "wrong password")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestAgileSegmentIVPureFunction(t *testing.T) {
	salt := bytes.Repeat([]byte{0x01}, 16)
	iv1, err := agileSegmentIV("SHA512", salt, 3, 16)
	require.NoError(t, err)
	iv2, err := agileSegmentIV("SHA512", salt, 3, 16)
	require.NoError(t, err)
	assert.Equal(t, iv1, iv2)

	iv3, err := agileSegmentIV("SHA512", salt, 4, 16)
	require.NoError(t, err)
	assert.NotEqual(t, iv1, iv3)
}
