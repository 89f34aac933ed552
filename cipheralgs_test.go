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

func TestNewBlockCipherKnownAlgorithms(t *testing.T) {
	aesKey := make([]byte, 16)
	block, err := newBlockCipher("AES", aesKey)
	require.NoError(t, err)
	assert.Equal(t, 16, block.BlockSize())

	desKey := make([]byte, 8)
	block, err = newBlockCipher("DES", desKey)
	require.NoError(t, err)
	assert.Equal(t, 8, block.BlockSize())

	tripleKey := make([]byte, 24)
	block, err = newBlockCipher("3DES", tripleKey)
	require.NoError(t, err)
	assert.Equal(t, 8, block.BlockSize())
}

func TestNewBlockCipherUnknown(t *testing.T) {
	_, err := newBlockCipher("blowfish", make([]byte, 16))
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestNormalizeTripleDESKeyExpandsTwoKeyForm(t *testing.T) {
	key := make([]byte, 16)
	for i := range key {
		key[i] = byte(i)
	}
	expanded := normalizeTripleDESKey("3DES112", key)
	require.Len(t, expanded, 24)
	assert.True(t, bytes.Equal(expanded[16:], key[:8]))
}

func TestCFBBlockModeRoundTrip(t *testing.T) {
	block, err := newBlockCipher("AES", make([]byte, 16))
	require.NoError(t, err)
	iv := make([]byte, 16)

	plain := bytes.Repeat([]byte{0x42}, 48)
	enc := newCFBBlockMode(block, iv, true)
	cipherText := make([]byte, len(plain))
	enc.CryptBlocks(cipherText, plain)
	assert.NotEqual(t, plain, cipherText)

	dec := newCFBBlockMode(block, iv, false)
	recovered := make([]byte, len(cipherText))
	dec.CryptBlocks(recovered, cipherText)
	assert.Equal(t, plain, recovered)
}
