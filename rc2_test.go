// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRC2EncryptDecryptRoundTrip(t *testing.T) {
	key := []byte("0123456789ABCDEF")
	c, err := newRC2Cipher(key)
	require.NoError(t, err)
	assert.Equal(t, rc2BlockSize, c.BlockSize())

	plain := []byte("abcdefgh")
	cipherText := make([]byte, rc2BlockSize)
	c.Encrypt(cipherText, plain)
	assert.NotEqual(t, plain, cipherText)

	recovered := make([]byte, rc2BlockSize)
	c.Decrypt(recovered, cipherText)
	assert.Equal(t, plain, recovered)
}

func TestRC2RejectsOversizedKey(t *testing.T) {
	_, err := newRC2Cipher(make([]byte, 129))
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}
