// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHashKnownAlgorithms(t *testing.T) {
	for name, size := range map[string]int{
		"MD4": 16, "MD5": 16, "RIPEMD160": 20, "SHA1": 20,
		"SHA256": 32, "SHA384": 48, "SHA512": 64,
	} {
		h, err := newHash(name)
		require.NoError(t, err, name)
		assert.Equal(t, size, h.Size(), name)
	}
}

func TestNewHashCaseAndDashInsensitive(t *testing.T) {
	a, err := newHash("sha-256")
	require.NoError(t, err)
	b, err := newHash("SHA256")
	require.NoError(t, err)
	assert.Equal(t, a.Size(), b.Size())
}

func TestNewHashUnknown(t *testing.T) {
	_, err := newHash("sha3-256")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestHashSumAndHashSize(t *testing.T) {
	sum, err := hashSum("SHA256", []byte("a"), []byte("b"))
	require.NoError(t, err)
	size, err := hashSize("SHA256")
	require.NoError(t, err)
	assert.Len(t, sum, size)
}

func TestNewHMACUsesNamedAlgorithm(t *testing.T) {
	h, err := newHMAC("SHA512", []byte("key"))
	require.NoError(t, err)
	h.Write([]byte("message"))
	assert.Len(t, h.Sum(nil), 64)

	_, err = newHMAC("unknown", []byte("key"))
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}
