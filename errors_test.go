// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUnsupportedAlgorithmErrorWraps(t *testing.T) {
	err := newUnsupportedAlgorithmError("cipher algorithm", "blowfish")
	assert.True(t, errors.Is(err, ErrUnsupportedAlgorithm))
	assert.Contains(t, err.Error(), "blowfish")
}

func TestNewIOErrorWrapsUnderlying(t *testing.T) {
	underlying := errors.New("disk full")
	err := newIOError("generate salt", underlying)
	assert.True(t, errors.Is(err, underlying))
	assert.Contains(t, err.Error(), "generate salt")
}
