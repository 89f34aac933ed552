// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashSheetProtectionPassword(t *testing.T) {
	assert.Equal(t, uint16(0xCBEB), HashSheetProtectionPassword("test"))
	assert.Equal(t, HashSheetProtectionPassword("test"), HashSheetProtectionPassword("test"))
	assert.NotEqual(t, HashSheetProtectionPassword("test"), HashSheetProtectionPassword("Test"))
	assert.NotEqual(t, uint16(0), HashSheetProtectionPassword(""))
}
