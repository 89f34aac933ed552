// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

// CFB enumerate/extract wrapper over github.com/richardlehane/mscfb,
// grounded on excelize's extractPart/oleIdentifier (crypt.go).

import (
	"bytes"
	"io"

	"github.com/richardlehane/mscfb"
)

// oleIdentifier is the OLE2 compound-file magic (spec.md §6.1).
var oleIdentifier = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// isCompoundFile reports whether raw begins with the OLE2 magic.
func isCompoundFile(raw []byte) bool {
	return len(raw) >= len(oleIdentifier) && bytes.Equal(raw[:len(oleIdentifier)], oleIdentifier)
}

// extractEnvelopeParts reads the CFB structure in raw and returns the
// EncryptionInfo and EncryptedPackage stream contents. Either may be nil if
// absent.
func extractEnvelopeParts(raw []byte) (encryptionInfo, encryptedPackage []byte, err error) {
	doc, err := mscfb.New(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, newIOError("open compound file", err)
	}
	for entry, entryErr := doc.Next(); entryErr == nil; entry, entryErr = doc.Next() {
		switch entry.Name {
		case "EncryptionInfo":
			buf := make([]byte, entry.Size)
			if _, readErr := io.ReadFull(doc, buf); readErr == nil || readErr == io.ErrUnexpectedEOF {
				encryptionInfo = buf
			}
		case "EncryptedPackage":
			buf := make([]byte, entry.Size)
			if _, readErr := io.ReadFull(doc, buf); readErr == nil || readErr == io.ErrUnexpectedEOF {
				encryptedPackage = buf
			}
		}
	}
	return encryptionInfo, encryptedPackage, nil
}
