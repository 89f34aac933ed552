// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPassword is returned when a Decrypt's password verifier check
	// fails.
	ErrInvalidPassword = errors.New("ooxmlcrypt: invalid password")

	// ErrIntegrityFailure is returned when an Agile envelope's HMAC does not
	// match its EncryptedPackage body.
	ErrIntegrityFailure = errors.New("ooxmlcrypt: data integrity check failed")

	// ErrMalformedEnvelope is returned when a source CFB container is missing
	// the EncryptionInfo or EncryptedPackage stream.
	ErrMalformedEnvelope = errors.New("ooxmlcrypt: malformed encryption envelope")

	// ErrNotEncryptedPackage is returned when the input does not begin with
	// the OLE2 compound file magic.
	ErrNotEncryptedPackage = errors.New("ooxmlcrypt: not an OLE2 compound file")

	// ErrUnsupportedAlgorithm is returned for any profile, cipher, hash or
	// provider combination this codec does not implement.
	ErrUnsupportedAlgorithm = errors.New("ooxmlcrypt: unsupported algorithm")
)

// newUnsupportedAlgorithmError wraps ErrUnsupportedAlgorithm with the
// offending field and value, mirroring excelize's own
// newCellNameToCoordinatesError-style constructor helpers.
func newUnsupportedAlgorithmError(what, value string) error {
	return fmt.Errorf("%w: %s %q", ErrUnsupportedAlgorithm, what, value)
}

// newIOError wraps an underlying stream or CFB driver failure. I/O errors are
// not part of the taxonomy's sentinel set; they propagate with context
// attached instead.
func newIOError(op string, err error) error {
	return fmt.Errorf("ooxmlcrypt: %s: %w", op, err)
}
