// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package ooxmlcrypt implements the MS-OFFCRYPTO encryption envelope used by
// password-protected Office Open XML documents: both the Standard
// (AES-ECB/SHA-1) and Agile (parameterised, segmented, HMAC-verified)
// profiles, layered over an OLE2 Compound File Binary container.
package ooxmlcrypt

// C1 — public Encrypt/Decrypt API: CFB container assembly/disassembly and
// profile dispatch. Grounded on excelize's Encrypt/Decrypt entry points
// (vendored crypt.go) and the package's extractPart/CFB-walk idiom (crypt.go).

// Decrypt reads an MS-OFFCRYPTO-encrypted OOXML container from raw and
// returns the decrypted package bytes (the plain ZIP/OOXML payload). It
// dispatches on the EncryptionInfo stream found in the container, so
// opt.Profile/Algorithm/Agile* fields are ignored; only opt.Password is used.
func Decrypt(raw []byte, opt Options) ([]byte, error) {
	if !isCompoundFile(raw) {
		return nil, ErrNotEncryptedPackage
	}
	encryptionInfo, encryptedPackage, err := extractEnvelopeParts(raw)
	if err != nil {
		return nil, err
	}
	if encryptionInfo == nil || encryptedPackage == nil {
		return nil, ErrMalformedEnvelope
	}
	profile, err := encryptionMechanism(encryptionInfo)
	if err != nil {
		return nil, err
	}
	switch profile {
	case ProfileStandard:
		return standardDecrypt(encryptionInfo, encryptedPackage, opt.Password)
	case ProfileAgile:
		return agileDecrypt(encryptionInfo, encryptedPackage, opt.Password)
	default:
		return nil, newUnsupportedAlgorithmError("profile", "")
	}
}

// Encrypt wraps cleartext (a plain ZIP/OOXML package) in a freshly built
// MS-OFFCRYPTO envelope, per opt.Profile, and returns the complete OLE2
// compound file bytes.
func Encrypt(cleartext []byte, opt Options) ([]byte, error) {
	opt = opt.withDefaults()

	var encryptionInfo, encryptedPackage []byte
	var err error
	switch opt.Profile {
	case ProfileStandard:
		encryptionInfo, encryptedPackage, err = standardEncrypt(cleartext, opt)
	case ProfileAgile:
		encryptionInfo, encryptedPackage, err = agileEncrypt(cleartext, opt)
	default:
		return nil, newUnsupportedAlgorithmError("profile", "")
	}
	if err != nil {
		return nil, err
	}

	ds := buildDataSpaces()
	tree := newCFBTree()
	tree.putStream("EncryptionInfo", encryptionInfo)
	tree.putStream("EncryptedPackage", encryptedPackage)
	tree.putStream("\x06DataSpaces/Version", ds.version)
	tree.putStream("\x06DataSpaces/DataSpaceMap", ds.dataSpaceMap)
	tree.putStream("\x06DataSpaces/DataSpaceInfo/"+strongEncryptionDataSpace, ds.dataSpaceInfo)
	tree.putStream("\x06DataSpaces/TransformInfo/"+strongEncryptionTransform+"/\x06Primary", ds.transformInfo)
	return tree.write(), nil
}

// IsEncrypted reports whether raw looks like an MS-OFFCRYPTO-wrapped OOXML
// container: an OLE2 compound file carrying both an EncryptionInfo and an
// EncryptedPackage stream. It does not validate the password.
func IsEncrypted(raw []byte) bool {
	if !isCompoundFile(raw) {
		return false
	}
	encryptionInfo, encryptedPackage, err := extractEnvelopeParts(raw)
	return err == nil && encryptionInfo != nil && encryptedPackage != nil
}

