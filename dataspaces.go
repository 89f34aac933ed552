// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

// C5 — DataSpaces synthesiser. Emits the fixed byte layouts of the
// Version/DataSpaceMap/DataSpaceInfo/TransformInfo streams required under
// \x06DataSpaces (spec.md §4.5/§6.2). No teacher revision emits this tree (it
// only ever decrypted pre-existing envelopes); built from the byte-builder
// idiom excelize's vendored cfb.writeUint16/32/64/writeStrings helpers use,
// applied to this fixed schema instead of ad hoc header writing.

const (
	transformName  = "Microsoft.Container.EncryptionTransform"
	transformCLSID = "{FF9A3F03-56EF-4613-BDD5-5A41C1D07246}"

	encryptedPackageName      = "EncryptedPackage"
	strongEncryptionDataSpace = "StrongEncryptionDataSpace"
	strongEncryptionTransform = "StrongEncryptionTransform"
	dataSpacesVersionFeature  = "Microsoft.Container.DataSpaces"
)

// utf16leBytes encodes s as UTF-16LE without any terminator or padding.
func utf16leBytes(s string) []byte {
	b, _ := passwordToUTF16LEName(s)
	return b
}

// dataSpacesStreams holds the four fixed-layout streams/sub-paths that must
// be written under the \x06DataSpaces storage.
type dataSpacesStreams struct {
	version       []byte // \x06DataSpaces/Version
	dataSpaceMap  []byte // \x06DataSpaces/DataSpaceMap
	dataSpaceInfo []byte // \x06DataSpaces/DataSpaceInfo/StrongEncryptionDataSpace
	transformInfo []byte // \x06DataSpaces/TransformInfo/StrongEncryptionTransform/\x06Primary
}

// buildDataSpaces synthesises the fixed DataSpaces sub-tree content.
func buildDataSpaces() dataSpacesStreams {
	return dataSpacesStreams{
		version:       buildVersionStream(),
		dataSpaceMap:  buildDataSpaceMapStream(),
		dataSpaceInfo: buildDataSpaceInfoStream(),
		transformInfo: buildTransformInfoStream(),
	}
}

// buildVersionStream emits \x06DataSpaces/Version.
func buildVersionStream() []byte {
	var buf []byte
	buf = append(buf, 0x3C, 0x00) // i16 major = 0x3C
	buf = append(buf, 0x00, 0x00) // i16 minor = 0
	buf = append(buf, utf16leBytes(dataSpacesVersionFeature)...)
	buf = append(buf, uint32le(1)...) // reader
	buf = append(buf, uint32le(1)...) // updater
	buf = append(buf, uint32le(1)...) // writer
	return buf
}

// buildDataSpaceMapStream emits \x06DataSpaces/DataSpaceMap.
func buildDataSpaceMapStream() []byte {
	name := utf16leBytes(encryptedPackageName)
	dsName := utf16lePaddedName(strongEncryptionDataSpace)

	totalLen := 0x16 + 2*(len(encryptedPackageName)+len(strongEncryptionDataSpace))

	var buf []byte
	buf = append(buf, uint32le(8)...) // headerLen
	buf = append(buf, uint32le(1)...) // entryCount
	buf = append(buf, uint32le(uint32(totalLen))...)
	buf = append(buf, uint32le(1)...) // componentRefCount
	buf = append(buf, uint32le(0)...) // streamRef
	buf = append(buf, uint32le(uint32(len(name)))...)
	buf = append(buf, name...)
	buf = append(buf, uint32le(uint32(len(dsName)))...)
	buf = append(buf, dsName...)
	return buf
}

// utf16lePaddedName encodes s with a trailing NUL terminator (2 bytes) and
// then pads with zero bytes until the length is a multiple of 4, for the
// DataSpaceMap/DataSpaceInfo/TransformInfo name fields.
func utf16lePaddedName(s string) []byte {
	b := append(utf16leBytes(s), 0, 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// buildDataSpaceInfoStream emits
// \x06DataSpaces/DataSpaceInfo/StrongEncryptionDataSpace.
func buildDataSpaceInfoStream() []byte {
	name := utf16lePaddedName(strongEncryptionTransform)
	var buf []byte
	buf = append(buf, uint32le(8)...) // headerLen
	buf = append(buf, uint32le(1)...) // entryCount
	buf = append(buf, uint32le(uint32(len(name)))...)
	buf = append(buf, name...)
	return buf
}

// buildTransformInfoStream emits
// \x06DataSpaces/TransformInfo/StrongEncryptionTransform/\x06Primary.
func buildTransformInfoStream() []byte {
	clsID := utf16lePaddedName(transformCLSID)
	name := utf16lePaddedName(transformName)

	var buf []byte
	buf = append(buf, uint32le(uint32(len(clsID)+4))...) // transformLength (clsID length + itself)
	buf = append(buf, clsID...)
	buf = append(buf, uint32le(uint32(len(name)))...)
	buf = append(buf, name...)
	buf = append(buf, uint32le(1)...) // reader version
	buf = append(buf, uint32le(1)...) // updater version
	buf = append(buf, uint32le(1)...) // writer version
	buf = append(buf, uint32le(0)...)
	buf = append(buf, uint32le(0)...)
	buf = append(buf, uint32le(0)...)
	buf = append(buf, uint32le(0)...) // cipherMode
	buf = append(buf, uint32le(4)...) // reserved
	return buf
}
