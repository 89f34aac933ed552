// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"strings"
)

// cspName is the exact literal cryptographic provider name Office readers
// require for the Standard profile, encoded null-terminated UTF-16LE
// (spec.md §9: "Office readers reject variations").
const cspName = "Microsoft Enhanced RSA and AES Cryptographic Provider\x00"

// fCryptoAPI / fAES / fExternal flag bits (MS-OFFCRYPTO §2.3.4.5/§2.3.4.6).
const (
	fCryptoAPI = 0x04
	fAES       = 0x20
	fExternal  = 0x10
)

// standardHeader mirrors excelize's StandardEncryptionHeader
// (EncryptionHeader structure, MS-OFFCRYPTO §2.3.4.6).
type standardHeader struct {
	Flags        uint32
	SizeExtra    uint32
	AlgID        uint32
	AlgIDHash    uint32
	KeySize      uint32
	ProviderType uint32
	Reserved1    uint32
	Reserved2    uint32
	CspName      string
}

// standardVerifier mirrors excelize's StandardEncryptionVerifier
// (EncryptionVerifier structure, MS-OFFCRYPTO §2.3.4.7).
type standardVerifier struct {
	SaltSize              uint32
	Salt                  []byte
	EncryptedVerifier     []byte
	VerifierHashSize      uint32
	EncryptedVerifierHash []byte
}

// parseStandardEncryptionInfo parses the whole Standard-profile binary
// EncryptionInfo stream (including its 8-byte version/flags prefix, which is
// skipped) into a header and verifier.
func parseStandardEncryptionInfo(buf []byte) (standardHeader, standardVerifier, error) {
	if len(buf) < 12 {
		return standardHeader{}, standardVerifier{}, ErrMalformedEnvelope
	}
	headerSize := binary.LittleEndian.Uint32(buf[8:12])
	if uint32(len(buf)) < 12+headerSize || headerSize < 32 {
		return standardHeader{}, standardVerifier{}, ErrMalformedEnvelope
	}
	block := buf[12 : 12+headerSize]
	// CspName is UTF-16LE up to and including its NUL terminator.
	var csp []rune
	for i := 32; i+1 < len(block); i += 2 {
		r := rune(binary.LittleEndian.Uint16(block[i : i+2]))
		csp = append(csp, r)
		if r == 0 {
			break
		}
	}
	header := standardHeader{
		Flags:        binary.LittleEndian.Uint32(block[0:4]),
		SizeExtra:    binary.LittleEndian.Uint32(block[4:8]),
		AlgID:        binary.LittleEndian.Uint32(block[8:12]),
		AlgIDHash:    binary.LittleEndian.Uint32(block[12:16]),
		KeySize:      binary.LittleEndian.Uint32(block[16:20]),
		ProviderType: binary.LittleEndian.Uint32(block[20:24]),
		Reserved1:    binary.LittleEndian.Uint32(block[24:28]),
		Reserved2:    binary.LittleEndian.Uint32(block[28:32]),
		CspName:      string(csp),
	}
	if header.Flags&fExternal != 0 {
		return standardHeader{}, standardVerifier{}, newUnsupportedAlgorithmError("provider", "external (fExternal)")
	}
	rest := buf[12+headerSize:]
	if len(rest) < 40 {
		return standardHeader{}, standardVerifier{}, ErrMalformedEnvelope
	}
	verifierHashSize := binary.LittleEndian.Uint32(rest[36:40])
	end := 40 + int(verifierHashSize)
	if len(rest) < end {
		return standardHeader{}, standardVerifier{}, ErrMalformedEnvelope
	}
	verifier := standardVerifier{
		SaltSize:              binary.LittleEndian.Uint32(rest[0:4]),
		Salt:                  rest[4:20],
		EncryptedVerifier:     rest[20:36],
		VerifierHashSize:      verifierHashSize,
		EncryptedVerifierHash: rest[40:end],
	}
	return header, verifier, nil
}

// writeStandardEncryptionInfo emits the full Standard-profile binary
// EncryptionInfo stream: the {4,2,flags} prefix, the EncryptionHeader and the
// EncryptionVerifier, per MS-OFFCRYPTO §2.3.4.5-7.
func writeStandardEncryptionInfo(header standardHeader, verifier standardVerifier) []byte {
	headerBody := make([]byte, 0, 32+len(header.CspName)*2+2)
	headerBody = append(headerBody, uint32le(header.Flags)...)
	headerBody = append(headerBody, uint32le(header.SizeExtra)...)
	headerBody = append(headerBody, uint32le(header.AlgID)...)
	headerBody = append(headerBody, uint32le(header.AlgIDHash)...)
	headerBody = append(headerBody, uint32le(header.KeySize)...)
	headerBody = append(headerBody, uint32le(header.ProviderType)...)
	headerBody = append(headerBody, uint32le(header.Reserved1)...)
	headerBody = append(headerBody, uint32le(header.Reserved2)...)
	nameBytes, _ := passwordToUTF16LEName(header.CspName)
	headerBody = append(headerBody, nameBytes...)
	for len(headerBody)%4 != 0 { // pad the whole header to a 4-byte boundary
		headerBody = append(headerBody, 0)
	}

	out := make([]byte, 0, 12+len(headerBody)+40+len(verifier.EncryptedVerifierHash))
	out = append(out, uint32le4(4, 2)...)
	out = append(out, uint32le(fCryptoAPI|fAES)...)
	out = append(out, uint32le(uint32(len(headerBody)))...)
	out = append(out, headerBody...)
	out = append(out, uint32le(verifier.SaltSize)...)
	out = append(out, verifier.Salt...)
	out = append(out, verifier.EncryptedVerifier...)
	out = append(out, uint32le(verifier.VerifierHashSize)...)
	out = append(out, verifier.EncryptedVerifierHash...)
	return out
}

// uint32le4 packs the two little-endian uint16 version fields (major, minor)
// that open both the Standard and the Agile EncryptionInfo stream.
func uint32le4(major, minor uint16) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:2], major)
	binary.LittleEndian.PutUint16(buf[2:4], minor)
	return buf
}

// passwordToUTF16LEName encodes a plain Go string (already containing any
// trailing NUL) as UTF-16LE, for header string fields rather than passwords.
func passwordToUTF16LEName(s string) ([]byte, error) {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		out = append(out, byte(r), 0)
	}
	return out, nil
}

// agile XML namespaces (MS-OFFCRYPTO §2.3.4.10).
const (
	agileNamespace         = "http://schemas.microsoft.com/office/2006/encryption"
	agilePasswordNamespace = "http://schemas.microsoft.com/office/2006/keyEncryptor/password"
)

// agileKeyData mirrors excelize's KeyData.
type agileKeyData struct {
	SaltSize        int
	BlockSize       int
	KeyBits         int
	HashSize        int
	CipherAlgorithm string
	CipherChaining  string
	HashAlgorithm   string
	SaltValue       []byte
}

// agileDataIntegrity mirrors excelize's DataIntegrity.
type agileDataIntegrity struct {
	EncryptedHmacKey   []byte
	EncryptedHmacValue []byte
}

// agileKeyEncryptor mirrors excelize's KeyEncryptor/EncryptedKey, flattened.
type agileKeyEncryptor struct {
	SpinCount                  int
	SaltSize                   int
	BlockSize                  int
	KeyBits                    int
	HashSize                   int
	CipherAlgorithm            string
	CipherChaining             string
	HashAlgorithm              string
	SaltValue                  []byte
	EncryptedVerifierHashInput []byte
	EncryptedVerifierHashValue []byte
	EncryptedKeyValue          []byte
}

// agileDescriptor is the parsed, in-memory form of the Agile XML descriptor
// (spec.md "Descriptor as data": parsed once, then all crypto flows consult
// this record — no re-reading XML mid-flow).
type agileDescriptor struct {
	KeyData       agileKeyData
	DataIntegrity agileDataIntegrity
	KeyEncryptor  agileKeyEncryptor
}

// xmlAgileDoc is the encoding/xml-tagged shape used only for Unmarshal,
// mirroring excelize's Encryption/KeyData/KeyEncryptors/KeyEncryptor/
// EncryptedKey struct family (crypt.go). Unknown elements/attributes are
// ignored automatically by encoding/xml, satisfying spec.md §4.4.
type xmlAgileDoc struct {
	XMLName       xml.Name         `xml:"encryption"`
	KeyData       xmlKeyData       `xml:"keyData"`
	DataIntegrity xmlDataIntegrity `xml:"dataIntegrity"`
	KeyEncryptors struct {
		KeyEncryptor []xmlKeyEncryptor `xml:"keyEncryptor"`
	} `xml:"keyEncryptors"`
}

type xmlKeyData struct {
	SaltSize        int    `xml:"saltSize,attr"`
	BlockSize       int    `xml:"blockSize,attr"`
	KeyBits         int    `xml:"keyBits,attr"`
	HashSize        int    `xml:"hashSize,attr"`
	CipherAlgorithm string `xml:"cipherAlgorithm,attr"`
	CipherChaining  string `xml:"cipherChaining,attr"`
	HashAlgorithm   string `xml:"hashAlgorithm,attr"`
	SaltValue       string `xml:"saltValue,attr"`
}

type xmlDataIntegrity struct {
	EncryptedHmacKey   string `xml:"encryptedHmacKey,attr"`
	EncryptedHmacValue string `xml:"encryptedHmacValue,attr"`
}

type xmlKeyEncryptor struct {
	URI          string `xml:"uri,attr"`
	EncryptedKey struct {
		SpinCount                  int    `xml:"spinCount,attr"`
		SaltSize                   int    `xml:"saltSize,attr"`
		BlockSize                  int    `xml:"blockSize,attr"`
		KeyBits                    int    `xml:"keyBits,attr"`
		HashSize                   int    `xml:"hashSize,attr"`
		CipherAlgorithm            string `xml:"cipherAlgorithm,attr"`
		CipherChaining             string `xml:"cipherChaining,attr"`
		HashAlgorithm              string `xml:"hashAlgorithm,attr"`
		SaltValue                  string `xml:"saltValue,attr"`
		EncryptedVerifierHashInput string `xml:"encryptedVerifierHashInput,attr"`
		EncryptedVerifierHashValue string `xml:"encryptedVerifierHashValue,attr"`
		EncryptedKeyValue          string `xml:"encryptedKeyValue,attr"`
	} `xml:"encryptedKey"`
}

// parseAgileEncryptionInfo parses the Agile XML descriptor (the 8-byte
// version/reserved prefix already consumed by the caller) into a
// agileDescriptor.
func parseAgileEncryptionInfo(xmlBuf []byte) (agileDescriptor, error) {
	var doc xmlAgileDoc
	if err := xml.Unmarshal(xmlBuf, &doc); err != nil {
		return agileDescriptor{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if len(doc.KeyEncryptors.KeyEncryptor) == 0 {
		return agileDescriptor{}, ErrMalformedEnvelope
	}
	ke := doc.KeyEncryptors.KeyEncryptor[0]
	decode := func(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }

	keyDataSalt, err := decode(doc.KeyData.SaltValue)
	if err != nil {
		return agileDescriptor{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	hmacKey, err := decode(doc.DataIntegrity.EncryptedHmacKey)
	if err != nil {
		return agileDescriptor{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	hmacValue, err := decode(doc.DataIntegrity.EncryptedHmacValue)
	if err != nil {
		return agileDescriptor{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	keSalt, err := decode(ke.EncryptedKey.SaltValue)
	if err != nil {
		return agileDescriptor{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	verifierHashInput, err := decode(ke.EncryptedKey.EncryptedVerifierHashInput)
	if err != nil {
		return agileDescriptor{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	verifierHashValue, err := decode(ke.EncryptedKey.EncryptedVerifierHashValue)
	if err != nil {
		return agileDescriptor{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	keyValue, err := decode(ke.EncryptedKey.EncryptedKeyValue)
	if err != nil {
		return agileDescriptor{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	return agileDescriptor{
		KeyData: agileKeyData{
			SaltSize:        doc.KeyData.SaltSize,
			BlockSize:       doc.KeyData.BlockSize,
			KeyBits:         doc.KeyData.KeyBits,
			HashSize:        doc.KeyData.HashSize,
			CipherAlgorithm: doc.KeyData.CipherAlgorithm,
			CipherChaining:  doc.KeyData.CipherChaining,
			HashAlgorithm:   doc.KeyData.HashAlgorithm,
			SaltValue:       keyDataSalt,
		},
		DataIntegrity: agileDataIntegrity{
			EncryptedHmacKey:   hmacKey,
			EncryptedHmacValue: hmacValue,
		},
		KeyEncryptor: agileKeyEncryptor{
			SpinCount:                  ke.EncryptedKey.SpinCount,
			SaltSize:                   ke.EncryptedKey.SaltSize,
			BlockSize:                  ke.EncryptedKey.BlockSize,
			KeyBits:                    ke.EncryptedKey.KeyBits,
			HashSize:                   ke.EncryptedKey.HashSize,
			CipherAlgorithm:            ke.EncryptedKey.CipherAlgorithm,
			CipherChaining:             ke.EncryptedKey.CipherChaining,
			HashAlgorithm:              ke.EncryptedKey.HashAlgorithm,
			SaltValue:                  keSalt,
			EncryptedVerifierHashInput: verifierHashInput,
			EncryptedVerifierHashValue: verifierHashValue,
			EncryptedKeyValue:          keyValue,
		},
	}, nil
}

// writeAgileEncryptionInfo emits the canonical Agile EncryptionInfo stream:
// the {4,4,0x40} prefix followed by deterministic UTF-8 XML (fixed attribute
// order, standard base64 alphabet), per spec.md §4.4/§9.
func writeAgileEncryptionInfo(d agileDescriptor) []byte {
	b64 := base64.StdEncoding.EncodeToString

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	fmt.Fprintf(&sb, `<encryption xmlns="%s" xmlns:p="%s">`+"\n", agileNamespace, agilePasswordNamespace)
	fmt.Fprintf(&sb, `<keyData saltSize="%d" blockSize="%d" keyBits="%d" hashSize="%d" cipherAlgorithm="%s" cipherChaining="%s" hashAlgorithm="%s" saltValue="%s"/>`+"\n",
		d.KeyData.SaltSize, d.KeyData.BlockSize, d.KeyData.KeyBits, d.KeyData.HashSize,
		d.KeyData.CipherAlgorithm, d.KeyData.CipherChaining, d.KeyData.HashAlgorithm, b64(d.KeyData.SaltValue))
	fmt.Fprintf(&sb, `<dataIntegrity encryptedHmacKey="%s" encryptedHmacValue="%s"/>`+"\n",
		b64(d.DataIntegrity.EncryptedHmacKey), b64(d.DataIntegrity.EncryptedHmacValue))
	sb.WriteString("<keyEncryptors>\n")
	fmt.Fprintf(&sb, `<keyEncryptor uri="%s">`+"\n", agilePasswordNamespace)
	ke := d.KeyEncryptor
	fmt.Fprintf(&sb, `<p:encryptedKey spinCount="%d" saltSize="%d" blockSize="%d" keyBits="%d" hashSize="%d" cipherAlgorithm="%s" cipherChaining="%s" hashAlgorithm="%s" saltValue="%s" encryptedVerifierHashInput="%s" encryptedVerifierHashValue="%s" encryptedKeyValue="%s"/>`+"\n",
		ke.SpinCount, ke.SaltSize, ke.BlockSize, ke.KeyBits, ke.HashSize,
		ke.CipherAlgorithm, ke.CipherChaining, ke.HashAlgorithm,
		b64(ke.SaltValue), b64(ke.EncryptedVerifierHashInput), b64(ke.EncryptedVerifierHashValue), b64(ke.EncryptedKeyValue))
	sb.WriteString("</keyEncryptor>\n</keyEncryptors>\n</encryption>")

	out := make([]byte, 0, 8+sb.Len())
	out = append(out, uint32le4(4, 4)...)
	out = append(out, uint32le(0x40)...)
	out = append(out, []byte(sb.String())...)
	return out
}

// encryptionMechanism dispatches on the 8-byte EncryptionInfo prefix per
// spec.md §4.1's dispatch rule.
func encryptionMechanism(buf []byte) (Profile, error) {
	if len(buf) < 8 {
		return 0, ErrMalformedEnvelope
	}
	major := binary.LittleEndian.Uint16(buf[0:2])
	minor := binary.LittleEndian.Uint16(buf[2:4])
	flags := binary.LittleEndian.Uint32(buf[4:8])
	if major == 4 && minor == 4 && flags == 0x40 {
		return ProfileAgile, nil
	}
	if major >= 2 && major <= 4 && minor == 2 {
		return ProfileStandard, nil
	}
	return 0, newUnsupportedAlgorithmError("encryption mechanism", fmt.Sprintf("major=%d minor=%d", major, minor))
}
