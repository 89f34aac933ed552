// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

// C3 — Standard profile: fixed AES-ECB with SHA-1 iterated key derivation
// (MS-OFFCRYPTO §2.3.4.6-8). Grounded on excelize's
// standardConvertPasswdToKey/standardXORBytes/standardEncryptionVerifier
// (crypt.go) and the vendored encryption.encrypt/standardKeyEncryption
// (vendored crypt.go), generalised to a symmetric encrypt+decrypt pair with
// configurable key size instead of a hardcoded 128-bit AES-ECB constant.

import (
	"crypto/aes"
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
)

const standardSpinCount = 50000

// standardProviderName is the exact literal string Office readers require
// (spec.md §9), including its trailing NUL.
const standardProviderName = cspName

// standardDeriveKey implements MS-OFFCRYPTO §2.3.4.7's iterated SHA-1 KDF:
// h0 = SHA1(salt||password), 50,000 rounds of hi+1 = SHA1(i||hi), one more
// round appending block index 0, then the ipad/opad expansion to the
// required key length.
func standardDeriveKey(salt []byte, password string, keyBits int) ([]byte, error) {
	base, err := saltAndPassword(salt, password)
	if err != nil {
		return nil, err
	}
	h := sha1Sum(base)
	for i := 0; i < standardSpinCount; i++ {
		h = sha1Sum(append(uint32le(uint32(i)), h...))
	}
	hFinal := sha1Sum(append(h, uint32le(0)...))

	cbHash := sha1.Size
	requiredLen := keyBits / 8

	buf1 := xorIntoPad(hFinal, 0x36, cbHash)
	x1 := sha1Sum(buf1)
	if requiredLen <= cbHash {
		return x1[:requiredLen], nil
	}
	buf2 := xorIntoPad(hFinal, 0x5C, cbHash)
	x2 := sha1Sum(buf2)
	return append(append([]byte{}, x1...), x2...)[:requiredLen], nil
}

// xorIntoPad XORs hFinal into the first cbHash bytes of a 64-byte buffer
// filled with fill, mirroring excelize's standardXORBytes usage.
func xorIntoPad(hFinal []byte, fill byte, cbHash int) []byte {
	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = fill
	}
	for i := 0; i < cbHash && i < len(hFinal); i++ {
		buf[i] ^= hFinal[i]
	}
	return buf
}

func sha1Sum(b []byte) []byte {
	sum := sha1.Sum(b)
	return sum[:]
}

// standardEncrypt implements the full Standard-profile Encrypt path: key
// derivation, verifier construction, AES-ECB body encryption, and
// EncryptionInfo assembly.
func standardEncrypt(cleartext []byte, opt Options) (encryptionInfoStream, encryptedPackageStream []byte, err error) {
	if opt.Algorithm != AlgorithmAES128 && opt.Algorithm != AlgorithmAES192 && opt.Algorithm != AlgorithmAES256 {
		return nil, nil, newUnsupportedAlgorithmError("standard algorithm", "")
	}
	keyBits := opt.Algorithm.keyBits()

	salt := make([]byte, 16)
	if _, err = rand.Read(salt); err != nil {
		return nil, nil, newIOError("generate salt", err)
	}
	key, err := standardDeriveKey(salt, opt.Password, keyBits)
	if err != nil {
		return nil, nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}

	verifier := make([]byte, 16)
	if _, err = rand.Read(verifier); err != nil {
		return nil, nil, newIOError("generate verifier", err)
	}
	verifierHash := sha1Sum(verifier)

	encryptedVerifier := make([]byte, 16)
	block.Encrypt(encryptedVerifier, verifier)

	paddedHash := fixHashSize(verifierHash, 32, 0x00)
	encryptedVerifierHash := make([]byte, 32)
	block.Encrypt(encryptedVerifierHash[:16], paddedHash[:16])
	block.Encrypt(encryptedVerifierHash[16:], paddedHash[16:])

	header := standardHeader{
		Flags:        fCryptoAPI | fAES,
		AlgID:        opt.Algorithm.algID(),
		AlgIDHash:    0x8004, // SHA-1
		KeySize:      uint32(keyBits),
		ProviderType: 0x18, // AES
		CspName:      standardProviderName,
	}
	ver := standardVerifier{
		SaltSize:              16,
		Salt:                  salt,
		EncryptedVerifier:     encryptedVerifier,
		VerifierHashSize:      0x20,
		EncryptedVerifierHash: encryptedVerifierHash,
	}
	encryptionInfoStream = writeStandardEncryptionInfo(header, ver)

	body := standardEncryptBody(block, cleartext)
	encryptedPackageStream = append(uint64le(uint64(len(cleartext))), body...)
	return encryptionInfoStream, encryptedPackageStream, nil
}

// standardEncryptBody ECB-encrypts cleartext, zero-padding the final block.
func standardEncryptBody(block interface{ Encrypt(dst, src []byte) }, cleartext []byte) []byte {
	bs := 16
	padded := len(cleartext)
	if r := padded % bs; r != 0 {
		padded += bs - r
	}
	in := make([]byte, padded)
	copy(in, cleartext)
	out := make([]byte, padded)
	for i := 0; i < padded; i += bs {
		block.Encrypt(out[i:i+bs], in[i:i+bs])
	}
	return out
}

// standardDecrypt implements the full Standard-profile Decrypt path:
// EncryptionInfo parse, key derivation, verifier validation, AES-ECB body
// decryption and length truncation.
func standardDecrypt(encryptionInfoBuf, encryptedPackageBuf []byte, password string) ([]byte, error) {
	header, verifier, err := parseStandardEncryptionInfo(encryptionInfoBuf)
	if err != nil {
		return nil, err
	}
	if header.AlgID != 0x660E && header.AlgID != 0x660F && header.AlgID != 0x6610 {
		return nil, newUnsupportedAlgorithmError("standard algID", "")
	}
	key, err := standardDeriveKey(verifier.Salt, password, int(header.KeySize))
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	decryptedVerifier := make([]byte, 16)
	block.Decrypt(decryptedVerifier, verifier.EncryptedVerifier)
	decryptedHashFirstBlock := make([]byte, 16)
	if len(verifier.EncryptedVerifierHash) < 16 {
		return nil, ErrMalformedEnvelope
	}
	block.Decrypt(decryptedHashFirstBlock, verifier.EncryptedVerifierHash[:16])

	expectedHash := sha1Sum(decryptedVerifier)
	if !constantTimeEqual(expectedHash[:16], decryptedHashFirstBlock[:16]) {
		return nil, ErrInvalidPassword
	}

	if len(encryptedPackageBuf) < 8 {
		return nil, ErrMalformedEnvelope
	}
	cleartextSize := binary.LittleEndian.Uint64(encryptedPackageBuf[:8])
	ciphertext := encryptedPackageBuf[8:]
	if len(ciphertext)%16 != 0 {
		return nil, ErrMalformedEnvelope
	}
	plain := make([]byte, len(ciphertext))
	for i := 0; i < len(ciphertext); i += 16 {
		block.Decrypt(plain[i:i+16], ciphertext[i:i+16])
	}
	if uint64(len(plain)) < cleartextSize {
		return nil, ErrMalformedEnvelope
	}
	return plain[:cleartextSize], nil
}
