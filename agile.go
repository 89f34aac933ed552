// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

// C2 — Agile profile: parameterised key derivation, block-key finalisation,
// segmented body cipher, verifier construction/validation and HMAC data
// integrity (MS-OFFCRYPTO §2.3.4.9-14). Grounded on excelize's
// convertPasswdToKey/createIV/hashing/decrypt/decryptPackage (crypt.go),
// generalised from a decrypt-only walk into a symmetric encrypt+decrypt pair
// and extended with the verifier/HMAC emission the teacher never needed.

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
)

const (
	agileSegmentSize  = 4096
	agileHmacSaltSize = 64
)

// agileBaseKey iterates the password hash AgileSpinCount+1 times per
// MS-OFFCRYPTO §2.3.4.11: h0 = H(saltValue||password), then spinCount rounds
// of h(i) = H(u32le(i)||h(i-1)).
func agileBaseKey(hashName string, salt []byte, password string, spinCount int) ([]byte, error) {
	base, err := saltAndPassword(salt, password)
	if err != nil {
		return nil, err
	}
	h, err := hashSum(hashName, base)
	if err != nil {
		return nil, err
	}
	for i := 0; i < spinCount; i++ {
		h, err = hashSum(hashName, uint32le(uint32(i)), h)
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}

// agileFinalKey derives a purpose-specific key from the iterated base hash
// and one of the reserved block keys (MS-OFFCRYPTO §2.3.4.11-14), truncated
// or 0x36-padded to keyBytes.
func agileFinalKey(hashName string, baseHash, blockKey []byte, keyBytes int) ([]byte, error) {
	sum, err := hashSum(hashName, baseHash, blockKey)
	if err != nil {
		return nil, err
	}
	return fixHashSize(sum, keyBytes, 0x36), nil
}

// agileBlockKeyIV derives an IV straight from a reserved block key and a salt
// (no password base hash involved), used for the HMAC key/value fields:
// finalHash(blockKey, salt) fixed to blockSize with 0x36 padding.
func agileBlockKeyIV(hashName string, blockKey, salt []byte, blockSize int) ([]byte, error) {
	sum, err := hashSum(hashName, blockKey, salt)
	if err != nil {
		return nil, err
	}
	return fixHashSize(sum, blockSize, 0x36), nil
}

// agileSegmentIV derives the per-segment IV for segmented body crypto
// (MS-OFFCRYPTO §2.3.4.15): H(saltValue||u32le(segmentIndex)), fixed to the
// cipher's block size with 0x36 padding.
func agileSegmentIV(hashName string, salt []byte, segmentIndex uint32, blockSize int) ([]byte, error) {
	sum, err := hashSum(hashName, salt, uint32le(segmentIndex))
	if err != nil {
		return nil, err
	}
	return fixHashSize(sum, blockSize, 0x36), nil
}

// agileCryptBody runs block-mode cipher over cleartext/ciphertext one
// agileSegmentSize segment at a time, each segment re-keyed with its own IV
// per MS-OFFCRYPTO §2.3.4.15, padding the final segment to the cipher's block
// size with zero bytes the way excelize's decryptPackage does on read. On
// encrypt the padded ciphertext is kept whole, so every stored segment is a
// whole number of cipher blocks.
func agileCryptBody(cipherName, hashName, chaining string, key, salt []byte, in []byte, encrypt bool) ([]byte, error) {
	block, err := newBlockCipher(cipherName, key)
	if err != nil {
		return nil, err
	}
	bs := block.BlockSize()
	out := make([]byte, 0, len(in))
	for segIndex := uint32(0); ; segIndex++ {
		start := int(segIndex) * agileSegmentSize
		if start >= len(in) {
			break
		}
		end := start + agileSegmentSize
		if end > len(in) {
			end = len(in)
		}
		segment := in[start:end]

		iv, err := agileSegmentIV(hashName, salt, segIndex, bs)
		if err != nil {
			return nil, err
		}
		mode, err := newBlockMode(CipherChaining(chaining), block, iv, encrypt)
		if err != nil {
			return nil, err
		}

		padded := len(segment)
		if r := padded % bs; r != 0 {
			padded += bs - r
		}
		buf := make([]byte, padded)
		copy(buf, segment)
		res := make([]byte, padded)
		mode.CryptBlocks(res, buf)
		if encrypt {
			out = append(out, res...)
		} else {
			out = append(out, res[:len(segment)]...)
		}
	}
	return out, nil
}

// encryptPadded zero-pads plain to a multiple of bs before running mode over
// it, returning the whole padded ciphertext (never truncated back down —
// Agile key-encryptor fields are always whole blocks per MS-OFFCRYPTO
// §2.3.4.11).
func encryptPadded(mode cipher.BlockMode, plain []byte, bs int) []byte {
	padded := len(plain)
	if r := padded % bs; r != 0 {
		padded += bs - r
	}
	in := make([]byte, padded)
	copy(in, plain)
	out := make([]byte, padded)
	mode.CryptBlocks(out, in)
	return out
}

// decryptBlock is the inverse of encryptPadded: decrypts ciphertext (already
// whole blocks) with a fresh cipher/mode pair.
func decryptBlock(cipherName, chaining string, key, iv, ciphertext []byte) ([]byte, error) {
	block, err := newBlockCipher(cipherName, key)
	if err != nil {
		return nil, err
	}
	mode, err := newBlockMode(CipherChaining(chaining), block, iv, false)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	mode.CryptBlocks(out, ciphertext)
	return out, nil
}

// agileEncrypt implements the full Agile-profile Encrypt path: key
// derivation, verifier construction, HMAC data integrity, segmented body
// encryption and EncryptionInfo assembly.
func agileEncrypt(cleartext []byte, opt Options) (encryptionInfoStream, encryptedPackageStream []byte, err error) {
	hashName := string(opt.AgileHash)
	hSize, err := hashSize(hashName)
	if err != nil {
		return nil, nil, err
	}
	keyBytes := opt.AgileKeyBits / 8
	blockSize := 16
	if opt.AgileCipher == CipherDES || opt.AgileCipher == CipherRC2 {
		blockSize = 8
	}
	cipherName := string(opt.AgileCipher)

	// Key encryptor: password-derived secret-key wrapping.
	keySalt := make([]byte, 16)
	if _, err = rand.Read(keySalt); err != nil {
		return nil, nil, newIOError("generate key salt", err)
	}
	baseHash, err := agileBaseKey(hashName, keySalt, opt.Password, opt.AgileSpinCount)
	if err != nil {
		return nil, nil, err
	}
	// IV for every key-encryptor field is the key-encryptor's own salt,
	// fixed to the cipher block size (MS-OFFCRYPTO §2.3.4.11).
	keyEncryptorIV := fixHashSize(keySalt, blockSize, 0x36)

	secretKey := make([]byte, keyBytes)
	if _, err = rand.Read(secretKey); err != nil {
		return nil, nil, newIOError("generate secret key", err)
	}

	keyValueKey, err := agileFinalKey(hashName, baseHash, blockKeyKeyValue, keyBytes)
	if err != nil {
		return nil, nil, err
	}
	keyValueBlock, err := newBlockCipher(cipherName, keyValueKey)
	if err != nil {
		return nil, nil, err
	}
	keyValueMode, err := newBlockMode(opt.AgileChaining, keyValueBlock, keyEncryptorIV, true)
	if err != nil {
		return nil, nil, err
	}
	encryptedKeyValue := encryptPadded(keyValueMode, secretKey, blockSize)

	verifierHashInput := make([]byte, 16)
	if _, err = rand.Read(verifierHashInput); err != nil {
		return nil, nil, newIOError("generate verifier", err)
	}
	verifierHashValue, err := hashSum(hashName, verifierHashInput)
	if err != nil {
		return nil, nil, err
	}

	vhiKey, err := agileFinalKey(hashName, baseHash, blockKeyVerifierHashInput, keyBytes)
	if err != nil {
		return nil, nil, err
	}
	vhiBlock, err := newBlockCipher(cipherName, vhiKey)
	if err != nil {
		return nil, nil, err
	}
	vhiMode, err := newBlockMode(opt.AgileChaining, vhiBlock, keyEncryptorIV, true)
	if err != nil {
		return nil, nil, err
	}
	encryptedVerifierHashInput := encryptPadded(vhiMode, verifierHashInput, blockSize)

	vhvKey, err := agileFinalKey(hashName, baseHash, blockKeyVerifierHashValue, keyBytes)
	if err != nil {
		return nil, nil, err
	}
	vhvBlock, err := newBlockCipher(cipherName, vhvKey)
	if err != nil {
		return nil, nil, err
	}
	vhvMode, err := newBlockMode(opt.AgileChaining, vhvBlock, keyEncryptorIV, true)
	if err != nil {
		return nil, nil, err
	}
	encryptedVerifierHashValue := encryptPadded(vhvMode, verifierHashValue, blockSize)

	// Key data: body encryption under the random secret key.
	bodySalt := make([]byte, 16)
	if _, err = rand.Read(bodySalt); err != nil {
		return nil, nil, newIOError("generate body salt", err)
	}
	cipherText, err := agileCryptBody(cipherName, hashName, string(opt.AgileChaining), secretKey, bodySalt, cleartext, true)
	if err != nil {
		return nil, nil, err
	}
	encryptedPackageStream = append(uint64le(uint64(len(cleartext))), cipherText...)

	// Data integrity: HMAC over the full emitted EncryptedPackage stream
	// (length prefix included), keyed with a fresh random salt that is
	// itself wrapped under the content key.
	hmacSalt := make([]byte, agileHmacSaltSize)
	if _, err = rand.Read(hmacSalt); err != nil {
		return nil, nil, newIOError("generate hmac salt", err)
	}
	h, err := newHMAC(hashName, hmacSalt)
	if err != nil {
		return nil, nil, err
	}
	h.Write(encryptedPackageStream)
	hmacValue := h.Sum(nil)

	hmacKeyIV, err := agileBlockKeyIV(hashName, blockKeyHmacKey, bodySalt, blockSize)
	if err != nil {
		return nil, nil, err
	}
	hmacKeyBlock, err := newBlockCipher(cipherName, secretKey)
	if err != nil {
		return nil, nil, err
	}
	hmacKeyMode, err := newBlockMode(opt.AgileChaining, hmacKeyBlock, hmacKeyIV, true)
	if err != nil {
		return nil, nil, err
	}
	encryptedHmacKey := encryptPadded(hmacKeyMode, hmacSalt, blockSize)

	hmacValueIV, err := agileBlockKeyIV(hashName, blockKeyHmacValue, bodySalt, blockSize)
	if err != nil {
		return nil, nil, err
	}
	hmacValueBlock, err := newBlockCipher(cipherName, secretKey)
	if err != nil {
		return nil, nil, err
	}
	hmacValueMode, err := newBlockMode(opt.AgileChaining, hmacValueBlock, hmacValueIV, true)
	if err != nil {
		return nil, nil, err
	}
	encryptedHmacValue := encryptPadded(hmacValueMode, hmacValue, blockSize)

	d := agileDescriptor{
		KeyData: agileKeyData{
			SaltSize:        16,
			BlockSize:       blockSize,
			KeyBits:         opt.AgileKeyBits,
			HashSize:        hSize,
			CipherAlgorithm: cipherName,
			CipherChaining:  string(opt.AgileChaining),
			HashAlgorithm:   hashName,
			SaltValue:       bodySalt,
		},
		DataIntegrity: agileDataIntegrity{
			EncryptedHmacKey:   encryptedHmacKey,
			EncryptedHmacValue: encryptedHmacValue,
		},
		KeyEncryptor: agileKeyEncryptor{
			SpinCount:                  opt.AgileSpinCount,
			SaltSize:                   16,
			BlockSize:                  blockSize,
			KeyBits:                    opt.AgileKeyBits,
			HashSize:                   hSize,
			CipherAlgorithm:            cipherName,
			CipherChaining:             string(opt.AgileChaining),
			HashAlgorithm:              hashName,
			SaltValue:                  keySalt,
			EncryptedVerifierHashInput: encryptedVerifierHashInput,
			EncryptedVerifierHashValue: encryptedVerifierHashValue,
			EncryptedKeyValue:          encryptedKeyValue,
		},
	}
	encryptionInfoStream = writeAgileEncryptionInfo(d)
	return encryptionInfoStream, encryptedPackageStream, nil
}

// agileDecrypt implements the full Agile-profile Decrypt path: XML
// descriptor parse, key derivation, verifier validation, HMAC data-integrity
// validation, segmented body decryption and length truncation.
func agileDecrypt(encryptionInfoBuf, encryptedPackageBuf []byte, password string) ([]byte, error) {
	if len(encryptionInfoBuf) < 8 {
		return nil, ErrMalformedEnvelope
	}
	d, err := parseAgileEncryptionInfo(encryptionInfoBuf[8:])
	if err != nil {
		return nil, err
	}
	ke := d.KeyEncryptor
	hashName := ke.HashAlgorithm
	keyBytes := ke.KeyBits / 8
	blockSize := ke.BlockSize
	cipherName := ke.CipherAlgorithm
	keyEncryptorIV := fixHashSize(ke.SaltValue, blockSize, 0x36)

	hSize, err := hashSize(hashName)
	if err != nil {
		return nil, err
	}

	baseHash, err := agileBaseKey(hashName, ke.SaltValue, password, ke.SpinCount)
	if err != nil {
		return nil, err
	}

	vhiKey, err := agileFinalKey(hashName, baseHash, blockKeyVerifierHashInput, keyBytes)
	if err != nil {
		return nil, err
	}
	verifierHashInput, err := decryptBlock(cipherName, ke.CipherChaining, vhiKey, keyEncryptorIV, ke.EncryptedVerifierHashInput)
	if err != nil {
		return nil, err
	}

	vhvKey, err := agileFinalKey(hashName, baseHash, blockKeyVerifierHashValue, keyBytes)
	if err != nil {
		return nil, err
	}
	decryptedVerifierHashValue, err := decryptBlock(cipherName, ke.CipherChaining, vhvKey, keyEncryptorIV, ke.EncryptedVerifierHashValue)
	if err != nil {
		return nil, err
	}

	expected, err := hashSum(hashName, verifierHashInput)
	if err != nil {
		return nil, err
	}
	if len(decryptedVerifierHashValue) < hSize || !constantTimeEqual(expected, decryptedVerifierHashValue[:hSize]) {
		return nil, ErrInvalidPassword
	}

	keyValueKey, err := agileFinalKey(hashName, baseHash, blockKeyKeyValue, keyBytes)
	if err != nil {
		return nil, err
	}
	secretKey, err := decryptBlock(cipherName, ke.CipherChaining, keyValueKey, keyEncryptorIV, ke.EncryptedKeyValue)
	if err != nil {
		return nil, err
	}
	if len(secretKey) < keyBytes {
		return nil, ErrMalformedEnvelope
	}
	secretKey = secretKey[:keyBytes]

	if len(encryptedPackageBuf) < 8 {
		return nil, ErrMalformedEnvelope
	}

	hmacKeyIV, err := agileBlockKeyIV(hashName, blockKeyHmacKey, d.KeyData.SaltValue, blockSize)
	if err != nil {
		return nil, err
	}
	hmacSalt, err := decryptBlock(cipherName, d.KeyData.CipherChaining, secretKey, hmacKeyIV, d.DataIntegrity.EncryptedHmacKey)
	if err != nil {
		return nil, err
	}
	if len(hmacSalt) < agileHmacSaltSize {
		return nil, ErrMalformedEnvelope
	}
	hmacSalt = hmacSalt[:agileHmacSaltSize]

	hmacValueIV, err := agileBlockKeyIV(hashName, blockKeyHmacValue, d.KeyData.SaltValue, blockSize)
	if err != nil {
		return nil, err
	}
	expectedHmac, err := decryptBlock(cipherName, d.KeyData.CipherChaining, secretKey, hmacValueIV, d.DataIntegrity.EncryptedHmacValue)
	if err != nil {
		return nil, err
	}
	if len(expectedHmac) < hSize {
		return nil, ErrMalformedEnvelope
	}

	h, err := newHMAC(hashName, hmacSalt)
	if err != nil {
		return nil, err
	}
	h.Write(encryptedPackageBuf)
	actualHmac := h.Sum(nil)
	if !constantTimeEqual(actualHmac, expectedHmac[:len(actualHmac)]) {
		return nil, ErrIntegrityFailure
	}

	size := binary.LittleEndian.Uint64(encryptedPackageBuf[:8])
	cipherText := encryptedPackageBuf[8:]
	plain, err := agileCryptBody(cipherName, d.KeyData.HashAlgorithm, d.KeyData.CipherChaining, secretKey, d.KeyData.SaltValue, cipherText, false)
	if err != nil {
		return nil, err
	}
	if uint64(len(plain)) < size {
		return nil, ErrMalformedEnvelope
	}
	return plain[:size], nil
}
