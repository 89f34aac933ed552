// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

// Profile selects which MS-OFFCRYPTO encryption profile Encrypt emits.
// Decrypt ignores this field; it dispatches on the EncryptionInfo stream it
// finds in the source container instead.
type Profile int

const (
	// ProfileStandard is fixed AES-ECB with SHA-1 key derivation (MS-OFFCRYPTO
	// §2.3.4.6-8). No data-integrity check.
	ProfileStandard Profile = iota
	// ProfileAgile is the parameterised, segmented-CBC/CFB profile with HMAC
	// data integrity (MS-OFFCRYPTO §2.3.4.9-14).
	ProfileAgile
)

// Algorithm selects the cipher and key size for ProfileStandard.
type Algorithm int

const (
	AlgorithmAES128 Algorithm = iota
	AlgorithmAES192
	AlgorithmAES256
)

func (a Algorithm) keyBits() int {
	switch a {
	case AlgorithmAES128:
		return 128
	case AlgorithmAES192:
		return 192
	case AlgorithmAES256:
		return 256
	default:
		return 0
	}
}

func (a Algorithm) algID() uint32 {
	switch a {
	case AlgorithmAES128:
		return 0x0000660E
	case AlgorithmAES192:
		return 0x0000660F
	case AlgorithmAES256:
		return 0x00006610
	default:
		return 0
	}
}

// Options configures a single Encrypt or Decrypt call. The zero value is a
// valid Standard AES-128 configuration for Encrypt; with Profile set to
// ProfileAgile, zero Agile fields default to AES-256/CBC/SHA-512 with 100,000
// spins. Decrypt ignores everything aside from Password.
type Options struct {
	// Password is the user password. An empty Password is replaced with the
	// legacy Excel default "VelvetSweatshop" per MS-OFFCRYPTO.
	Password string

	// Profile selects the encryption profile Encrypt emits.
	Profile Profile

	// Algorithm selects the cipher/key size for ProfileStandard. Encrypt
	// fails with ErrUnsupportedAlgorithm for any value outside
	// AlgorithmAES128/192/256.
	Algorithm Algorithm

	// AgileCipher, AgileChaining, AgileHash, AgileKeyBits and AgileSpinCount
	// configure the key encryptor and key data when Profile is ProfileAgile.
	// Zero values default to AES/ChainingModeCBC/SHA512/256 bits/100,000
	// spins, matching contemporary Office writers.
	AgileCipher    CipherAlgorithm
	AgileChaining  CipherChaining
	AgileHash      HashAlgorithm
	AgileKeyBits   int
	AgileSpinCount int
}

// CipherAlgorithm names a symmetric cipher used by the Agile profile's key
// data and key encryptor.
type CipherAlgorithm string

// Cipher algorithms recognised by the Agile profile (MS-OFFCRYPTO §2.3.4.10).
const (
	CipherAES     CipherAlgorithm = "AES"
	CipherDES     CipherAlgorithm = "DES"
	Cipher3DES    CipherAlgorithm = "3DES"
	Cipher3DES112 CipherAlgorithm = "3DES112"
	CipherRC2     CipherAlgorithm = "RC2"
)

// CipherChaining names a block chaining mode used by the Agile profile.
type CipherChaining string

// Chaining modes recognised by the Agile profile.
const (
	ChainingCBC CipherChaining = "ChainingModeCBC"
	ChainingCFB CipherChaining = "ChainingModeCFB"
)

// HashAlgorithm names a hash algorithm used for password derivation and
// integrity checks.
type HashAlgorithm string

// Hash algorithms recognised by the Agile profile (MS-OFFCRYPTO §2.3.4.10).
const (
	HashMD5       HashAlgorithm = "MD5"
	HashSHA1      HashAlgorithm = "SHA1"
	HashSHA256    HashAlgorithm = "SHA256"
	HashSHA384    HashAlgorithm = "SHA384"
	HashSHA512    HashAlgorithm = "SHA512"
	HashRIPEMD160 HashAlgorithm = "RIPEMD160"
)

const (
	defaultAgileKeyBits   = 256
	defaultAgileSpinCount = 100000
)

// withDefaults returns a copy of opt with Agile fields defaulted.
func (opt Options) withDefaults() Options {
	if opt.AgileCipher == "" {
		opt.AgileCipher = CipherAES
	}
	if opt.AgileChaining == "" {
		opt.AgileChaining = ChainingCBC
	}
	if opt.AgileHash == "" {
		opt.AgileHash = HashSHA512
	}
	if opt.AgileKeyBits == 0 {
		opt.AgileKeyBits = defaultAgileKeyBits
	}
	if opt.AgileSpinCount == 0 {
		opt.AgileSpinCount = defaultAgileSpinCount
	}
	return opt
}
