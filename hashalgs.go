// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"strings"

	"golang.org/x/crypto/md4"
	"golang.org/x/crypto/ripemd160"
)

// newHash returns a fresh hash.Hash for the named MS-OFFCRYPTO hash
// algorithm. Matching is case-insensitive and accepts both the XML attribute
// spelling ("SHA512") and the dashed spelling excelize's own hashing() map
// uses ("sha384" etc.).
func newHash(name string) (hash.Hash, error) {
	switch strings.ToUpper(strings.ReplaceAll(name, "-", "")) {
	case "MD4":
		return md4.New(), nil
	case "MD5":
		return md5.New(), nil
	case "RIPEMD160":
		return ripemd160.New(), nil
	case "SHA1":
		return sha1.New(), nil
	case "SHA256":
		return sha256.New(), nil
	case "SHA384":
		return sha512.New384(), nil
	case "SHA512":
		return sha512.New(), nil
	default:
		return nil, newUnsupportedAlgorithmError("hash algorithm", name)
	}
}

// hashSum hashes the concatenation of buffers with the named algorithm.
func hashSum(name string, buffers ...[]byte) ([]byte, error) {
	h, err := newHash(name)
	if err != nil {
		return nil, err
	}
	for _, b := range buffers {
		h.Write(b)
	}
	return h.Sum(nil), nil
}

// newHMAC returns a fresh HMAC keyed with key over the named hash algorithm.
func newHMAC(name string, key []byte) (hash.Hash, error) {
	if _, err := newHash(name); err != nil {
		return nil, err
	}
	return hmac.New(func() hash.Hash {
		h, _ := newHash(name)
		return h
	}, key), nil
}

// hashSize returns the digest size in bytes for the named hash algorithm.
func hashSize(name string) (int, error) {
	h, err := newHash(name)
	if err != nil {
		return 0, err
	}
	return h.Size(), nil
}
