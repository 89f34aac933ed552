// Copyright 2016 - 2024 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxmlcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des" //nolint:staticcheck // MS-OFFCRYPTO legacy cipher table, decrypt-compatibility only
	"strings"
)

// newBlockCipher returns a cipher.Block for the named MS-OFFCRYPTO cipher
// algorithm and key, generalising excelize's direct aes.NewCipher calls
// (crypt.go) into the full §4.2 cipher table.
func newBlockCipher(name string, key []byte) (cipher.Block, error) {
	switch strings.ToUpper(name) {
	case "AES":
		return aes.NewCipher(key)
	case "DES":
		return des.NewCipher(key)
	case "3DES", "3DES112":
		return des.NewTripleDESCipher(normalizeTripleDESKey(name, key))
	case "RC2":
		return newRC2Cipher(key)
	default:
		return nil, newUnsupportedAlgorithmError("cipher algorithm", name)
	}
}

// newBlockMode wraps block in the named chaining mode for either direction.
func newBlockMode(chaining CipherChaining, block cipher.Block, iv []byte, encrypt bool) (cipher.BlockMode, error) {
	switch chaining {
	case ChainingCBC:
		if encrypt {
			return cipher.NewCBCEncrypter(block, iv), nil
		}
		return cipher.NewCBCDecrypter(block, iv), nil
	case ChainingCFB:
		// MS-OFFCRYPTO's "ChainingModeCFB" is full-block CFB (segment size
		// equal to the cipher block size), unlike the streaming CFB usually
		// exposed via cipher.Stream; implement it directly as a BlockMode so
		// callers can treat CBC and CFB uniformly.
		return newCFBBlockMode(block, iv, encrypt), nil
	default:
		return nil, newUnsupportedAlgorithmError("cipher chaining", string(chaining))
	}
}

// normalizeTripleDESKey expands a 2-key (16-byte, "3DES112") key to the
// 3-key (24-byte) form Go's crypto/des requires, by repeating the first 8
// bytes as the third key — the MS-OFFCRYPTO convention for 3DES-112.
func normalizeTripleDESKey(name string, key []byte) []byte {
	if strings.EqualFold(name, "3DES112") && len(key) == 16 {
		out := make([]byte, 24)
		copy(out, key)
		copy(out[16:], key[:8])
		return out
	}
	return key
}

// cfbBlockMode implements full-block-size CFB (MS-OFFCRYPTO's
// ChainingModeCFB) as a cipher.BlockMode so it composes with the same
// segment-at-a-time loop used for CBC.
type cfbBlockMode struct {
	block   cipher.Block
	iv      []byte
	encrypt bool
}

func newCFBBlockMode(block cipher.Block, iv []byte, encrypt bool) cipher.BlockMode {
	prev := make([]byte, len(iv))
	copy(prev, iv)
	return &cfbBlockMode{block: block, iv: prev, encrypt: encrypt}
}

func (m *cfbBlockMode) BlockSize() int { return m.block.BlockSize() }

func (m *cfbBlockMode) CryptBlocks(dst, src []byte) {
	bs := m.block.BlockSize()
	for len(src) > 0 {
		keystream := make([]byte, bs)
		m.block.Encrypt(keystream, m.iv)
		block := src[:bs]
		out := make([]byte, bs)
		for i := 0; i < bs; i++ {
			out[i] = block[i] ^ keystream[i]
		}
		copy(dst[:bs], out)
		if m.encrypt {
			copy(m.iv, out)
		} else {
			copy(m.iv, block)
		}
		src = src[bs:]
		dst = dst[bs:]
	}
}
