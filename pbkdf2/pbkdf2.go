// Copyright 2016 The hashkit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pbkdf2 implements the key derivation function PBKDF2 as defined in
// RFC 2898 / PKCS #5 v2.0.
//
// A key derivation function is useful when encrypting data based on a password
// or any other not-fully-random data. It uses a pseudorandom function derived
// from a keyed hash to prevent dictionaries of common passwords from being
// useful, and stretches the cost of a brute-force attack by iterating.
package pbkdf2

import (
	"crypto/hmac"
	"errors"
	"hash"
)

// ErrKeyTooLong is returned when keyLen exceeds the maximum derivable length
// of (2^32 - 1) hash blocks.
var ErrKeyTooLong = errors.New("pbkdf2: derived key too long")

// Key derives a key of length keyLen from the password and salt, iterating the
// pseudorandom function iter times. The pseudorandom function is HMAC over the
// hash constructed by h; pass in a function from the hash package, for example
// sha256.New.
//
// Remember to get a good random salt. At least 8 bytes is recommended by the
// RFC.
func Key(password, salt []byte, iter, keyLen int, h func() hash.Hash) ([]byte, error) {
	prf := hmac.New(h, password)
	hashLen := prf.Size()
	if uint64(keyLen) > (1<<32-1)*uint64(hashLen) {
		return nil, ErrKeyTooLong
	}
	numBlocks := (keyLen + hashLen - 1) / hashLen

	var buf [4]byte
	dk := make([]byte, 0, numBlocks*hashLen)
	U := make([]byte, hashLen)
	for block := 1; block <= numBlocks; block++ {
		// N.B.: || means concatenation, ^ means XOR
		// for each block T_i = U_1 ^ U_2 ^ ... ^ U_iter
		// U_1 = PRF(password, salt || uint32(i))
		prf.Reset()
		prf.Write(salt)
		buf[0] = byte(block >> 24)
		buf[1] = byte(block >> 16)
		buf[2] = byte(block >> 8)
		buf[3] = byte(block)
		prf.Write(buf[:4])
		dk = prf.Sum(dk)
		T := dk[len(dk)-hashLen:]
		copy(U, T)

		// U_n = PRF(password, U_(n-1))
		for n := 2; n <= iter; n++ {
			prf.Reset()
			prf.Write(U)
			U = U[:0]
			U = prf.Sum(U)
			for x := range U {
				T[x] ^= U[x]
			}
		}
	}
	return dk[:keyLen], nil
}
