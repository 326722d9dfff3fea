// Copyright 2016 The hashkit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scrypt implements the scrypt key derivation function as defined in
// Colin Percival's paper "Stronger Key Derivation via Sequential Memory-Hard
// Functions" (https://www.tarsnap.com/scrypt/scrypt.pdf) and in RFC 7914.
//
// Besides the raw key derivation function Key, the package provides
// HashPassword and VerifyPassword, which wrap the derived key together with
// the salt and cost parameters into a self-describing "$s0$" token suitable
// for storage in a password database.
package scrypt

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/hashkit/scrypt/pbkdf2"
	"github.com/hashkit/scrypt/salsa"
)

const maxInt = int(^uint(0) >> 1)

var (
	// ErrInvalidCost is returned when the CPU/memory cost parameter N is not
	// a power of two greater than 1.
	ErrInvalidCost = errors.New("scrypt: N must be > 1 and a power of 2")

	// ErrParamsTooLarge is returned when the cost parameters would make the
	// working buffers exceed the addressable size on this platform.
	ErrParamsTooLarge = errors.New("scrypt: parameters are too large")
)

// blockCopy copies n bytes from src into dst.
func blockCopy(dst, src []byte, n int) {
	copy(dst, src[:n])
}

// blockXOR XORs bytes from dst with n bytes from src.
func blockXOR(dst, src []byte, n int) {
	for i, v := range src[:n] {
		dst[i] ^= v
	}
}

// blockMix mixes the 2r 64-byte blocks in b through Salsa20/8, using y as
// scratch of equal size. The accumulator starts as the last block; every
// chained output lands in y and is then de-interleaved back into b: even
// positions into the first r blocks, odd positions into the last r.
func blockMix(b, y []byte, r int) {
	var x [64]byte

	blockCopy(x[:], b[(2*r-1)*64:], 64)

	for i := 0; i < 2*r*64; i += 64 {
		blockXOR(x[:], b[i:], 64)
		salsa.Core208(&x, &x)
		blockCopy(y[i:], x[:], 64)
	}

	for i := 0; i < r; i++ {
		blockCopy(b[i*64:], y[i*2*64:], 64)
	}

	for i := 0; i < r; i++ {
		blockCopy(b[(i+r)*64:], y[(i*2+1)*64:], 64)
	}
}

// integer reads the leading little-endian word of the last 64-byte sub-block.
// N is a power of two no larger than 2^32, so masking the 64-bit read with
// N-1 is the same as the 32-bit integerify of the paper.
func integer(b []byte, r int) uint64 {
	return binary.LittleEndian.Uint64(b[(2*r-1)*64:])
}

// smix is the sequential memory-hard mixing function (ROMix). It mixes the
// 128r-byte block b in place, using v as the N-entry lookup table and xy as
// the 256r-byte working area.
func smix(b []byte, r, N int, v, xy []byte) {
	x := xy
	y := xy[128*r:]

	blockCopy(x, b, 128*r)

	for i := 0; i < N; i++ {
		blockCopy(v[i*128*r:], x, 128*r)
		blockMix(x, y, r)
	}

	for i := 0; i < N; i++ {
		j := int(integer(x, r) & uint64(N-1))
		blockXOR(x, v[j*128*r:], 128*r)
		blockMix(x, y, r)
	}

	blockCopy(b, x, 128*r)
}

// Key derives a key from the password, salt, and cost parameters, returning
// a byte slice of length keyLen that can be used as cryptographic key.
//
// N is a CPU/memory cost parameter, which must be a power of two greater than
// 1. r and p must satisfy r * p < 2³⁰. If the parameters do not satisfy the
// limits, the function returns a nil byte slice and an error.
//
// For example, you can get a derived key for e.g. AES-256 (which needs a
// 32-byte key) by doing:
//
//	dk, err := scrypt.Key([]byte("some password"), salt, 32768, 8, 1, 32)
//
// The recommended parameters for interactive logins as of 2017 are N=32768,
// r=8 and p=1. The parameters N, r, and p should be increased as memory
// latency and CPU parallelism increases; consider setting N to the highest
// power of 2 you can derive within 100 milliseconds. Remember to get a good
// random salt.
func Key(password, salt []byte, N, r, p, keyLen int) ([]byte, error) {
	if N <= 1 || N&(N-1) != 0 {
		return nil, ErrInvalidCost
	}
	if r < 1 || p < 1 {
		return nil, ErrParamsTooLarge
	}
	if uint64(r)*uint64(p) >= 1<<30 || r > maxInt/128/p || r > maxInt/256 || N > maxInt/128/r {
		return nil, ErrParamsTooLarge
	}

	b, err := pbkdf2.Key(password, salt, 1, p*128*r, sha256.New)
	if err != nil {
		return nil, err
	}

	if p == 1 {
		v := make([]byte, 128*r*N)
		xy := make([]byte, 256*r)
		smix(b, r, N, v, xy)
	} else {
		// The p blocks are data-independent, so mix each on its own
		// goroutine. The lookup table and working area are not safely
		// shareable mid-mix, so every lane owns a private pair.
		var wg sync.WaitGroup
		for i := 0; i < p; i++ {
			wg.Add(1)
			go func(block []byte) {
				defer wg.Done()
				v := make([]byte, 128*r*N)
				xy := make([]byte, 256*r)
				smix(block, r, N, v, xy)
			}(b[i*128*r : (i+1)*128*r])
		}
		wg.Wait()
	}

	return pbkdf2.Key(password, b, 1, keyLen, sha256.New)
}
