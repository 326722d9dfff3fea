// Copyright 2016 The hashkit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scrypt

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"io"
	"math/bits"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A hashed password is stored as the modular crypt style token
//
//	$s0$PARAMS$SALT$KEY
//
// where PARAMS is (log2(N) << 16 | r << 8 | p) in lowercase hexadecimal and
// SALT and KEY are standard padded base64. The format matches the widely
// deployed com.lambdaworks SCryptUtil tokens, so hashes are verifiable across
// both implementations.
const (
	hashVersion = "s0"
	hashSaltLen = 16
	hashKeyLen  = 32
)

var (
	// ErrInvalidHash is returned when a stored hash is not a well-formed
	// "$s0$" token. It is distinct from a merely mismatching password, which
	// VerifyPassword reports as false with a nil error.
	ErrInvalidHash = errors.New("scrypt: hash is not a valid '$s0$' token")

	// ErrUnencodableParams is returned by HashPassword when r or p do not fit
	// the single byte each gets in the token's parameter field.
	ErrUnencodableParams = errors.New("scrypt: r and p must be between 1 and 255 to fit the '$s0$' encoding")
)

// HashPassword derives a 32-byte key from the password under a fresh random
// 16-byte salt and returns the "$s0$" token carrying parameters, salt and key.
// The cost parameters obey the same limits as Key; additionally r and p must
// fit in one byte each.
func HashPassword(password []byte, N, r, p int) (string, error) {
	if N <= 1 || N&(N-1) != 0 {
		return "", ErrInvalidCost
	}
	if r < 1 || r > 255 || p < 1 || p > 255 {
		return "", ErrUnencodableParams
	}

	salt := make([]byte, hashSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", errors.Wrap(err, "scrypt: reading random salt")
	}

	dk, err := Key(password, salt, N, r, p, hashKeyLen)
	if err != nil {
		return "", err
	}

	logN := bits.Len(uint(N)) - 1
	params := uint64(logN)<<16 | uint64(r)<<8 | uint64(p)

	var b strings.Builder
	b.WriteString("$" + hashVersion + "$")
	b.WriteString(strconv.FormatUint(params, 16))
	b.WriteByte('$')
	b.WriteString(base64.StdEncoding.EncodeToString(salt))
	b.WriteByte('$')
	b.WriteString(base64.StdEncoding.EncodeToString(dk))
	return b.String(), nil
}

// VerifyPassword re-derives the key for password under the salt and cost
// parameters stored in the token and compares it against the stored key in
// constant time. A wrong password yields (false, nil); a token that cannot be
// decoded yields an error wrapping ErrInvalidHash, so callers can tell a
// corrupted hash from a failed login.
func VerifyPassword(password []byte, hash string) (bool, error) {
	N, r, p, salt, stored, err := decodeHash(hash)
	if err != nil {
		return false, err
	}

	derived, err := Key(password, salt, N, r, p, len(stored))
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(stored, derived) == 1, nil
}

// Cost returns the cost parameters recorded in the token. It allows callers
// to detect hashes created with parameters that have since become too weak
// and re-hash on next login.
func Cost(hash string) (N, r, p int, err error) {
	N, r, p, _, _, err = decodeHash(hash)
	return N, r, p, err
}

func decodeHash(hash string) (N, r, p int, salt, dk []byte, err error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != hashVersion {
		return 0, 0, 0, nil, nil, ErrInvalidHash
	}

	params, err := strconv.ParseUint(parts[2], 16, 32)
	if err != nil {
		return 0, 0, 0, nil, nil, errors.Wrapf(ErrInvalidHash, "parameter field %q", parts[2])
	}
	logN := int(params >> 16 & 0xffff)
	if logN >= bits.UintSize-1 {
		return 0, 0, 0, nil, nil, ErrParamsTooLarge
	}
	N = 1 << uint(logN)
	r = int(params >> 8 & 0xff)
	p = int(params & 0xff)

	salt, err = base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return 0, 0, 0, nil, nil, errors.Wrap(ErrInvalidHash, "salt field")
	}
	dk, err = base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(dk) == 0 {
		return 0, 0, 0, nil, nil, errors.Wrap(ErrInvalidHash, "key field")
	}
	return N, r, p, salt, dk, nil
}
