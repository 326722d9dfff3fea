// Copyright 2016 The hashkit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scrypt

import (
	"encoding/base64"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Cheap parameters; the vector tests in scrypt_test.go cover realistic costs.
const (
	testN = 1024
	testR = 8
	testP = 1
)

func TestHashPasswordRoundTrip(t *testing.T) {
	password := []byte("do not use this password")

	hash, err := HashPassword(password, testN, testR, testP)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$s0$"), "token %q lacks the $s0$ prefix", hash)

	ok, err := VerifyPassword(password, hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword([]byte("do not use this passwore"), hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashPasswordFormat(t *testing.T) {
	hash, err := HashPassword([]byte("xyzzy"), testN, testR, testP)
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 5)
	require.Equal(t, "", parts[0])
	require.Equal(t, "s0", parts[1])

	// log2(1024)<<16 | 8<<8 | 1, lowercase hex.
	require.Equal(t, strconv.FormatUint(10<<16|8<<8|1, 16), parts[2])

	salt, err := base64.StdEncoding.DecodeString(parts[3])
	require.NoError(t, err)
	require.Len(t, salt, 16)

	dk, err := base64.StdEncoding.DecodeString(parts[4])
	require.NoError(t, err)
	require.Len(t, dk, 32)
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	password := []byte("same password twice")

	first, err := HashPassword(password, testN, testR, testP)
	require.NoError(t, err)
	second, err := HashPassword(password, testN, testR, testP)
	require.NoError(t, err)
	require.NotEqual(t, first, second, "two hashes of one password must differ in salt")

	for _, hash := range []string{first, second} {
		ok, err := VerifyPassword(password, hash)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestHashPasswordRejectsBadParams(t *testing.T) {
	password := []byte("p")

	for _, N := range []int{0, 1, 100} {
		_, err := HashPassword(password, N, 8, 1)
		require.ErrorIs(t, err, ErrInvalidCost, "N=%d", N)
	}
	for _, rp := range [][2]int{{0, 1}, {256, 1}, {1, 0}, {1, 256}} {
		_, err := HashPassword(password, 16, rp[0], rp[1])
		require.ErrorIs(t, err, ErrUnencodableParams, "r=%d p=%d", rp[0], rp[1])
	}
}

func TestVerifyPasswordMalformed(t *testing.T) {
	for _, hash := range []string{
		"",
		"$s0$e0801",                      // too few fields
		"$s0$e0801$AAAA$AAAA$AAAA",       // too many fields
		"s0$e0801$AAAA$AAAA",             // missing leading separator
		"x$s0$e0801$AAAA$AAAA",           // junk before leading separator
		"$s1$e0801$AAAA$AAAA",            // unknown version
		"$argon2id$e0801$AAAA$AAAA",      // wrong algorithm
		"$s0$zz$AAAA$AAAA",               // parameter field is not hex
		"$s0$fffffffff$AAAA$AAAA",        // parameter field over 32 bits
		"$s0$e0801$not&base64$AAAA",      // undecodable salt
		"$s0$e0801$AAAA$not&base64",      // undecodable key
		"$s0$e0801$AAAA$",                // empty key
	} {
		ok, err := VerifyPassword([]byte("whatever"), hash)
		require.ErrorIs(t, err, ErrInvalidHash, "hash %q", hash)
		require.False(t, ok)
	}
}

func TestVerifyPasswordAbsurdCost(t *testing.T) {
	// Well-formed token whose log2(N) of 0xffff cannot be instantiated.
	// It must fail with a parameter error before any table is allocated,
	// not by attempting the derivation.
	hash := "$s0$ffff0801$AAAA$AAAA"
	ok, err := VerifyPassword([]byte("whatever"), hash)
	require.ErrorIs(t, err, ErrParamsTooLarge)
	require.False(t, ok)
}

// Fixed tokens in the com.lambdaworks SCryptUtil wire format, built from the
// RFC 7914 vectors (dkLen=32 prefixes). Both must keep verifying forever.
func TestVerifyPasswordInterop(t *testing.T) {
	ok, err := VerifyPassword([]byte("secret"),
		"$s0$40101$AAECAwQFBgcICQoLDA0ODw==$9PnvUP3hBbjpiLXCucu7dAN/s7DvLvUWFAwizo9PPk8=")
	require.NoError(t, err)
	require.True(t, ok)

	// N=1024, r=8, p=16 exercises the parallel lanes.
	ok, err = VerifyPassword([]byte("password"),
		"$s0$a0810$TmFDbA==$/bq+HJ00cgB4VucZDQHp/nxq18vII3gw53N2Y0s3MWI=")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword([]byte("Password"),
		"$s0$a0810$TmFDbA==$/bq+HJ00cgB4VucZDQHp/nxq18vII3gw53N2Y0s3MWI=")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCost(t *testing.T) {
	hash, err := HashPassword([]byte("p"), 4096, 8, 2)
	require.NoError(t, err)

	N, r, p, err := Cost(hash)
	require.NoError(t, err)
	require.Equal(t, 4096, N)
	require.Equal(t, 8, r)
	require.Equal(t, 2, p)

	_, _, _, err = Cost("$s1$whatever$AAAA$AAAA")
	require.ErrorIs(t, err, ErrInvalidHash)
}

// Packing round-trip across the whole encodable parameter space.
func TestParamPackingRoundTrip(t *testing.T) {
	for logN := 1; logN <= 20; logN++ {
		for _, r := range []int{1, 8, 255} {
			for _, p := range []int{1, 16, 255} {
				params := uint64(logN)<<16 | uint64(r)<<8 | uint64(p)
				field := strconv.FormatUint(params, 16)

				got, err := strconv.ParseUint(field, 16, 32)
				require.NoError(t, err)
				require.Equal(t, logN, int(got>>16&0xffff))
				require.Equal(t, r, int(got>>8&0xff))
				require.Equal(t, p, int(got&0xff))
			}
		}
	}
}
