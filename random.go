// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"strings"
)

// tokenChars is the alphabet of boundary tokens
const tokenChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"

// A 64 bit word read from rand.Reader is consumed in 6 bit steps. Indices that fall
// outside of tokenChars are skipped.
const (
	indexBits      = 6
	indexMask      = 1<<indexBits - 1
	indicesPerWord = 64 / indexBits
)

// boundaryTokenLength is the length of the random part of a multipart boundary
const boundaryTokenLength = 32

// BoundaryPrefix and BoundarySuffix frame the random token of a multipart boundary
const (
	BoundaryPrefix = "Multipart_Boundary_x"
	BoundarySuffix = "x"
)

// randomToken returns n characters of tokenChars drawn from crypto/rand
func randomToken(n int) (string, error) {
	var (
		token strings.Builder
		word  [8]byte
	)
	token.Grow(n)
	for token.Len() < n {
		if _, err := io.ReadFull(rand.Reader, word[:]); err != nil {
			return "", err
		}
		bits := binary.BigEndian.Uint64(word[:])
		for i := 0; i < indicesPerWord && token.Len() < n; i++ {
			if idx := int(bits & indexMask); idx < len(tokenChars) {
				token.WriteByte(tokenChars[idx])
			}
			bits >>= indexBits
		}
	}
	return token.String(), nil
}

// newBoundary returns a fresh multipart boundary of the form Multipart_Boundary_x<token>x
func newBoundary() (string, error) {
	token, err := randomToken(boundaryTokenLength)
	if err != nil {
		return "", err
	}
	return BoundaryPrefix + token + BoundarySuffix, nil
}
