// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// encodedWordPrefix and encodedWordSuffix frame a RFC 2047 "B" encoded-word in UTF-8
const (
	encodedWordPrefix = "=?" + string(CharsetUTF8) + "?B?"
	encodedWordSuffix = "?="
)

// maxEncodedWordBytes is the number of raw bytes that fit into a single encoded-word
// without exceeding MaxEncodedWordLength
const maxEncodedWordBytes = (MaxEncodedWordLength - len(encodedWordPrefix) - len(encodedWordSuffix)) / 4 * 3

// Address is a single mailbox with an optional display name
type Address struct {
	Email string
	Name  string
}

// NewAddress returns an Address for the given mailbox and display name after validating
// the mailbox syntax
func NewAddress(email, name string) (Address, error) {
	if err := ValidateAddress(email); err != nil {
		return Address{}, err
	}
	return Address{Email: email, Name: name}, nil
}

// ValidateAddress checks that email is a bare, syntactically valid RFC 5322 mailbox. A
// failed check wraps ErrInvalidAddress.
func ValidateAddress(email string) error {
	if email == "" {
		return fmt.Errorf("%w: address is empty", ErrInvalidAddress)
	}
	if strings.ContainsAny(email, "\r\n") {
		return fmt.Errorf("%w: %q contains line breaks", ErrInvalidAddress, email)
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("%w: %q: %s", ErrInvalidAddress, email, err)
	}
	if parsed.Name != "" || parsed.Address != email {
		return fmt.Errorf("%w: %q is not a bare mailbox", ErrInvalidAddress, email)
	}
	return nil
}

// FormatAddress renders the Address as an RFC 5322 address token. A display name that
// contains characters outside of [A-Za-z0-9._+()[]-] is RFC 2047 "B" encoded in UTF-8.
func FormatAddress(a Address) (string, error) {
	if err := ValidateAddress(a.Email); err != nil {
		return "", err
	}
	if a.Name == "" {
		return a.Email, nil
	}
	return encodeWord(a.Name) + " <" + a.Email + ">", nil
}

// String satisfies the fmt.Stringer interface. Invalid addresses are returned as is.
func (a Address) String() string {
	f, err := FormatAddress(a)
	if err != nil {
		return a.Email
	}
	return f
}

// encodedWordFold separates consecutive encoded-words. Decoders drop the folding white
// space between adjacent encoded-words, and every word starts a new physical line.
const encodedWordFold = "\r\n "

// encodeWord returns s unchanged if it only consists of header-safe characters. A sequence
// of encoded-words is kept as is but refolded. Otherwise s is split on rune boundaries into
// as many UTF-8 "B" encoded-words as needed, one per folded line.
func encodeWord(s string) string {
	if isHeaderSafe(s) {
		return s
	}
	if isEncodedWords(s) {
		return strings.Join(strings.Fields(s), encodedWordFold)
	}
	return bEncodeSplit(s)
}

// encodeParam encodes s for use inside a quoted MIME parameter like filename="...".
// Encoded-words carrying a quote or a backslash are encoded again as a whole.
func encodeParam(s string) string {
	if strings.ContainsAny(s, `"\`) {
		return bEncodeSplit(s)
	}
	return encodeWord(s)
}

// bEncodeSplit splits s on rune boundaries into folded "B" encoded-words
func bEncodeSplit(s string) string {
	var words []string
	start := 0
	for i, r := range s {
		if i-start+utf8.RuneLen(r) > maxEncodedWordBytes {
			words = append(words, bEncode(s[start:i]))
			start = i
		}
	}
	words = append(words, bEncode(s[start:]))
	return strings.Join(words, encodedWordFold)
}

// bEncode frames s as a single encoded-word
func bEncode(s string) string {
	return encodedWordPrefix + base64.StdEncoding.EncodeToString([]byte(s)) + encodedWordSuffix
}

// isHeaderSafe reports whether s only consists of characters that never need encoding
func isHeaderSafe(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case strings.IndexByte("._+()[]-", c) != -1:
		default:
			return false
		}
	}
	return true
}

// isEncodedWords reports whether s is made up of decodable RFC 2047 encoded-words only
func isEncodedWords(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !strings.HasPrefix(f, "=?") || !strings.HasSuffix(f, "?=") || len(f) > MaxEncodedWordLength {
			return false
		}
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(s)
	return err == nil && decoded != s
}
