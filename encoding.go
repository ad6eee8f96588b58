// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

// Charset represents a character set for the encoding
type Charset string

// ContentType represents a content type for the Msg
type ContentType string

// Encoding represents a MIME encoding scheme like quoted-printable or base64.
type Encoding string

// MIMEVersion represents the MIME version for the mail
type MIMEVersion string

// MIMEType represents the MIME type for the mail
type MIMEType string

const (
	// CharsetUTF8 represents the "UTF-8" charset. Header words and the body part are always
	// rendered in this charset.
	CharsetUTF8 Charset = "utf-8"

	// EncodingB64 represents the Base64 encoding as specified in RFC 2045.
	EncodingB64 Encoding = "base64"

	// NoEncoding avoids any character encoding (except of the mail headers)
	NoEncoding Encoding = "8bit"

	// Mime10 is the MIME Version 1.0
	Mime10 MIMEVersion = "1.0"

	// MIMEMixed is the MIME type for multipart/mixed bodies
	MIMEMixed MIMEType = "mixed"

	// TypeAppOctetStream is the fallback type for attachments that cannot be sniffed
	TypeAppOctetStream ContentType = "application/octet-stream"

	// TypeTextHTML is the MIME type for HTML text
	TypeTextHTML ContentType = "text/html"

	// TypeTextPlain is the MIME type for plain text
	TypeTextPlain ContentType = "text/plain"
)

const (
	// SingleNewLine is the line ending used for every line of a Document
	SingleNewLine = "\r\n"

	// DoubleNewLine separates the header block from the body
	DoubleNewLine = "\r\n\r\n"

	// MaxBodyLength is the maximum length of a base64 encoded body line
	MaxBodyLength = 76

	// MaxEncodedWordLength is the maximum length of a single RFC 2047 encoded-word
	MaxEncodedWordLength = 75
)

// String is a standard method to convert an Charset into a printable format
func (c Charset) String() string {
	return string(c)
}

// String is a standard method to convert an ContentType into a printable format
func (c ContentType) String() string {
	return string(c)
}

// String is a standard method to convert an Encoding into a printable format
func (e Encoding) String() string {
	return string(e)
}
