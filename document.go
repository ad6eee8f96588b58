// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"bytes"
	"io"
	"strings"
)

// Document is a rendered mail message as produced by Builder.Build. It keeps the parts a
// mail transfer agent asks for separately: the envelope recipients, the encoded subject, the
// header block and the body. A Document is immutable.
type Document struct {
	// To holds the formatted To addresses. They double as the envelope recipients.
	To []string

	// Subject is the RFC 2047 encoded subject
	Subject string

	// Header is the CRLF separated header block without To and Subject
	Header string

	// Body is the body of the message, either a single part or a multipart/mixed document
	Body string

	// Boundary is the multipart boundary, empty for single part messages
	Boundary string

	// ContentType is the type of the message text
	ContentType ContentType

	from   string
	fields []headerField
	rcpts  []string
}

// EnvelopeFrom returns the bare mail address of the sender
func (d *Document) EnvelopeFrom() string {
	return d.from
}

// Recipients returns the bare mail addresses of all To, Cc and Bcc recipients. Duplicates
// are removed.
func (d *Document) Recipients() []string {
	out := make([]string, len(d.rcpts))
	copy(out, d.rcpts)
	return out
}

// WriteTo writes the complete message including the Bcc header to w. It satisfies the
// io.WriterTo interface.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	return d.writeTo(w)
}

// WriteToSkipBcc writes the message to w without the Bcc header. This is the form handed
// to SMTP servers and APIs that are given the recipients separately.
func (d *Document) WriteToSkipBcc(w io.Writer) (int64, error) {
	return d.writeTo(w, Header(HeaderBcc))
}

// Bytes returns the complete message
func (d *Document) Bytes() []byte {
	buf := bytes.Buffer{}
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

// String returns the complete message
func (d *Document) String() string {
	return string(d.Bytes())
}

func (d *Document) writeTo(w io.Writer, skip ...Header) (int64, error) {
	mw := &msgWriter{w: w}
	mw.writeHeader(Header(HeaderTo), d.To...)
	mw.writeHeader(HeaderSubject, d.Subject)
	mw.writeFields(d.fields, skip...)
	mw.writeString(SingleNewLine)
	mw.writeString(d.Body)
	return mw.n, mw.err
}

// renderFields returns the header block of fields without the final line break
func renderFields(fields []headerField) (string, error) {
	sb := strings.Builder{}
	mw := &msgWriter{w: &sb}
	mw.writeFields(fields)
	if mw.err != nil {
		return "", mw.err
	}
	return strings.TrimSuffix(sb.String(), SingleNewLine), nil
}
