// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// headerFold separates the values of a header holding a list of addresses
const headerFold = ",\r\n\t"

// headerField is a single header line of a Document. Multiple values are rendered as a
// folded, comma separated list.
type headerField struct {
	name   Header
	values []string
}

// msgWriter handles the I/O when rendering the header block and the body of a Document.
// The first error is kept and all subsequent writes become no-ops.
type msgWriter struct {
	err error
	mpw *multipart.Writer
	n   int64
	pw  io.Writer
	w   io.Writer
}

// Write implements the io.Writer interface for msgWriter
func (mw *msgWriter) Write(p []byte) (int, error) {
	if mw.err != nil {
		return 0, fmt.Errorf("failed to write due to previous error: %w", mw.err)
	}

	var n int
	n, mw.err = mw.w.Write(p)
	mw.n += int64(n)
	return n, mw.err
}

// writeString writes a string into the msgWriter's io.Writer interface
func (mw *msgWriter) writeString(s string) {
	if mw.err != nil {
		return
	}
	var n int
	n, mw.err = io.WriteString(mw.w, s)
	mw.n += int64(n)
}

// writeHeader writes a header line. Headers without values are skipped.
func (mw *msgWriter) writeHeader(k Header, v ...string) {
	if len(v) == 0 {
		return
	}
	mw.writeString(string(k))
	mw.writeString(": ")
	mw.writeString(strings.Join(v, headerFold))
	mw.writeString(SingleNewLine)
}

// writeFields writes all header fields in order, leaving out the ones named in skip
func (mw *msgWriter) writeFields(fields []headerField, skip ...Header) {
	for _, f := range fields {
		omit := false
		for _, s := range skip {
			if f.name == s {
				omit = true
				break
			}
		}
		if !omit {
			mw.writeHeader(f.name, f.values...)
		}
	}
}

// startMP starts a multipart/mixed body using the given boundary
func (mw *msgWriter) startMP(boundary string) {
	if mw.err != nil {
		return
	}
	mp := multipart.NewWriter(mw)
	if mw.err = mp.SetBoundary(boundary); mw.err != nil {
		return
	}
	mw.mpw = mp
}

// newPart creates a new MIME multipart io.Writer and sets the partwriter to it
func (mw *msgWriter) newPart(h textproto.MIMEHeader) {
	if mw.err != nil || mw.mpw == nil {
		return
	}
	mw.pw, mw.err = mw.mpw.CreatePart(h)
}

// stopMP closes the multipart and writes the closing boundary delimiter
func (mw *msgWriter) stopMP() {
	if mw.mpw == nil {
		return
	}
	if err := mw.mpw.Close(); err != nil && mw.err == nil {
		mw.err = err
	}
	mw.mpw, mw.pw = nil, nil
}

// writeBodyPart writes the text of the message, as a part when inside a multipart
func (mw *msgWriter) writeBodyPart(text string, ct ContentType, enc Encoding) {
	if mw.mpw != nil {
		h := textproto.MIMEHeader{}
		h.Set(HeaderContentType.String(), bodyPartType(ct))
		if enc == EncodingB64 || !isASCII(text) {
			h.Set(HeaderContentTransferEnc.String(), enc.String())
		}
		mw.newPart(h)
	}
	mw.writeBody([]byte(text), enc)
}

// writeAttachment writes a resolved attachment as a base64 encoded part
func (mw *msgWriter) writeAttachment(a *ResolvedAttachment) {
	name := encodeParam(a.name)
	h := textproto.MIMEHeader{}
	h.Set(HeaderContentType.String(), fmt.Sprintf(`%s; name="%s"`, a.mimeType, name))
	h.Set(HeaderContentTransferEnc.String(), EncodingB64.String())
	h.Set(HeaderContentDisposition.String(), fmt.Sprintf(`attachment; filename="%s"`, name))
	mw.newPart(h)
	mw.writeBody(a.content, EncodingB64)
}

// writeBody writes content to the current part (or the body itself outside of a
// multipart) using the provided Encoding. Every line ends with CRLF.
func (mw *msgWriter) writeBody(content []byte, e Encoding) {
	if mw.err != nil {
		return
	}
	var w io.Writer = mw
	if mw.mpw != nil {
		w = mw.pw
	}

	switch e {
	case EncodingB64:
		lb := NewBase64LineBreaker(w)
		ew := base64.NewEncoder(base64.StdEncoding, lb)
		if _, mw.err = ew.Write(content); mw.err != nil {
			return
		}
		if mw.err = ew.Close(); mw.err != nil {
			return
		}
		mw.err = lb.Close()
	default:
		if _, mw.err = w.Write(toCRLF(content)); mw.err != nil {
			return
		}
		_, mw.err = io.WriteString(w, SingleNewLine)
	}
}

// toCRLF turns bare LF line endings into CRLF
func toCRLF(content []byte) []byte {
	if bytes.IndexByte(content, '\n') == -1 {
		return content
	}
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(normalized, []byte("\n"), []byte("\r\n"))
}

// bodyPartType returns the Content-Type value of the message text
func bodyPartType(ct ContentType) string {
	return fmt.Sprintf("%s; charset=%s", ct, CharsetUTF8)
}

// isASCII reports whether s consists of 7bit characters only
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
