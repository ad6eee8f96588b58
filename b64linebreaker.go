// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"errors"
	"io"
)

// newlineBytes is a byte slice representation of the SingleNewLine constant used for line breaking
// in encoding processes.
var newlineBytes = []byte(SingleNewLine)

// ErrNoOutWriter is the error returned when no io.Writer is set for Base64LineBreaker.
var ErrNoOutWriter = errors.New("no io.Writer set for Base64LineBreaker")

// Base64LineBreaker is used to handle base64 encoding with the insertion of new lines after
// MaxBodyLength characters. Every line, including the last one, is terminated by a CRLF.
//
// It satisfies the io.WriteCloser interface.
type Base64LineBreaker struct {
	line [MaxBodyLength]byte
	used int
	out  io.Writer
}

// NewBase64LineBreaker returns a Base64LineBreaker writing to out
func NewBase64LineBreaker(out io.Writer) *Base64LineBreaker {
	return &Base64LineBreaker{out: out}
}

// Write buffers data and writes out every completed line
func (l *Base64LineBreaker) Write(data []byte) (int, error) {
	if l.out == nil {
		return 0, ErrNoOutWriter
	}
	written := 0
	for len(data) > 0 {
		n := copy(l.line[l.used:], data)
		l.used += n
		written += n
		data = data[n:]
		if l.used == MaxBodyLength {
			if err := l.flush(); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Close finalizes the Base64LineBreaker, writing any remaining buffered data and appending a newline.
func (l *Base64LineBreaker) Close() error {
	if l.out == nil {
		return ErrNoOutWriter
	}
	if l.used > 0 {
		return l.flush()
	}
	return nil
}

func (l *Base64LineBreaker) flush() error {
	if _, err := l.out.Write(l.line[0:l.used]); err != nil {
		return err
	}
	l.used = 0
	_, err := l.out.Write(newlineBytes)
	return err
}
