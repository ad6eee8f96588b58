// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Sender hands a Document over to a mail transfer agent. Failures are reported as
// *SendError, which matches ErrTransmission.
type Sender interface {
	Send(ctx context.Context, doc *Document) error
}

// SenderFunc is an adapter to allow the use of ordinary functions as Sender
type SenderFunc func(ctx context.Context, doc *Document) error

// Send calls f(ctx, doc)
func (f SenderFunc) Send(ctx context.Context, doc *Document) error {
	return f(ctx, doc)
}

// WriterSender writes the complete Document, including the Bcc header, to an io.Writer.
// Writes are serialized so a WriterSender can be shared between goroutines.
type WriterSender struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSender returns a WriterSender for w
func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{w: w}
}

// Send writes doc followed by an empty line
func (s *WriterSender) Send(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return NewSendError(ErrWriteContent, false, doc.Recipients(), err)
	}
	if s.w == nil {
		return NewSendError(ErrWriteContent, false, doc.Recipients(), ErrNoOutWriter)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := doc.WriteTo(s.w); err != nil {
		return NewSendError(ErrWriteContent, false, doc.Recipients(), err)
	}
	if _, err := io.WriteString(s.w, SingleNewLine); err != nil {
		return NewSendError(ErrWriteContent, false, doc.Recipients(), fmt.Errorf("failed to terminate message: %w", err))
	}
	return nil
}

// BuildAndSend builds m with b and hands the resulting Document to s
func BuildAndSend(ctx context.Context, b *Builder, s Sender, m *Msg) (*Document, error) {
	doc, err := b.Build(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := s.Send(ctx, doc); err != nil {
		return doc, err
	}
	return doc, nil
}
