// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestWriterSender_Send(t *testing.T) {
	t.Run("complete document including Bcc", func(t *testing.T) {
		m := newTestMsg(t)
		_ = m.AddBcc("bcc@domain.tld", "")
		doc := buildTestDocument(t, m)
		buffer := bytes.NewBuffer(nil)
		if err := NewWriterSender(buffer).Send(context.Background(), doc); err != nil {
			t.Fatalf("failed to send document: %s", err)
		}
		if buffer.String() != doc.String()+"\r\n" {
			t.Errorf("unexpected output: %q", buffer.String())
		}
		if !strings.Contains(buffer.String(), "Bcc: bcc@domain.tld") {
			t.Errorf("expected the Bcc header in the output")
		}
	})
	t.Run("concurrent sends do not interleave", func(t *testing.T) {
		doc := buildTestDocument(t, newTestMsg(t))
		buffer := bytes.NewBuffer(nil)
		sender := NewWriterSender(buffer)
		wg := sync.WaitGroup{}
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := sender.Send(context.Background(), doc); err != nil {
					t.Errorf("failed to send document: %s", err)
				}
			}()
		}
		wg.Wait()
		if buffer.String() != strings.Repeat(doc.String()+"\r\n", 10) {
			t.Errorf("output of concurrent sends is interleaved")
		}
	})
	t.Run("nil writer", func(t *testing.T) {
		err := NewWriterSender(nil).Send(context.Background(), buildTestDocument(t, newTestMsg(t)))
		if !errors.Is(err, ErrNoOutWriter) || !errors.Is(err, ErrTransmission) {
			t.Errorf("expected ErrNoOutWriter transmission error, got: %v", err)
		}
	})
	t.Run("broken writer", func(t *testing.T) {
		err := NewWriterSender(failWriter{}).Send(context.Background(), buildTestDocument(t, newTestMsg(t)))
		var se *SendError
		if !errors.As(err, &se) || se.Reason != ErrWriteContent {
			t.Errorf("expected SendError with reason %s, got: %v", ErrWriteContent, err)
		}
		if len(se.Rcpt()) != 1 || se.Rcpt()[0] != TestRcptValid {
			t.Errorf("unexpected affected recipients: %v", se.Rcpt())
		}
	})
	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		buffer := bytes.NewBuffer(nil)
		err := NewWriterSender(buffer).Send(ctx, buildTestDocument(t, newTestMsg(t)))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got: %v", err)
		}
		if buffer.Len() != 0 {
			t.Errorf("nothing is expected to be written on a cancelled context")
		}
	})
}

func TestBuildAndSend(t *testing.T) {
	t.Run("document is handed to the sender", func(t *testing.T) {
		var got *Document
		s := SenderFunc(func(_ context.Context, doc *Document) error {
			got = doc
			return nil
		})
		doc, err := BuildAndSend(context.Background(), newTestBuilder(), s, newTestMsg(t))
		if err != nil {
			t.Fatalf("BuildAndSend failed: %s", err)
		}
		if got != doc {
			t.Errorf("sender did not receive the built document")
		}
	})
	t.Run("build failure skips the sender", func(t *testing.T) {
		called := false
		s := SenderFunc(func(context.Context, *Document) error {
			called = true
			return nil
		})
		m := newTestMsg(t)
		m.Subject = ""
		doc, err := BuildAndSend(context.Background(), newTestBuilder(), s, m)
		if !errors.Is(err, ErrNoSubject) {
			t.Errorf("expected ErrNoSubject, got: %v", err)
		}
		if doc != nil || called {
			t.Errorf("sender is not expected to be called on build failure")
		}
	})
	t.Run("send failure returns the document", func(t *testing.T) {
		s := SenderFunc(func(_ context.Context, doc *Document) error {
			return NewSendError(ErrAmbiguous, true, doc.Recipients())
		})
		doc, err := BuildAndSend(context.Background(), newTestBuilder(), s, newTestMsg(t))
		if !errors.Is(err, ErrTransmission) {
			t.Errorf("expected ErrTransmission, got: %v", err)
		}
		if doc == nil {
			t.Errorf("expected the built document on send failure")
		}
	})
}
