// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"syscall"

	"github.com/codesaur-php/HTTP-Client/log"
)

// SendmailPath is the default system path to the sendmail binary
const SendmailPath = "/usr/sbin/sendmail"

// Sendmail delivers Documents by piping them into a local sendmail binary, invoked with
// "-oi -t" so the recipients are taken from the To, Cc and Bcc headers.
type Sendmail struct {
	args   []string
	logger log.Logger
	path   string
}

// SendmailOption returns a function that can be used for grouping Sendmail options
type SendmailOption func(*Sendmail)

// WithSendmailPath overrides the path to the sendmail binary
func WithSendmailPath(p string) SendmailOption {
	return func(s *Sendmail) {
		if p != "" {
			s.path = p
		}
	}
}

// WithSendmailArgs appends additional command line arguments, e.g. "-f", "sender@domain.tld"
func WithSendmailArgs(a ...string) SendmailOption {
	return func(s *Sendmail) {
		s.args = append(s.args, a...)
	}
}

// WithSendmailLogger sets a logger for the Sendmail sender
func WithSendmailLogger(l log.Logger) SendmailOption {
	return func(s *Sendmail) {
		s.logger = l
	}
}

// NewSendmail returns a new Sendmail sender
func NewSendmail(opts ...SendmailOption) *Sendmail {
	s := &Sendmail{path: SendmailPath}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o(s)
	}
	return s
}

// Send runs the sendmail binary and writes doc to its STDIN. Anything the binary writes to
// STDERR is treated as failure.
func (s *Sendmail) Send(ctx context.Context, doc *Document) error {
	rcpts := doc.Recipients()
	ec := exec.CommandContext(ctx, s.path)
	ec.Args = append(ec.Args, "-oi", "-t")
	ec.Args = append(ec.Args, s.args...)

	se, err := ec.StderrPipe()
	if err != nil {
		return NewSendError(ErrSendmail, false, rcpts, fmt.Errorf("failed to set STDERR pipe: %w", err))
	}
	si, err := ec.StdinPipe()
	if err != nil {
		return NewSendError(ErrSendmail, false, rcpts, fmt.Errorf("failed to set STDIN pipe: %w", err))
	}
	if err = ec.Start(); err != nil {
		return NewSendError(ErrSendmail, false, rcpts, fmt.Errorf("could not start sendmail execution: %w", err))
	}
	if s.logger != nil {
		s.logger.Debugf(log.Log{
			Component: log.ComponentSendmail, Format: "piping message for %d recipient(s) into %s",
			Messages: []interface{}{len(rcpts), s.path},
		})
	}

	if _, err = doc.WriteTo(si); err != nil && !errors.Is(err, syscall.EPIPE) {
		_ = ec.Wait()
		return NewSendError(ErrWriteContent, false, rcpts, fmt.Errorf("failed to write mail to STDIN: %w", err))
	}
	if err = si.Close(); err != nil {
		_ = ec.Wait()
		return NewSendError(ErrWriteContent, false, rcpts, fmt.Errorf("failed to close STDIN pipe: %w", err))
	}

	serr, err := io.ReadAll(se)
	if err != nil {
		_ = ec.Wait()
		return NewSendError(ErrSendmail, false, rcpts, fmt.Errorf("failed to read STDERR pipe: %w", err))
	}
	if err = ec.Wait(); err != nil {
		if len(serr) > 0 {
			err = fmt.Errorf("%w: %s", err, serr)
		}
		return NewSendError(ErrSendmail, false, rcpts, fmt.Errorf("sendmail command execution failed: %w", err))
	}
	if len(serr) > 0 {
		return NewSendError(ErrSendmail, false, rcpts, fmt.Errorf("sendmail command failed: %s", serr))
	}
	return nil
}
