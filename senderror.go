// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"errors"
	"net/textproto"
	"strings"
)

// List of SendError reasons
const (
	// ErrConnect is returned if the connection to the delivery endpoint could not be
	// established, secured or authenticated
	ErrConnect SendErrReason = iota

	// ErrSMTPMailFrom is returned if the delivery failed when sending the MAIL FROM command
	// to the sending SMTP server
	ErrSMTPMailFrom

	// ErrSMTPRcptTo is returned if the delivery failed when sending the RCPT TO command
	// to the sending SMTP server
	ErrSMTPRcptTo

	// ErrSMTPData is returned if the delivery failed when sending the DATA command
	// to the sending SMTP server
	ErrSMTPData

	// ErrSMTPDataClose is returned if the delivery failed when trying to close the
	// Client data writer
	ErrSMTPDataClose

	// ErrWriteContent is returned if the delivery failed when writing the Document
	// to the transport
	ErrWriteContent

	// ErrSendmail is returned if the local sendmail binary could not be executed or
	// reported an error
	ErrSendmail

	// ErrAPIRequest is returned if a delivery API (like AWS SES) rejected the request
	ErrAPIRequest

	// ErrAmbiguous is a generalized delivery error for the SendError type that is
	// returned if the exact reason for the delivery failure is ambiguous
	ErrAmbiguous
)

// SendError is an error wrapper for delivery errors of a Document.
//
// It holds the list of underlying errors, the affected recipients and whether the error
// is temporary or permanent. Every SendError matches ErrTransmission with errors.Is.
type SendError struct {
	errlist []error
	isTemp  bool
	rcpt    []string
	Reason  SendErrReason
}

// SendErrReason represents a comparable reason on why the delivery failed
type SendErrReason int

// NewSendError returns a SendError for the given reason. temp marks the failure as
// temporary (for SMTP: a 4xx reply).
func NewSendError(reason SendErrReason, temp bool, rcpts []string, errs ...error) *SendError {
	return &SendError{Reason: reason, isTemp: temp, rcpt: rcpts, errlist: errs}
}

// Error implements the error interface for the SendError type
func (e *SendError) Error() string {
	if e.Reason > ErrAmbiguous {
		return "unknown reason"
	}

	var errMessage strings.Builder
	errMessage.WriteString(e.Reason.String())
	if len(e.errlist) > 0 {
		errMessage.WriteRune(':')
		for i := range e.errlist {
			errMessage.WriteRune(' ')
			errMessage.WriteString(e.errlist[i].Error())
			if i != len(e.errlist)-1 {
				errMessage.WriteString(",")
			}
		}
	}
	if len(e.rcpt) > 0 {
		errMessage.WriteString(", affected recipient(s): ")
		errMessage.WriteString(strings.Join(e.rcpt, ", "))
	}
	return errMessage.String()
}

// Is implements the errors.Is functionality. A SendError matches ErrTransmission and any
// other SendError with the same reason and temporary status.
func (e *SendError) Is(errType error) bool {
	if errType == ErrTransmission {
		return true
	}
	var t *SendError
	if errors.As(errType, &t) && t != nil {
		return e.Reason == t.Reason && e.isTemp == t.isTemp
	}
	return false
}

// Unwrap returns the underlying errors of the SendError
func (e *SendError) Unwrap() []error {
	return e.errlist
}

// IsTemp returns true if the delivery error is of temporary nature and can be retried
func (e *SendError) IsTemp() bool {
	if e == nil {
		return false
	}
	return e.isTemp
}

// Rcpt returns the list of recipients affected by the delivery error
func (e *SendError) Rcpt() []string {
	return e.rcpt
}

// String satisfies the fmt.Stringer interface for the SendErrReason type
func (r SendErrReason) String() string {
	switch r {
	case ErrConnect:
		return "connection to delivery endpoint failed"
	case ErrSMTPMailFrom:
		return "SMTP MAIL FROM command failed"
	case ErrSMTPRcptTo:
		return "SMTP RCPT TO command failed"
	case ErrSMTPData:
		return "SMTP DATA command failed"
	case ErrSMTPDataClose:
		return "SMTP data writer close failed"
	case ErrWriteContent:
		return "message content write failed"
	case ErrSendmail:
		return "sendmail execution failed"
	case ErrAPIRequest:
		return "delivery API request failed"
	case ErrAmbiguous:
		return "ambiguous reason"
	}
	return "unknown reason"
}

// isTempError checks if the given SMTP error is of a temporary nature and should be retried.
// SMTP replies in the 4xx range are temporary.
func isTempError(err error) bool {
	if err == nil {
		return false
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code >= 400 && protoErr.Code < 500
	}
	msg := err.Error()
	return len(msg) > 0 && msg[0] == '4'
}
