// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import "errors"

var (
	// ErrInvalidAddress is returned when a mail address is empty or not a syntactically valid
	// RFC 5322 mailbox
	ErrInvalidAddress = errors.New("invalid mail address")

	// ErrValidation is returned by Builder.Build when a required field of the Msg is missing
	ErrValidation = errors.New("message validation failed")

	// ErrAttachmentNotFound is returned when a file attachment does not reference an existing
	// regular file
	ErrAttachmentNotFound = errors.New("attachment file not found")

	// ErrAttachmentUnreachable is returned when a URL attachment cannot be fetched or the
	// server did not answer with HTTP 200
	ErrAttachmentUnreachable = errors.New("attachment URL unreachable")

	// ErrEmptyAttachment is returned for raw content attachments without content or name
	ErrEmptyAttachment = errors.New("empty attachment content")

	// ErrTransmission is matched by every SendError returned from a Sender
	ErrTransmission = errors.New("mail transmission failed")
)

// Validation failure details, wrapped together with ErrValidation
var (
	// ErrNoFromAddress should be used when a FROM address is requested but not set
	ErrNoFromAddress = errors.New("no FROM address set")

	// ErrNoRcptAddresses should be used when the list of To recipients is empty
	ErrNoRcptAddresses = errors.New("no recipient addresses set")

	// ErrNoSubject is used when the subject of a Msg is empty
	ErrNoSubject = errors.New("no subject set")

	// ErrNoBody is used when the body of a Msg is empty
	ErrNoBody = errors.New("no message body set")
)
