// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"fmt"
	"net/url"

	"github.com/codesaur-php/HTTP-Client/log"
)

// Msg is the configuration of a mail message. It is a plain value: the adders validate their
// input and either apply it completely or return an error. A Msg is turned into a Document
// by Builder.Build. A Msg is not safe for concurrent mutation.
type Msg struct {
	From        Address
	ReplyTo     *Address
	Subject     string
	Body        string
	Recipients  RecipientBook
	Attachments []AttachmentSource
}

// NewMsg returns a new, empty Msg pointer
func NewMsg() *Msg {
	return &Msg{}
}

// SetFrom validates and sets the sender of the Msg
func (m *Msg) SetFrom(email, name string) error {
	a, err := NewAddress(email, name)
	if err != nil {
		return fmt.Errorf("failed to set FROM address: %w", err)
	}
	m.From = a
	return nil
}

// SetReplyTo validates and sets the Reply-To address of the Msg. Without a Reply-To the
// From address is used.
func (m *Msg) SetReplyTo(email, name string) error {
	a, err := NewAddress(email, name)
	if err != nil {
		return fmt.Errorf("failed to set Reply-To address: %w", err)
	}
	m.ReplyTo = &a
	return nil
}

// TargetTo removes all To recipients and sets the given address as the only one
func (m *Msg) TargetTo(email, name string) error {
	return m.Recipients.ReplaceTo(Address{Email: email, Name: name})
}

// AddTo adds an additional address to the To recipients
func (m *Msg) AddTo(email, name string) error {
	return m.Recipients.AddTo(Address{Email: email, Name: name})
}

// AddCc adds an additional address to the Cc recipients
func (m *Msg) AddCc(email, name string) error {
	return m.Recipients.AddCc(Address{Email: email, Name: name})
}

// AddBcc adds an additional address to the Bcc recipients
func (m *Msg) AddBcc(email, name string) error {
	return m.Recipients.AddBcc(Address{Email: email, Name: name})
}

// AddRecipients adds all given addresses to their roles. Invalid addresses are skipped and
// reported to l, see RecipientBook.AddRecipients.
func (m *Msg) AddRecipients(recipients map[Role][]Address, l log.Logger) error {
	return m.Recipients.AddRecipients(recipients, l)
}

// SetSubject sets the subject of the Msg
func (m *Msg) SetSubject(s string) {
	m.Subject = s
}

// SetBody sets the body of the Msg. A body containing "</" is sent as HTML.
func (m *Msg) SetBody(b string) {
	m.Body = b
}

// AddAttachment validates src and appends it to the attachments of the Msg. File sources must
// point to a regular file, content sources must carry bytes and a name and URL sources must be
// absolute http(s) URLs. URLs are not fetched before the message is built.
func (m *Msg) AddAttachment(src AttachmentSource) error {
	switch s := src.(type) {
	case FilePath:
		if err := checkRegularFile(s.Path); err != nil {
			return err
		}
	case RemoteURL:
		u, err := url.Parse(s.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrAttachmentUnreachable, s.URL)
		}
	case RawContent:
		if err := checkRawContent(s); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported attachment source %T", src)
	}
	m.Attachments = append(m.Attachments, src)
	return nil
}

// AttachFile adds a file from the local file system as attachment
func (m *Msg) AttachFile(path string) error {
	return m.AddAttachment(FilePath{Path: path})
}

// AttachURL adds a remote file as attachment. It is fetched when the message is built.
func (m *Msg) AttachURL(rawURL string) error {
	return m.AddAttachment(RemoteURL{URL: rawURL})
}

// AttachContent adds raw bytes as attachment with the given file name
func (m *Msg) AttachContent(content []byte, name string) error {
	return m.AddAttachment(RawContent{Content: content, Name: name})
}

// ClearAttachments removes all attachments of the Msg
func (m *Msg) ClearAttachments() {
	m.Attachments = nil
}

// Reset clears all fields of the Msg so it can be populated again
func (m *Msg) Reset() {
	*m = Msg{}
}

// Validate checks that the fields required to build the Msg are set: at least one To
// recipient, a From address, a subject and a body. It performs no I/O.
func (m *Msg) Validate() error {
	switch {
	case m.Recipients.Len(RoleTo) == 0:
		return fmt.Errorf("%w: %w", ErrValidation, ErrNoRcptAddresses)
	case m.From.Email == "":
		return fmt.Errorf("%w: %w", ErrValidation, ErrNoFromAddress)
	case m.Subject == "":
		return fmt.Errorf("%w: %w", ErrValidation, ErrNoSubject)
	case m.Body == "":
		return fmt.Errorf("%w: %w", ErrValidation, ErrNoBody)
	}
	return nil
}
