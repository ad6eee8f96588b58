// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package mail

// Header names a non-address field of a Document or of a MIME part
type Header string

// AddrHeader names a field whose value is a list of formatted addresses
type AddrHeader string

// Role is the AddrHeader a recipient is filed under in a RecipientBook.
type Role = AddrHeader

// Fields written by the Builder and the part writer
const (
	HeaderContentDisposition Header = "Content-Disposition"
	HeaderContentTransferEnc Header = "Content-Transfer-Encoding"
	HeaderContentType        Header = "Content-Type"

	// HeaderDate carries the build time in RFC 1123Z layout.
	// https://datatracker.ietf.org/doc/html/rfc5322#section-3.6.1
	HeaderDate Header = "Date"

	// HeaderMIMEVersion is always "1.0".
	// https://datatracker.ietf.org/doc/html/rfc2045#section-4
	HeaderMIMEVersion Header = "MIME-Version"

	HeaderSubject Header = "Subject"
	HeaderXMailer Header = "X-Mailer"
)

// Address fields. Bcc is part of the full Document only; SMTP and SES deliveries drop it.
const (
	HeaderBcc     AddrHeader = "Bcc"
	HeaderCc      AddrHeader = "Cc"
	HeaderFrom    AddrHeader = "From"
	HeaderReplyTo AddrHeader = "Reply-To"
	HeaderTo      AddrHeader = "To"
)

// Recipient roles of a RecipientBook
const (
	RoleTo  Role = HeaderTo
	RoleCc  Role = HeaderCc
	RoleBcc Role = HeaderBcc
)

func (h Header) String() string {
	return string(h)
}

func (a AddrHeader) String() string {
	return string(a)
}
