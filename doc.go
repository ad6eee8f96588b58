// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

// Package mail assembles RFC 5322 mail messages with RFC 2047 encoded headers and RFC 2046
// multipart bodies from a structured Msg, and hands the finished Document to a Sender
// (SMTP, sendmail, AWS SES or any io.Writer).
//
// Attachments can be taken from the local file system, from a remote URL or from raw bytes.
// They are resolved when the message is built, concurrently, and always appear in the
// document in the order they were added.
package mail

// VERSION is used in the default X-Mailer header
const VERSION = "1.3.0"
